package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dubstudio/internal/captions"
)

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	captionsCmd := &cobra.Command{
		Use:   "captions",
		Short: "Inspect, edit, import and export captions",
	}
	captionsCmd.AddCommand(newCaptionsListCommand(ctx))
	captionsCmd.AddCommand(newCaptionsEditCommand(ctx))
	captionsCmd.AddCommand(newCaptionsExportCommand(ctx))
	captionsCmd.AddCommand(newCaptionsImportCommand(ctx))
	captionsCmd.AddCommand(newCaptionsStatsCommand(ctx))
	return captionsCmd
}

func newCaptionsListCommand(ctx *commandContext) *cobra.Command {
	var query string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List captions, optionally filtered by text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := loadCaptions(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(query) != "" {
				caps = captions.Search(caps, query)
			}
			if asJSON {
				return writeJSON(cmd, caps)
			}
			out := cmd.OutOrStdout()
			if len(caps) == 0 {
				fmt.Fprintln(out, "No captions")
				return nil
			}
			rows := make([][]string, 0, len(caps))
			for _, c := range caps {
				rows = append(rows, []string{c.ID, formatTimestamp(c.Start), formatTimestamp(c.End), c.Text})
			}
			printTable(out, []string{"ID", "Start", "End", "Text"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight})
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "Case-insensitive text filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newCaptionsEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <project> <caption-id> <text>",
		Short: "Replace one caption's text",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			s, err := ctx.ensureStudio(cmd)
			if err != nil {
				return err
			}
			text := strings.Join(args[2:], " ")
			if err := s.EditCaption(cmd.Context(), id, args[1], text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[1])
			return nil
		},
	}
}

func newCaptionsExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Write captions as a SubRip (.srt) file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			s, err := ctx.ensureStudio(cmd)
			if err != nil {
				return err
			}
			path, err := s.ExportSRT(cmd.Context(), id, outPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file (default: output directory)")
	return cmd
}

func newCaptionsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <project> <file.srt>",
		Short: "Replace captions with a SubRip file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open captions file: %w", err)
			}
			defer f.Close()
			s, err := ctx.ensureStudio(cmd)
			if err != nil {
				return err
			}
			report, err := s.ImportSRT(cmd.Context(), id, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d captions (%d dropped)\n", report.Accepted, report.Dropped)
			return nil
		},
	}
}

func newCaptionsStatsCommand(ctx *commandContext) *cobra.Command {
	var density bool
	cmd := &cobra.Command{
		Use:   "stats <project>",
		Short: "Summarize caption coverage and speech density",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := loadCaptions(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			st := captions.Summarize(caps)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Captions: %d\n", st.Count)
			fmt.Fprintf(out, "Words:    %d\n", st.Words)
			fmt.Fprintf(out, "Covered:  %s\n", formatTimestamp(st.Covered))
			fmt.Fprintf(out, "Average:  %.2fs\n", st.AverageLength)
			fmt.Fprintf(out, "Overlaps: %d\n", st.Overlaps)
			if density && st.Count > 0 {
				points := captions.Density(caps)
				rows := make([][]string, 0, len(points))
				for _, p := range points {
					rows = append(rows, []string{strconv.Itoa(p.Second), strconv.Itoa(p.Words)})
				}
				printTable(out, []string{"Second", "Words"}, rows, []columnAlignment{alignRight, alignRight})
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&density, "density", false, "Also print words per caption keyed by start second")
	return cmd
}

func loadCaptions(ctx *commandContext, cmd *cobra.Command, arg string) ([]captions.Caption, error) {
	id, err := parseProjectID(arg)
	if err != nil {
		return nil, err
	}
	s, err := ctx.ensureStudio(cmd)
	if err != nil {
		return nil, err
	}
	return s.Captions(cmd.Context(), id)
}
