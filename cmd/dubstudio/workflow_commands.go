package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <project>",
		Short: "Extract audio and transcribe it into captions",
		Long:  "Replaces the project's captions. Any translation marker and dub track are discarded.",
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
			result, err := s.Transcribe(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transcribed %d captions\n", result.Captions)
			if result.Report.Dropped > 0 || result.Report.Clamped > 0 {
				fmt.Fprintf(out, "  dropped %d invalid segments, clamped %d negative starts\n",
					result.Report.Dropped, result.Report.Clamped)
			}
			return nil
		},
	}
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "translate <project>",
		Short: "Translate every caption into a target language",
		Long:  "The caption set changes only when the whole translation succeeds. Run `dubstudio languages` for codes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			code := strings.TrimSpace(lang)
			if code == "" {
				code = cfg.Translation.DefaultLanguage
			}
			s, err := ctx.ensureStudio(cmd)
			if err != nil {
				return err
			}
			target, err := s.Translate(cmd.Context(), id, code)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Translated captions into %s (%s)\n", target.Name, target.Code)
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language code (default from config)")
	return cmd
}

func newDubCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "dub <project>",
		Short: "Synthesize a dub track from the caption text",
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
			result, err := s.Dub(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dub track saved to %s (%s)\n", result.Path, result.Duration.Round(100*time.Millisecond))
			if dest := strings.TrimSpace(outPath); dest != "" {
				if err := s.ExportDub(cmd.Context(), id, dest); err != nil {
					return err
				}
				fmt.Fprintf(out, "Copied dub track to %s\n", dest)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Also copy the dub track to this path")
	return cmd
}
