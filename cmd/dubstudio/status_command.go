package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dubstudio/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkLLM bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tool, credential and project status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			report := preflight.Collect(cmd.Context(), cfg, checkLLM)

			var lines []string
			lines = append(lines, renderSectionHeader("Tools", colorize))
			for _, tool := range report.Tools {
				lines = append(lines, toolLine(tool, colorize))
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize))
			for _, check := range report.Checks {
				lines = append(lines, checkLine(check, colorize))
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Projects", colorize))

			s, err := ctx.ensureStudio(cmd)
			if err != nil {
				lines = append(lines, renderStatusLine("Database", statusError, err.Error(), colorize))
			} else {
				summary, err := s.Summary(cmd.Context())
				if err != nil {
					return err
				}
				lines = append(lines,
					renderStatusLine("Projects", statusInfo, fmt.Sprintf("%d total", summary.Projects), colorize),
					renderStatusLine("In progress", statusInfo, fmt.Sprint(summary.Processing), colorize),
					renderStatusLine("Completed", statusInfo, fmt.Sprint(summary.Completed), colorize),
					renderStatusLine("Failed", failedKind(summary.Failed), fmt.Sprint(summary.Failed), colorize),
					renderStatusLine("Renders", statusInfo, fmt.Sprint(summary.Renders), colorize),
				)
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if !report.Ready() {
				fmt.Fprintln(out, "\nSome required tools or checks failed; see above.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Call the translation API to verify the key and model")
	return cmd
}

func failedKind(n int) statusKind {
	if n > 0 {
		return statusWarn
	}
	return statusInfo
}
