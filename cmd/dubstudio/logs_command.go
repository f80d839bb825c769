package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dubstudio/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines   int
		follow  bool
		project string
		level   string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the structured log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logs.Path(cfg.Paths.LogDir)
			if path == "" {
				return fmt.Errorf("paths.log_dir is not set; no log file is written")
			}
			filter := logs.Filter{MinLevel: logs.ParseLevel(level)}
			if project != "" {
				if filter.ProjectID, err = parseProjectID(project); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			chunk, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range filter.Apply(chunk.Lines) {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			offset := chunk.Offset
			for {
				chunk, err = logs.Since(cmd.Context(), path, offset, time.Second)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				offset = chunk.Offset
				for _, line := range filter.Apply(chunk.Lines) {
					fmt.Fprintln(out, line)
				}
			}
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records until interrupted")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Only records for this project")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	return cmd
}
