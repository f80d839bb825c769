package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(opts ...contextOption) *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag, opts...)

	rootCmd := &cobra.Command{
		Use:           "dubstudio",
		Short:         "Transcribe, translate, dub and caption videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newProjectCommand(ctx))
	rootCmd.AddCommand(newTranscribeCommand(ctx))
	rootCmd.AddCommand(newTranslateCommand(ctx))
	rootCmd.AddCommand(newDubCommand(ctx))
	rootCmd.AddCommand(newCaptionsCommand(ctx))
	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newRendersCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newLanguagesCommand())

	return rootCmd
}
