package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dubstudio/internal/config"
	"dubstudio/internal/notifications"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration utilities"}
	cmd.AddCommand(
		newConfigValidateCommand(ctx),
		newConfigInitCommand(),
		newConfigNotifyTestCommand(ctx),
	)
	return cmd
}

// initTarget resolves --path, falling back to the per-user config location.
func initTarget(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(flag)
}

func newConfigInitCommand() *cobra.Command {
	var path string
	var overwrite bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(path)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Wrote sample configuration to", target)
			fmt.Fprintln(out, "Set [huggingface].api_key and [translation].api_key (or HF_TOKEN and OPENROUTER_API_KEY) before running dubstudio.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// newConfigValidateCommand loads the config itself so that load errors are
// reported by this command rather than the root's pre-run hook.
func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and create its directories",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			source := path
			if !exists {
				source += " (not found; using defaults)"
			}
			out := cmd.OutOrStdout()
			for _, kv := range [][2]string{
				{"Config path", source},
				{"Data directory", cfg.Paths.DataDir},
				{"Output directory", filepath.Clean(cfg.Paths.OutputDir)},
				{"Transcription backend", cfg.Transcription.Backend},
				{"Translation model", cfg.GetLLM().Model},
			} {
				fmt.Fprintf(out, "%-22s %s\n", kv[0]+":", kv[1])
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test push notification to the configured ntfy topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(out, "Notifications disabled; set [notifications].ntfy_topic to enable them")
				return nil
			}
			if err := notifications.NewService(cfg).Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return err
			}
			fmt.Fprintf(out, "Sent test notification to %s\n", cfg.Notifications.NtfyTopic)
			return nil
		},
	}
}
