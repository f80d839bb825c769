package main

import (
	"github.com/spf13/cobra"

	"dubstudio/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "languages",
		Short:       "List supported translation targets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := language.Supported()
			rows := make([][]string, 0, len(targets))
			for _, t := range targets {
				rows = append(rows, []string{t.Code, t.Name, t.Native})
			}
			printTable(cmd.OutOrStdout(), []string{"Code", "Language", "Native"}, rows, nil)
			return nil
		},
	}
}
