package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	projectCmd.AddCommand(newProjectAddCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	return projectCmd
}

func newProjectAddCommand(ctx *commandContext) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add <video>",
		Short: "Register a source video as a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd)
			if err != nil {
				return err
			}
			project, err := s.AddProject(cmd.Context(), name, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added project #%d (%s)\n", project.ID, project.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (defaults to the file name)")
	return cmd
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd)
			if err != nil {
				return err
			}
			projects, err := s.Projects(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, projects)
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects yet; add one with `dubstudio project add <video>`")
				return nil
			}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{
					strconv.FormatInt(p.ID, 10),
					p.Name,
					statusLabel(p),
					languageLabel(p.TargetLanguage),
					yesNo(p.DubPath != ""),
					ago(p.UpdatedAt),
				})
			}
			printTable(out, []string{"ID", "Name", "Status", "Language", "Dub", "Updated"}, rows,
				[]columnAlignment{alignRight})
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Show one project",
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
			p, err := s.Project(cmd.Context(), id)
			if err != nil {
				return err
			}
			caps, err := s.Captions(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project #%d: %s\n", p.ID, p.Name)
			fmt.Fprintf(out, "  Source:   %s\n", p.SourcePath)
			fmt.Fprintf(out, "  Status:   %s\n", statusLabel(p))
			fmt.Fprintf(out, "  Captions: %d\n", len(caps))
			fmt.Fprintf(out, "  Language: %s\n", languageLabel(p.TargetLanguage))
			if p.DubPath != "" {
				fmt.Fprintf(out, "  Dub:      %s\n", p.DubPath)
			}
			fmt.Fprintf(out, "  Workdir:  %s\n", s.ProjectDir(p.ID))
			return nil
		},
	}
}
