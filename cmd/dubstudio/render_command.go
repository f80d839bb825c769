package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"dubstudio/internal/logging"
	"dubstudio/internal/store"
	"dubstudio/internal/services"
	"dubstudio/internal/services/drapto"
	"dubstudio/internal/studio"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts studio.RenderOptions

	cmd := &cobra.Command{
		Use:   "render <project>",
		Short: "Burn captions into the video and export it",
		Long: "Renders the project's video with its captions drawn in and writes one export file.\n" +
			"Press Ctrl-C to cancel; a cancelled render leaves no output file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			s, err := ctx.ensureStudio(cmd)
			if err != nil {
				return err
			}

			progress := newRenderProgress(cmd.ErrOrStderr())
			opts.Progress = progress.set
			opts.OnArchive = progress.archive
			outcome, err := s.Render(cmd.Context(), id, opts)
			progress.done()
			if err != nil {
				if services.Outcome(err) == services.ResultCancelled {
					fmt.Fprintf(cmd.OutOrStdout(), "Render cancelled at %.0f%%; no file was written\n", outcome.Progress*100)
				}
				return err
			}

			out := cmd.OutOrStdout()
			a := outcome.Artifact
			fmt.Fprintf(out, "Exported %s\n", a.Path)
			fmt.Fprintf(out, "  %dx%d %s, %s, audio: %s, %d frames\n",
				a.Width, a.Height, a.MIMEType, humanize.Bytes(uint64(a.Size)), a.Audio, outcome.Frames)
			if outcome.ArchivePath != "" {
				fmt.Fprintf(out, "Archive copy %s\n", outcome.ArchivePath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.UseDub, "dub", false, "Use the project's dub track instead of the source audio")
	cmd.Flags().BoolVar(&opts.Fast, "fast", false, "Render as fast as possible instead of in real time")
	cmd.Flags().StringVarP(&opts.OutputDir, "out", "o", "", "Export directory (default from config)")
	return cmd
}

// renderProgress drives a progress bar on terminals and sampled percent
// lines elsewhere.
type renderProgress struct {
	w       io.Writer
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
}

func newRenderProgress(w io.Writer) *renderProgress {
	p := &renderProgress{w: w, sampler: logging.NewProgressSampler(10)}
	if shouldColorize(w) {
		p.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	return p
}

func (p *renderProgress) set(fraction float64) {
	percent := fraction * 100
	if p.bar != nil {
		_ = p.bar.Set(int(percent))
		return
	}
	if p.sampler.ShouldLog(percent, "rendering") {
		fmt.Fprintf(p.w, "rendering %s%%\n", strconv.Itoa(int(percent)))
	}
}

func (p *renderProgress) archive(u drapto.ProgressUpdate) {
	if u.Stage == "" {
		return
	}
	if p.bar != nil {
		p.bar.Describe("archive " + u.Stage)
		_ = p.bar.Set(int(u.Percent))
		return
	}
	if p.sampler.ShouldLog(u.Percent, "archive "+u.Stage) {
		fmt.Fprintf(p.w, "archive %s %d%%\n", u.Stage, int(u.Percent))
	}
}

func (p *renderProgress) done() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func newRendersCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "renders <project>",
		Short: "Show a project's render history",
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
			renders, err := s.Renders(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, renders)
			}
			out := cmd.OutOrStdout()
			if len(renders) == 0 {
				fmt.Fprintln(out, "No renders yet")
				return nil
			}
			rows := make([][]string, 0, len(renders))
			for _, r := range renders {
				detail := r.ArtifactPath
				if r.State != store.RenderCompleted {
					detail = truncate(r.ErrorMessage, 60)
				}
				rows = append(rows, []string{
					truncate(r.JobID, 8),
					r.State,
					fmt.Sprintf("%.0f%%", r.Progress*100),
					strconv.Itoa(r.Frames),
					ago(r.StartedAt),
					detail,
				})
			}
			printTable(out, []string{"Job", "State", "Progress", "Frames", "Started", "Output / error"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight})
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
