package preflight

import (
	"context"

	"dubstudio/internal/config"
	"dubstudio/internal/deps"
)

// Report is the readiness picture shown by the status command.
type Report struct {
	Tools  []deps.Status
	Checks []Result
}

// Collect gathers tool availability (with versions) and every check,
// including the translation API health call when probeLLM is set.
func Collect(ctx context.Context, cfg *config.Config, probeLLM bool) Report {
	if cfg == nil {
		return Report{}
	}
	report := Report{
		Tools:  deps.WithVersions(ctx, CheckSystemDeps(cfg)),
		Checks: RunAll(ctx, cfg),
	}
	if probeLLM {
		report.Checks = append(report.Checks, CheckLLM(ctx, "Translation LLM", cfg.GetLLM()))
	}
	return report
}

// Ready reports whether every required tool is present and every check passed.
func (r Report) Ready() bool {
	for _, tool := range r.Tools {
		if !tool.Available && !tool.Optional {
			return false
		}
	}
	return len(Failed(r.Checks)) == 0
}
