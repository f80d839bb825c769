package drapto

import (
	"time"

	draptolib "github.com/five82/drapto"
)

// ProgressUpdate is one archive encode event.
type ProgressUpdate struct {
	Stage   string
	Percent float64
	Message string
	Speed   float64
	FPS     float64
	ETA     time.Duration
	// Warning and Problem are set for non-progress events.
	Warning string
	Problem string
	// OutputBytes is reported once the encode completes.
	OutputBytes int64
}

// reporter adapts the Drapto Reporter interface to a ProgressUpdate callback.
// Events without a progress meaning are dropped.
type reporter struct {
	callback func(ProgressUpdate)
}

func newReporter(callback func(ProgressUpdate)) *reporter {
	return &reporter{callback: callback}
}

func (r *reporter) Hardware(draptolib.HardwareSummary) {}

func (r *reporter) Initialization(s draptolib.InitializationSummary) {
	r.callback(ProgressUpdate{Stage: "initialization", Message: s.Resolution})
}

func (r *reporter) StageProgress(s draptolib.StageProgress) {
	var eta time.Duration
	if s.ETA != nil {
		eta = *s.ETA
	}
	r.callback(ProgressUpdate{Stage: s.Stage, Percent: float64(s.Percent), Message: s.Message, ETA: eta})
}

func (r *reporter) CropResult(s draptolib.CropSummary) {
	r.callback(ProgressUpdate{Stage: "crop", Message: s.Message})
}

func (r *reporter) EncodingConfig(draptolib.EncodingConfigSummary) {}

func (r *reporter) EncodingStarted(uint64) {
	r.callback(ProgressUpdate{Stage: "encoding"})
}

func (r *reporter) EncodingProgress(s draptolib.ProgressSnapshot) {
	r.callback(ProgressUpdate{
		Stage:   "encoding",
		Percent: float64(s.Percent),
		Speed:   float64(s.Speed),
		FPS:     float64(s.FPS),
		ETA:     s.ETA,
	})
}

func (r *reporter) ValidationComplete(s draptolib.ValidationSummary) {
	msg := "validation passed"
	if !s.Passed {
		msg = "validation failed"
	}
	r.callback(ProgressUpdate{Stage: "validation", Percent: 100, Message: msg})
}

func (r *reporter) EncodingComplete(s draptolib.EncodingOutcome) {
	r.callback(ProgressUpdate{Stage: "complete", Percent: 100, Message: s.OutputPath, OutputBytes: int64(s.EncodedSize)})
}

func (r *reporter) Warning(message string) {
	r.callback(ProgressUpdate{Warning: message})
}

func (r *reporter) Error(e draptolib.ReporterError) {
	problem := e.Title
	if e.Message != "" {
		problem += ": " + e.Message
	}
	r.callback(ProgressUpdate{Problem: problem})
}

func (r *reporter) OperationComplete(message string) {
	r.callback(ProgressUpdate{Stage: "complete", Percent: 100, Message: message})
}

func (r *reporter) BatchStarted(draptolib.BatchStartInfo)      {}
func (r *reporter) FileProgress(draptolib.FileProgressContext) {}
func (r *reporter) BatchComplete(draptolib.BatchSummary)       {}

var _ draptolib.Reporter = (*reporter)(nil)
