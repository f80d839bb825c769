package store

import "time"

// Status is the processing state recorded for a project.
type Status string

const (
	StatusIdle             Status = "idle"
	StatusExtractingAudio  Status = "extracting_audio"
	StatusTranscribing     Status = "transcribing"
	StatusTranslating      Status = "translating"
	StatusGeneratingSpeech Status = "generating_speech"
	StatusRendering        Status = "rendering"
	StatusCompleted        Status = "completed"
	StatusError            Status = "error"
)

// InterruptedReason is recorded on work that was in flight when the previous process exited.
const InterruptedReason = "interrupted before completion"

var processingStatuses = map[Status]struct{}{
	StatusExtractingAudio:  {},
	StatusTranscribing:     {},
	StatusTranslating:      {},
	StatusGeneratingSpeech: {},
	StatusRendering:        {},
}

// IsProcessing reports whether the status marks work in flight.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// Project is one source video and the localization work attached to it.
type Project struct {
	ID             int64
	Name           string
	SourcePath     string
	Status         Status
	TargetLanguage string
	DubPath        string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Render states as persisted. They mirror the render pipeline's lifecycle names.
const (
	RenderRunning   = "running"
	RenderCompleted = "completed"
	RenderCancelled = "cancelled"
	RenderFailed    = "failed"
)

// Render is one export attempt for a project.
type Render struct {
	ID           int64
	ProjectID    int64
	JobID        string
	State        string
	Progress     float64
	Frames       int
	Audio        string
	ArtifactPath string
	MIMEType     string
	SizeBytes    int64
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Summary aggregates project counts per status.
type Summary struct {
	Projects   int
	Processing int
	Completed  int
	Failed     int
	Renders    int
}
