package logging

import (
	"context"
	"log/slog"

	"dubstudio/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldProjectID is the standardized structured logging key for project identifiers.
	FieldProjectID = "project_id"
	// FieldJobID is the standardized structured logging key for render job identifiers.
	FieldJobID = "job_id"
	// FieldStage is the standardized structured logging key for processing stage names.
	FieldStage = "stage"
	// FieldSessionID tags every record written by one CLI invocation.
	FieldSessionID = "session_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldEventType classifies a log line for filtering (e.g. "render_complete").
	FieldEventType = "event_type"
	// FieldErrorHint carries the next step a user should take after a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldProgressPercent is the standardized key for 0-100 progress values.
	FieldProgressPercent = "progress_percent"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.ProjectIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldProjectID, id))
	}
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJobID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
