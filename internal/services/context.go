package services

import "context"

// ctxKey namespaces the values this package stores on a context.
type ctxKey int

const (
	projectIDKey ctxKey = iota
	jobIDKey
	stageKey
	requestIDKey
)

// WithProjectID tags ctx with the project being worked on.
func WithProjectID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, projectIDKey, id)
}

// ProjectIDFromContext returns the project tag, if any.
func ProjectIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(projectIDKey).(int64)
	return id, ok
}

// WithJobID tags ctx with a render job. Empty ids are ignored.
func WithJobID(ctx context.Context, id string) context.Context {
	return withString(ctx, jobIDKey, id)
}

func JobIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, jobIDKey)
}

// WithStage tags ctx with the workflow stage, e.g. "translation".
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, stageKey)
}

// WithRequestID tags ctx with a correlation id that ties log lines together.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key ctxKey) (string, bool) {
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}
