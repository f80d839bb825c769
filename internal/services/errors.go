package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")

	// ErrCollaborator marks failures reported by a transcription, translation,
	// or synthesis backend.
	ErrCollaborator = errors.New("collaborator failure")
	// ErrMediaDecode marks undecodable audio or video input.
	ErrMediaDecode = errors.New("media decode error")
	// ErrRenderResource marks failures acquiring or driving a render resource
	// (frame target, encoder sink, audio route).
	ErrRenderResource = errors.New("render resource error")
	// ErrCancelled marks a render or operation that stopped because the caller
	// asked it to. It is an outcome, not a failure.
	ErrCancelled = errors.New("cancelled")
	// ErrAbortedByCaller is the cancellation raised when the caller's context
	// is cancelled mid-render.
	ErrAbortedByCaller = fmt.Errorf("%w: aborted by caller", ErrCancelled)
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Result is the terminal classification of an operation.
type Result string

const (
	ResultCompleted Result = "completed"
	ResultCancelled Result = "cancelled"
	ResultFailed    Result = "failed"
)

// Outcome classifies err into completed, cancelled, or failed. A cancelled
// context counts as cancellation; an expired deadline counts as failure.
func Outcome(err error) Result {
	switch {
	case err == nil:
		return ResultCompleted
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return ResultCancelled
	default:
		return ResultFailed
	}
}

// FromContext converts a finished context into the matching marker error.
// It returns nil while ctx is still live.
func FromContext(ctx context.Context, stage string) error {
	cause := ctx.Err()
	switch {
	case cause == nil:
		return nil
	case errors.Is(cause, context.DeadlineExceeded):
		return Wrap(ErrTimeout, stage, "deadline", "deadline exceeded", cause)
	default:
		return fmt.Errorf("%w: %s: %w", ErrAbortedByCaller, strings.TrimSpace(stage), cause)
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
