package studio

import (
	"context"
	"log/slog"
	"strings"

	"dubstudio/internal/logging"
	"dubstudio/internal/notifications"
	"dubstudio/internal/services"
	"dubstudio/internal/store"
)

// stage describes one status-tracked operation on a project.
type stage struct {
	name       string
	processing store.Status
	run        func(ctx context.Context, logger *slog.Logger) error
	// done, when set, names the notification sent after a successful run.
	done func() (notifications.Event, notifications.Payload)
}

// runStage persists the processing status, runs the stage and records the
// outcome: completed on success, error with the failure message otherwise.
// A cancelled stage puts back the status the project had before.
func (s *Studio) runStage(ctx context.Context, project *store.Project, st stage) error {
	ctx = services.WithProjectID(ctx, project.ID)
	ctx = services.WithStage(ctx, st.name)
	logger := logging.WithContext(ctx, s.logger)
	previous, previousMessage := project.Status, project.ErrorMessage

	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(st.processing)),
		logging.String("source_file", project.SourcePath),
	)
	if err := s.store.SetStatus(ctx, project.ID, st.processing, ""); err != nil {
		return err
	}
	project.Status, project.ErrorMessage = st.processing, ""

	err := st.run(ctx, logger)
	// Status writes must land even when ctx was cancelled.
	persistCtx := context.WithoutCancel(ctx)
	switch services.Outcome(err) {
	case services.ResultCompleted:
		if perr := s.store.SetStatus(persistCtx, project.ID, store.StatusCompleted, ""); perr != nil {
			return perr
		}
		project.Status = store.StatusCompleted
		logger.Info("stage completed", logging.String(logging.FieldEventType, "stage_complete"))
		if st.done != nil {
			event, payload := st.done()
			s.notify(ctx, logger, event, payload)
		}
		return nil
	case services.ResultCancelled:
		restore := previous
		if restore.IsProcessing() {
			restore = store.StatusIdle
		}
		if perr := s.store.SetStatus(persistCtx, project.ID, restore, previousMessage); perr != nil {
			logger.Error("failed to restore status after cancellation", logging.Error(perr))
		}
		project.Status, project.ErrorMessage = restore, previousMessage
		logger.Info("stage cancelled", logging.String(logging.FieldEventType, "stage_cancelled"))
		return err
	default:
		message := strings.TrimSpace(err.Error())
		if perr := s.store.SetStatus(persistCtx, project.ID, store.StatusError, message); perr != nil {
			logger.Error("failed to persist stage failure", logging.Error(perr))
		}
		project.Status = store.StatusError
		project.ErrorMessage = message
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.String("resolved_status", string(store.StatusError)),
			logging.Error(err),
		)
		s.notify(ctx, logger, notifications.EventError, notifications.Payload{
			"project": project.Name,
			"stage":   st.name,
			"error":   message,
		})
		return err
	}
}
