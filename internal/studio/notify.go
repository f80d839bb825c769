package studio

import (
	"context"
	"log/slog"

	"dubstudio/internal/logging"
	"dubstudio/internal/notifications"
)

// notify publishes an event on a detached context. Delivery failures are
// logged and never fail the operation.
func (s *Studio) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push notification was delivered"),
			logging.String(logging.FieldErrorHint, "check [notifications].ntfy_topic"),
		)
	}
}
