package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/events"
)

// RegisterUserEventLogger writes every directory change to the audit log.
func RegisterUserEventLogger(d events.Dispatcher, logger *zap.Logger) {
	if d == nil {
		return
	}
	events.SubscribeUserChanges(d, func(_ context.Context, e events.Event) error {
		logger.Info("user changed",
			zap.String("event_id", e.ID),
			zap.String("type", string(e.Type)),
			zap.Int("user_id", e.UserID),
			zap.String("actor", e.Actor.UserID),
			zap.String("email", e.Change.Email),
			zap.Bool("is_active", e.Change.IsActive),
			zap.Time("at", e.Timestamp),
		)
		return nil
	})
}
