package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal/core/events"
)

// AuditLogger writes one structured audit line per auth event.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With("component", "auth_audit")}
}

func (a *AuditLogger) HandleAuthEvent(ctx context.Context, event events.Event) error {
	attrs := []any{"event_type", event.EventType(), "event_id", event.EventID(), "occurred_at", event.OccurredAt()}

	switch e := event.(type) {
	case *events.LoginSucceededEvent:
		a.logger.InfoContext(ctx, "login succeeded", append(attrs, "user_id", e.UserID, "email", e.Email, "role", e.Role)...)
	case *events.LoginFailedEvent:
		a.logger.WarnContext(ctx, "login failed", append(attrs, "email", e.Email, "reason", e.Reason)...)
	case *events.UserRegisteredEvent:
		a.logger.InfoContext(ctx, "user registered", append(attrs, "user_id", e.UserID, "email", e.Email, "department", e.Department)...)
	case *events.LogoutEvent:
		a.logger.InfoContext(ctx, "logout", append(attrs, "user_id", e.UserID, "token_id", e.TokenID)...)
	default:
		return fmt.Errorf("unexpected auth event %T", event)
	}
	return nil
}

func (a *AuditLogger) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(a.HandleAuthEvent)
	a.logger.Info("auth audit handlers registered", "handlers", events.AuthEventTypes)
}
