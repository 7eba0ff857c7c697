package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

// Identity is what the access middleware forwards to downstream handlers
// once a session cookie has been verified.
type Identity struct {
	UserID     string
	Email      string
	FirstName  string
	LastName   string
	Role       string
	Department string
	TokenID    string
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(ContextIdentityKey).(*Identity)
	return id, ok && id != nil
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.UserID
	}
	return ""
}

const DefaultTimeout = 5 * time.Second

// WithTimeout bounds ctx by duration, or by DefaultTimeout when duration is
// not positive.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = DefaultTimeout
	}
	return context.WithTimeout(ctx, duration)
}
