package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked session token ids until they would have expired
// anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NoopDenylist keeps sessions purely stateless: nothing is ever revoked.
type NoopDenylist struct{}

func (NoopDenylist) Revoke(context.Context, string, time.Time) error { return nil }

func (NoopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

type RedisDenylist struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client, prefix: "session:revoked:", now: time.Now}
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.prefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return n > 0, nil
}

// SessionVerifier combines the codec with the denylist; a denylist lookup
// failure rejects the token.
type SessionVerifier struct {
	codec    *SessionCodec
	denylist Denylist
}

func NewSessionVerifier(codec *SessionCodec, denylist Denylist) *SessionVerifier {
	if denylist == nil {
		denylist = NoopDenylist{}
	}
	return &SessionVerifier{codec: codec, denylist: denylist}
}

func (v *SessionVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := v.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	revoked, err := v.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
