package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "auth-token"
	// DefaultSessionTTL is the lifetime of a freshly issued session.
	DefaultSessionTTL = 7 * 24 * time.Hour

	minSecretLength = 32
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrWeakSecret   = fmt.Errorf("session secret must be at least %d bytes", minSecretLength)
)

// SessionUser is the identity snapshot embedded in a session token. It is
// not refreshed when the underlying user record changes.
type SessionUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type Claims struct {
	User SessionUser `json:"user"`
	jwt.RegisteredClaims
}

// Identity is the request-scoped view of a verified session.
func (c *Claims) Identity() *internal.Identity {
	return &internal.Identity{
		UserID:     c.User.ID,
		Email:      c.User.Email,
		FirstName:  c.User.FirstName,
		LastName:   c.User.LastName,
		Role:       c.User.Role,
		Department: c.User.Department,
		TokenID:    c.ID,
	}
}

// SessionCodec issues and verifies HS256 session tokens.
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

func NewSessionCodec(secret string) (*SessionCodec, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	return &SessionCodec{secret: []byte(secret), now: time.Now}, nil
}

// WithClock overrides the time source used for iat/exp and for verification.
func (c *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	c.now = now
	return c
}

func (c *SessionCodec) Issue(user SessionUser, ttl time.Duration) (string, error) {
	now := c.now()
	claims := &Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token. The token is rejected once
// now reaches exp.
func (c *SessionCodec) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.User.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
