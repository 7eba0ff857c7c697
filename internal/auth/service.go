package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/user"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service implements login, registration, logout and session lookup on top
// of the credential store. Failures are reported through Result, never as
// Go errors.
type Service struct {
	store      user.Store
	hasher     *Hasher
	codec      *SessionCodec
	verifier   *SessionVerifier
	denylist   Denylist
	publisher  EventPublisher
	sessionTTL time.Duration
	logger     *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(
	store user.Store,
	hasher *Hasher,
	codec *SessionCodec,
	denylist Denylist,
	publisher EventPublisher,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *Service {
	if denylist == nil {
		denylist = NoopDenylist{}
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		store:      store,
		hasher:     hasher,
		codec:      codec,
		verifier:   NewSessionVerifier(codec, denylist),
		denylist:   denylist,
		publisher:  publisher,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) Result {
	if appErr := dto.Validate(); appErr != nil {
		s.publish(ctx, events.NewLoginFailedEvent(dto.Email, events.ReasonValidation))
		return failed(appErr, http.StatusBadRequest)
	}

	u, err := s.store.FindUserByEmail(ctx, dto.Email)
	if err != nil {
		return s.internalFailure(ctx, "login: find user", err)
	}
	if u == nil {
		// burn a comparison so unknown emails cost the same as wrong passwords
		s.hasher.Verify(dto.Password, s.timingHash())
		s.publish(ctx, events.NewLoginFailedEvent(dto.Email, events.ReasonInvalidCredentials))
		return failed(internal.ErrInvalidCredentials, http.StatusBadRequest)
	}
	if !u.IsActiveUser() {
		s.publish(ctx, events.NewLoginFailedEvent(dto.Email, events.ReasonAccountDisabled))
		return failed(internal.ErrAccountDisabled, http.StatusBadRequest)
	}
	if !s.hasher.Verify(dto.Password, u.PasswordHash) {
		s.publish(ctx, events.NewLoginFailedEvent(dto.Email, events.ReasonInvalidCredentials))
		return failed(internal.ErrInvalidCredentials, http.StatusBadRequest)
	}

	if err := s.store.RecordLogin(ctx, u.ID); err != nil {
		return s.internalFailure(ctx, "login: record login", err)
	}

	session := sessionUserFrom(u)
	token, err := s.codec.Issue(session, s.sessionTTL)
	if err != nil {
		return s.internalFailure(ctx, "login: issue token", err)
	}

	logger.From(ctx).Info("login succeeded", "user_id", u.ID, "role", u.Role)
	s.publish(ctx, events.NewLoginSucceededEvent(u.ID, u.Email, u.Role))

	res := succeeded(http.StatusOK, session, "Login successful")
	res.Token = token
	return res
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) Result {
	if appErr := dto.Validate(); appErr != nil {
		return failed(appErr, http.StatusBadRequest)
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return s.internalFailure(ctx, "register: hash password", err)
	}

	created, err := s.store.CreateUser(ctx, user.Draft{
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Role:         user.RoleEmployee,
		Department:   dto.Department,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, internal.ErrDuplicateEmail) {
			return failed(internal.ErrDuplicateEmail, http.StatusBadRequest)
		}
		return s.internalFailure(ctx, "register: create user", err)
	}

	session := sessionUserFrom(created)
	token, err := s.codec.Issue(session, s.sessionTTL)
	if err != nil {
		return s.internalFailure(ctx, "register: issue token", err)
	}

	logger.From(ctx).Info("user registered", "user_id", created.ID)
	s.publish(ctx, events.NewUserRegisteredEvent(created.ID, created.Email, created.Department))

	res := succeeded(http.StatusCreated, session, "Account created successfully")
	res.Token = token
	return res
}

// Logout is idempotent: missing, invalid or already revoked tokens all
// succeed. With a denylist configured a valid token is revoked until its
// natural expiry.
func (s *Service) Logout(ctx context.Context, token string) Result {
	if claims, err := s.codec.Verify(token); err == nil {
		if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			logger.From(ctx).Error("logout: revoke session", "error", err, "user_id", claims.User.ID)
		}
		s.publish(ctx, events.NewLogoutEvent(claims.User.ID, claims.ID))
	}
	return succeeded(http.StatusOK, nil, "Logged out successfully")
}

// Session resolves the identity behind a token.
func (s *Service) Session(ctx context.Context, token string) Result {
	if token == "" {
		return failed(internal.ErrUnauthenticated, http.StatusUnauthorized)
	}
	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrTokenExpired) {
			logger.From(ctx).Error("session: verify", "error", err)
		}
		return failed(internal.ErrSessionExpired, http.StatusUnauthorized)
	}
	return succeeded(http.StatusOK, claims.User, "")
}

func (s *Service) internalFailure(ctx context.Context, op string, err error) Result {
	logger.From(ctx).Error(op, "error", err)
	return failed(internal.NewInternalError("Internal server error", err), http.StatusInternalServerError)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", "event_type", event.EventType(), "error", err)
	}
}

func (s *Service) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("timing-equalizer-password")
		if err != nil {
			s.logger.Warn("failed to prepare timing hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func sessionUserFrom(u *user.User) SessionUser {
	return SessionUser{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		Department: u.Department,
	}
}
