package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal"
)

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("Internal server error", err)
	}
	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, dto UpdateUserDTO) (*User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	updated, err := s.store.UpdateUser(ctx, id, dto.ToPatch())
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) || errors.Is(err, internal.ErrDuplicateEmail) {
			return nil, err
		}
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, internal.NewInternalError("Internal server error", err)
	}

	s.logger.Info("user updated", "user_id", id, "by", internal.UserIDFromContext(ctx))
	return updated, nil
}
