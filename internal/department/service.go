package department

import (
	"context"
	"log/slog"

	userDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/user"
)

// RepositoryAPI is satisfied by both credential store backends.
type RepositoryAPI interface {
	ListDepartments(ctx context.Context) ([]*userDatamodel.Department, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllDepartments(ctx context.Context) ([]*Department, error) {
	rows, err := s.repo.ListDepartments(ctx)
	if err != nil {
		s.logger.Error("failed to get departments from repository", "error", err)
		return nil, err
	}

	departments := make([]*Department, 0, len(rows))
	for _, row := range rows {
		departments = append(departments, FromDataModel(row))
	}

	s.logger.Debug("retrieved departments", "count", len(departments))
	return departments, nil
}
