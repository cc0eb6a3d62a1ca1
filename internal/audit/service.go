package audit

import (
	"context"

	"github.com/amit1797/Eduadmin-sub000/internal"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListBySchool(ctx context.Context, schoolID string, limit, offset int) ([]Entry, error) {
	entries, err := s.repo.ListBySchool(ctx, schoolID, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list audit logs", err)
	}
	return entries, nil
}
