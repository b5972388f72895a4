package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/internal/repository"
	"github.com/mediseen/teleconsult-api/internal/service/profile"
)

// Service serves the doctor discovery surface: listings for browsing and the
// merged detail view for a selected doctor.
type Service struct {
	repo     repository.DoctorRepository
	resolver profile.Resolver
}

func NewService(repo repository.DoctorRepository, resolver profile.Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

func (s *Service) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error) {
	doctors, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*model.DoctorDetail, error) {
	return s.resolver.Resolve(ctx, id)
}
