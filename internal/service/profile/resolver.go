package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/internal/repository"
	apperrors "github.com/mediseen/teleconsult-api/pkg/errors"
	"github.com/mediseen/teleconsult-api/pkg/logger"
)

// Resolver merges a doctor's public profile with its fee schedule.
type Resolver interface {
	Resolve(ctx context.Context, doctorID uuid.UUID) (*model.DoctorDetail, error)
}

type Service struct {
	repo    repository.DoctorRepository
	cache   *gocache.Cache
	timeout time.Duration
	logger  *logger.Logger
}

func NewService(repo repository.DoctorRepository, cacheTTL, fetchTimeout time.Duration, log *logger.Logger) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	return &Service{
		repo:    repo,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		timeout: fetchTimeout,
		logger:  log,
	}
}

// Resolve fetches the public profile and the fee schedule for a doctor and
// merges them. The two sources fail asymmetrically: a profile error is
// propagated (the flow cannot proceed without a name and specialization),
// while a missing or failing fee schedule degrades to the default fee with
// experience and languages absent.
func (s *Service) Resolve(ctx context.Context, doctorID uuid.UUID) (*model.DoctorDetail, error) {
	if cached, ok := s.cache.Get(doctorID.String()); ok {
		detail := cached.(model.DoctorDetail)
		return &detail, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile, err := s.repo.GetProfile(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctor profile: %w", err)
	}

	detail := model.DoctorDetail{
		DoctorProfile:   *profile,
		ConsultationFee: model.DefaultConsultationFee,
	}

	fee, err := s.repo.GetFeeSchedule(ctx, doctorID)
	switch {
	case err == nil:
		detail.ConsultationFee = fee.ConsultationFee
		detail.ExperienceYears = fee.ExperienceYears
		detail.Languages = fee.Languages
	case apperrors.IsNotFound(err):
		detail.Degraded = true
	default:
		// Degraded, not fatal: the booking proceeds with the default fee.
		detail.Degraded = true
		s.logger.Warn("fee schedule fetch failed, using default fee",
			"doctor_id", doctorID.String(), "error", err.Error())
	}

	s.cache.SetDefault(doctorID.String(), detail)
	return &detail, nil
}
