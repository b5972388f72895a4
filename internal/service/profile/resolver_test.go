package profile

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediseen/teleconsult-api/internal/model"
	apperrors "github.com/mediseen/teleconsult-api/pkg/errors"
	"github.com/mediseen/teleconsult-api/pkg/logger"
)

type fakeDoctorRepo struct {
	profiles map[uuid.UUID]*model.DoctorProfile
	fees     map[uuid.UUID]*model.FeeSchedule

	profileErr  error
	feeErr      error
	profileHits int
}

func (f *fakeDoctorRepo) GetProfile(_ context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	f.profileHits++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return p, nil
}

func (f *fakeDoctorRepo) GetFeeSchedule(_ context.Context, id uuid.UUID) (*model.FeeSchedule, error) {
	if f.feeErr != nil {
		return nil, f.feeErr
	}
	fee, ok := f.fees[id]
	if !ok {
		return nil, apperrors.NotFound("fee schedule", nil)
	}
	return fee, nil
}

func (f *fakeDoctorRepo) List(context.Context, *model.DoctorFilters) ([]*model.DoctorProfile, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func TestResolveFallsBackToDefaultFee(t *testing.T) {
	d1 := uuid.New()
	repo := &fakeDoctorRepo{
		profiles: map[uuid.UUID]*model.DoctorProfile{
			d1: {Base: model.Base{ID: d1}, Name: "Amina", Specialization: "Pediatrics"},
		},
	}
	svc := NewService(repo, time.Minute, time.Second, testLogger())

	detail, err := svc.Resolve(context.Background(), d1)
	require.NoError(t, err)

	assert.Equal(t, "Amina", detail.Name)
	assert.Equal(t, "Pediatrics", detail.Specialization)
	assert.EqualValues(t, model.DefaultConsultationFee, detail.ConsultationFee)
	assert.Nil(t, detail.ExperienceYears)
	assert.Empty(t, detail.Languages)
	assert.True(t, detail.Degraded)
}

func TestResolveMergesFeeSchedule(t *testing.T) {
	d1 := uuid.New()
	years := 12
	repo := &fakeDoctorRepo{
		profiles: map[uuid.UUID]*model.DoctorProfile{
			d1: {Base: model.Base{ID: d1}, Name: "Amina", Specialization: "Pediatrics"},
		},
		fees: map[uuid.UUID]*model.FeeSchedule{
			d1: {DoctorID: d1, ConsultationFee: 120, ExperienceYears: &years, Languages: []string{"en", "fr"}},
		},
	}
	svc := NewService(repo, time.Minute, time.Second, testLogger())

	detail, err := svc.Resolve(context.Background(), d1)
	require.NoError(t, err)

	assert.EqualValues(t, 120, detail.ConsultationFee)
	require.NotNil(t, detail.ExperienceYears)
	assert.Equal(t, 12, *detail.ExperienceYears)
	assert.Equal(t, []string{"en", "fr"}, detail.Languages)
	assert.False(t, detail.Degraded)
}

func TestResolveFeeErrorIsNotFatal(t *testing.T) {
	d1 := uuid.New()
	repo := &fakeDoctorRepo{
		profiles: map[uuid.UUID]*model.DoctorProfile{
			d1: {Base: model.Base{ID: d1}, Name: "Amina", Specialization: "Pediatrics"},
		},
		feeErr: errors.New("connection reset"),
	}
	svc := NewService(repo, time.Minute, time.Second, testLogger())

	detail, err := svc.Resolve(context.Background(), d1)
	require.NoError(t, err)
	assert.EqualValues(t, model.DefaultConsultationFee, detail.ConsultationFee)
	assert.True(t, detail.Degraded)
}

func TestResolveProfileErrorPropagates(t *testing.T) {
	repo := &fakeDoctorRepo{profileErr: errors.New("connection reset")}
	svc := NewService(repo, time.Minute, time.Second, testLogger())

	_, err := svc.Resolve(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestResolveCachesMergedProfile(t *testing.T) {
	d1 := uuid.New()
	repo := &fakeDoctorRepo{
		profiles: map[uuid.UUID]*model.DoctorProfile{
			d1: {Base: model.Base{ID: d1}, Name: "Amina", Specialization: "Pediatrics"},
		},
	}
	svc := NewService(repo, time.Minute, time.Second, testLogger())

	_, err := svc.Resolve(context.Background(), d1)
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), d1)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.profileHits)
}
