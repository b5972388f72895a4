package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/pkg/auth"
	apperrors "github.com/mediseen/teleconsult-api/pkg/errors"
	"github.com/mediseen/teleconsult-api/pkg/logger"
)

type fakePatientRepo struct {
	byEmail map[string]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{byEmail: make(map[string]*model.Patient)}
}

func (r *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error {
	p.ID = uuid.New()
	r.byEmail[p.Email] = p
	return nil
}

func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	for _, p := range r.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (r *fakePatientRepo) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	if p, ok := r.byEmail[email]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (r *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error {
	r.byEmail[p.Email] = p
	return nil
}

func newTestService() (*Service, *fakePatientRepo) {
	repo := newFakePatientRepo()
	tokens := auth.NewJWTService("test-secret", time.Hour)
	log := logger.NewLogger(&logger.Config{Output: io.Discard})
	return NewService(repo, tokens, time.Hour, log), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	patient, err := svc.Register(ctx, &model.RegisterPatientRequest{
		Name:     "Lina Okafor",
		Email:    "Lina@Example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "lina@example.com", patient.Email)
	assert.NotEqual(t, "s3cret-pass", patient.PasswordHash)

	tokens, err := svc.Login(ctx, "lina@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, claims.PatientID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req := &model.RegisterPatientRequest{Name: "A", Email: "dup@example.com", Password: "password1"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.RegisterPatientRequest{
		Name: "B", Email: "b@example.com", Password: "password1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "b@example.com", "wrong-pass")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}
