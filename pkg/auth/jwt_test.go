package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	patientID := uuid.New()

	token, err := svc.GenerateAccessToken(patientID, "amina@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, patientID, claims.PatientID)
	assert.Equal(t, "amina@example.com", claims.Email)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewJWTService("secret-a", time.Hour)
	other := NewJWTService("secret-b", time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), "amina@example.com")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), "amina@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
