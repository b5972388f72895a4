package payment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediseen/teleconsult-api/internal/model"
)

func testAttempt() *model.PaymentAttempt {
	return &model.PaymentAttempt{
		PatientID: uuid.New(),
		Amount:    50,
		StartedAt: time.Now(),
	}
}

func TestChargeApprovesAtFullRate(t *testing.T) {
	sim := NewSimulator(0, 1.0)

	outcome, err := sim.Charge(context.Background(), testAttempt())
	require.NoError(t, err)
	assert.Equal(t, model.PaymentOutcomeSucceeded, outcome)
}

func TestChargeDeclinesAtZeroRate(t *testing.T) {
	sim := NewSimulator(0, 0)

	outcome, err := sim.Charge(context.Background(), testAttempt())
	require.NoError(t, err)
	assert.Equal(t, model.PaymentOutcomeFailed, outcome)
}

func TestChargeRetryAfterDecline(t *testing.T) {
	sim := NewSimulator(0, 0)
	attempt := testAttempt()

	for i := 0; i < 3; i++ {
		outcome, err := sim.Charge(context.Background(), attempt)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentOutcomeFailed, outcome)
	}
}

func TestChargeHonorsContextCancellation(t *testing.T) {
	sim := NewSimulator(time.Minute, 1.0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sim.Charge(ctx, testAttempt())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChargeRejectsNonPositiveAmount(t *testing.T) {
	sim := NewSimulator(0, 1.0)
	attempt := testAttempt()
	attempt.Amount = 0

	_, err := sim.Charge(context.Background(), attempt)
	assert.Error(t, err)
}

func TestChargeWaitsForConfiguredLatency(t *testing.T) {
	latency := 30 * time.Millisecond
	sim := NewSimulator(latency, 1.0)

	start := time.Now()
	_, err := sim.Charge(context.Background(), testAttempt())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), latency)
}
