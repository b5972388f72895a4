package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mediseen/teleconsult-api/internal/model"
)

// Processor is the payment boundary. A real gateway can be substituted
// without touching the booking workflow; the contract is that at most one
// successful outcome leads to at most one persisted appointment, and that a
// failed attempt may safely be retried.
type Processor interface {
	Charge(ctx context.Context, attempt *model.PaymentAttempt) (model.PaymentOutcome, error)
}

// Simulator approximates a payment processor with a fixed round-trip latency
// and a configurable approval rate. It holds no state between attempts, so
// re-invoking after a decline has no double-charge semantics.
type Simulator struct {
	latency      time.Duration
	approvalRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulator(latency time.Duration, approvalRate float64) *Simulator {
	if approvalRate < 0 {
		approvalRate = 0
	}
	if approvalRate > 1 {
		approvalRate = 1
	}
	return &Simulator{
		latency:      latency,
		approvalRate: approvalRate,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) Charge(ctx context.Context, attempt *model.PaymentAttempt) (model.PaymentOutcome, error) {
	if attempt == nil {
		return model.PaymentOutcomeFailed, fmt.Errorf("payment: attempt required")
	}
	if attempt.Amount <= 0 {
		return model.PaymentOutcomeFailed, fmt.Errorf("payment: amount must be positive, got %v", attempt.Amount)
	}

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.PaymentOutcomeFailed, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	approved := s.rng.Float64() < s.approvalRate
	s.mu.Unlock()

	if !approved {
		return model.PaymentOutcomeFailed, nil
	}
	return model.PaymentOutcomeSucceeded, nil
}
