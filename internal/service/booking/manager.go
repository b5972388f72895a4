package booking

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mediseen/teleconsult-api/internal/service/payment"
	"github.com/mediseen/teleconsult-api/internal/service/slot"
	"github.com/mediseen/teleconsult-api/pkg/logger"
	"github.com/mediseen/teleconsult-api/pkg/metrics"
)

// Manager owns the live booking sessions. Each session holds one draft and is
// scoped to one patient; idle sessions expire with the store.
type Manager struct {
	sessions *gocache.Cache
	deps     workflowDeps
	metrics  *metrics.Metrics
}

type ManagerConfig struct {
	SessionTTL   time.Duration
	FetchTimeout time.Duration
}

func NewManager(
	resolver ProfileResolver,
	catalog slot.Catalog,
	processor payment.Processor,
	persister Persister,
	cfg ManagerConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Manager {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	return &Manager{
		sessions: gocache.New(cfg.SessionTTL, 10*time.Minute),
		deps: workflowDeps{
			resolver:     resolver,
			catalog:      catalog,
			processor:    processor,
			persister:    persister,
			fetchTimeout: cfg.FetchTimeout,
			logger:       log,
			metrics:      m,
		},
		metrics: m,
	}
}

// Start opens a new booking session for an authenticated patient.
func (m *Manager) Start(patientID uuid.UUID) (*Workflow, error) {
	wf, err := newWorkflow(patientID, m.deps)
	if err != nil {
		return nil, err
	}

	m.sessions.SetDefault(wf.ID().String(), wf)
	if m.metrics != nil {
		m.metrics.BookingsStarted.Inc()
	}
	return wf, nil
}

// Get returns the session if it exists and belongs to the given patient.
func (m *Manager) Get(sessionID, patientID uuid.UUID) (*Workflow, error) {
	cached, ok := m.sessions.Get(sessionID.String())
	if !ok {
		return nil, ErrSessionNotFound
	}
	wf := cached.(*Workflow)
	if wf.PatientID() != patientID {
		return nil, ErrSessionForbidden
	}
	return wf, nil
}

// Discard drops a session, abandoning any draft it holds.
func (m *Manager) Discard(sessionID, patientID uuid.UUID) error {
	if _, err := m.Get(sessionID, patientID); err != nil {
		return err
	}
	m.sessions.Delete(sessionID.String())
	return nil
}

// RecordCompleted bumps the completion counter; called by the handler when a
// confirm attempt produces a persisted appointment.
func (m *Manager) RecordCompleted() {
	if m.metrics != nil {
		m.metrics.BookingsCompleted.Inc()
	}
}
