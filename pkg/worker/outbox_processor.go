package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mediseen/teleconsult-api/internal/email"
	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/internal/repository"
	"github.com/mediseen/teleconsult-api/pkg/logger"
	"github.com/mediseen/teleconsult-api/pkg/messaging"
	"github.com/mediseen/teleconsult-api/pkg/metrics"
)

const (
	eventAppointmentCreated   = "appointment.created"
	eventAppointmentCancelled = "appointment.cancelled"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// OutboxProcessor drains the transactional outbox: each pending event is
// published to the broker and, for appointment events, turned into a patient
// notification email.
type OutboxProcessor struct {
	repo     repository.OutboxRepository
	patients repository.PatientRepository
	broker   messaging.Broker
	emails   email.Service
	config   OutboxProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	patients repository.PatientRepository,
	broker messaging.Broker,
	emails email.Service,
	config OutboxProcessorConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	return &OutboxProcessor{
		repo:     repo,
		patients: patients,
		broker:   broker,
		emails:   emails,
		config:   config,
		logger:   log,
		metrics:  m,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "failed to process events")
			}
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
			continue
		}
	}

	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	err := retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.broker.Publish(ctx, event.EventType, event.Payload)
	})
	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		errStr := err.Error()
		if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &errStr); updateErr != nil {
			p.logger.Error(updateErr, "failed to update event status")
		}
		return err
	}

	p.notify(ctx, event)

	p.metrics.OutboxEventsProcessed.Inc()
	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
		p.logger.Error(err, "failed to update event status", "event_id", event.ID.String())
		return err
	}

	return nil
}

// notify sends the patient email for appointment events. Email delivery is
// best effort and never blocks the event from being marked processed.
func (p *OutboxProcessor) notify(ctx context.Context, event *model.OutboxEvent) {
	if event.EventType != eventAppointmentCreated && event.EventType != eventAppointmentCancelled {
		return
	}

	var apt model.Appointment
	if err := json.Unmarshal(event.Payload, &apt); err != nil {
		p.logger.Error(err, "failed to decode appointment payload", "event_id", event.ID.String())
		return
	}

	patient, err := p.patients.Get(ctx, apt.PatientID)
	if err != nil {
		p.logger.Error(err, "failed to load patient for notification", "patient_id", apt.PatientID.String())
		return
	}

	switch event.EventType {
	case eventAppointmentCreated:
		err = p.emails.SendBookingConfirmation(ctx, patient.Email, &apt)
	case eventAppointmentCancelled:
		err = p.emails.SendCancellation(ctx, patient.Email, &apt)
	}
	if err != nil {
		p.logger.Error(err, "failed to send notification email", "appointment_id", apt.ID.String())
	}
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
