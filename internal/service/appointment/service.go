package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/internal/repository"
	"github.com/mediseen/teleconsult-api/internal/service/event"
	"github.com/mediseen/teleconsult-api/pkg/logger"
)

const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentCancelled = "appointment.cancelled"
)

type Service struct {
	repo   repository.AppointmentRepository
	events event.Emitter
	logger *logger.Logger
}

func NewService(repo repository.AppointmentRepository, events event.Emitter, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: log,
	}
}

// CreateFromDraft composes a completed booking draft into one appointment
// record with status pending and payment status paid. It is invoked only
// after a successful payment outcome.
func (s *Service) CreateFromDraft(ctx context.Context, patientID uuid.UUID, draft model.BookingDraft, fee float64) (*model.Appointment, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient ID is required")
	}
	if !draft.HasDoctor() || !draft.HasSchedule() || !draft.HasIntake() {
		return nil, fmt.Errorf("booking draft is incomplete")
	}

	apt := &model.Appointment{
		PatientID:      patientID,
		DoctorID:       *draft.DoctorID,
		Date:           draft.Date,
		TimeSlot:       draft.TimeSlot,
		Symptoms:       draft.Intake.Symptoms,
		MedicalHistory: draft.Intake.MedicalHistory,
		Allergies:      draft.Intake.Allergies,
		Medications:    draft.Intake.Medications,
		Vitals:         draft.Intake.Vitals,
		Fee:            fee,
		Status:         model.AppointmentStatusPending,
		PaymentStatus:  model.PaymentStatusPaid,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	// The appointment row is the source of truth; a lost event only delays
	// the confirmation email.
	if err := s.events.Emit(ctx, EventAppointmentCreated, apt); err != nil {
		s.logger.Warn("failed to emit appointment event",
			"appointment_id", apt.ID.String(), "error", err.Error())
	}

	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, &model.AppointmentFilters{PatientID: patientID})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Cancel marks a patient's own appointment cancelled. Completed and already
// cancelled appointments are rejected.
func (s *Service) Cancel(ctx context.Context, id, patientID uuid.UUID, reason string) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}

	if apt.PatientID != patientID {
		return fmt.Errorf("appointment does not belong to patient")
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return fmt.Errorf("appointment is already cancelled")
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return fmt.Errorf("cannot cancel a completed appointment")
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = &reason

	if err := s.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	if err := s.events.Emit(ctx, EventAppointmentCancelled, apt); err != nil {
		s.logger.Warn("failed to emit appointment event",
			"appointment_id", apt.ID.String(), "error", err.Error())
	}

	return nil
}
