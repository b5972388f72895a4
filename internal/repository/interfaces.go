package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediseen/teleconsult-api/internal/model"
)

// All repository interfaces in one file
type (
	// DoctorRepository reads doctor profiles and their fee schedules. The two
	// live in separate tables; a profile may exist without a fee schedule.
	DoctorRepository interface {
		GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
		GetFeeSchedule(ctx context.Context, doctorID uuid.UUID) (*model.FeeSchedule, error)
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error)
	}

	HospitalRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		List(ctx context.Context) ([]*model.Hospital, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error
	}
)
