package appointment

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/pkg/logger"
)

type fakeAppointmentRepo struct {
	created   []*model.Appointment
	stored    map[uuid.UUID]*model.Appointment
	createErr error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{stored: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	apt.ID = uuid.New()
	f.created = append(f.created, apt)
	f.stored[apt.ID] = apt
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.stored[id]
	if !ok {
		return nil, errors.New("appointment not found")
	}
	copied := *apt
	return &copied, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	f.stored[apt.ID] = apt
	return nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.stored {
		if filters != nil && filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
			continue
		}
		out = append(out, apt)
	}
	return out, nil
}

type fakeEmitter struct {
	events []string
	err    error
}

func (f *fakeEmitter) Emit(_ context.Context, eventType string, _ interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, eventType)
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func completeDraft() model.BookingDraft {
	doctorID := uuid.New()
	return model.BookingDraft{
		DoctorID: &doctorID,
		Date:     "2025-04-10",
		TimeSlot: "09:30 AM",
		Intake:   &model.Intake{Symptoms: "fever", MedicalHistory: "none"},
	}
}

func TestCreateFromDraft(t *testing.T) {
	repo := newFakeAppointmentRepo()
	emitter := &fakeEmitter{}
	svc := NewService(repo, emitter, testLogger())
	patientID := uuid.New()

	apt, err := svc.CreateFromDraft(context.Background(), patientID, completeDraft(), 120)
	require.NoError(t, err)

	assert.Equal(t, patientID, apt.PatientID)
	assert.Equal(t, "2025-04-10", apt.Date)
	assert.Equal(t, "09:30 AM", apt.TimeSlot)
	assert.Equal(t, "fever", apt.Symptoms)
	assert.EqualValues(t, 120, apt.Fee)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, model.PaymentStatusPaid, apt.PaymentStatus)
	assert.Equal(t, []string{EventAppointmentCreated}, emitter.events)
}

func TestCreateFromDraftRequiresIdentity(t *testing.T) {
	svc := NewService(newFakeAppointmentRepo(), &fakeEmitter{}, testLogger())

	_, err := svc.CreateFromDraft(context.Background(), uuid.Nil, completeDraft(), 50)
	assert.Error(t, err)
}

func TestCreateFromDraftRejectsIncompleteDraft(t *testing.T) {
	svc := NewService(newFakeAppointmentRepo(), &fakeEmitter{}, testLogger())

	draft := completeDraft()
	draft.Intake = nil

	_, err := svc.CreateFromDraft(context.Background(), uuid.New(), draft, 50)
	assert.Error(t, err)
}

func TestCreateFromDraftSurfacesWriteError(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.createErr = errors.New("unique constraint violation")
	svc := NewService(repo, &fakeEmitter{}, testLogger())

	_, err := svc.CreateFromDraft(context.Background(), uuid.New(), completeDraft(), 50)
	assert.Error(t, err)
}

func TestCreateFromDraftToleratesEventFailure(t *testing.T) {
	repo := newFakeAppointmentRepo()
	emitter := &fakeEmitter{err: errors.New("outbox down")}
	svc := NewService(repo, emitter, testLogger())

	apt, err := svc.CreateFromDraft(context.Background(), uuid.New(), completeDraft(), 50)
	require.NoError(t, err)
	assert.NotNil(t, apt)
}

func TestCancelRejectsForeignAppointment(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewService(repo, &fakeEmitter{}, testLogger())

	apt, err := svc.CreateFromDraft(context.Background(), uuid.New(), completeDraft(), 50)
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), apt.ID, uuid.New(), "changed plans")
	assert.Error(t, err)
}

func TestCancelIsIdempotentRejected(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewService(repo, &fakeEmitter{}, testLogger())
	patientID := uuid.New()

	apt, err := svc.CreateFromDraft(context.Background(), patientID, completeDraft(), 50)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), apt.ID, patientID, "changed plans"))
	assert.Error(t, svc.Cancel(context.Background(), apt.ID, patientID, "again"))
}
