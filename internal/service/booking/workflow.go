package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/internal/service/payment"
	"github.com/mediseen/teleconsult-api/internal/service/slot"
	"github.com/mediseen/teleconsult-api/pkg/logger"
	"github.com/mediseen/teleconsult-api/pkg/metrics"
)

// State identifies the current step of a booking session.
type State string

const (
	StateSelectingDoctor State = "selecting_doctor"
	StateScheduling      State = "scheduling"
	StateIntake          State = "intake"
	StateAwaitingPayment State = "awaiting_payment"
	StateCompleted       State = "completed"
)

const dateLayout = "2006-01-02"

// ProfileResolver is the subset of the profile service the workflow needs.
type ProfileResolver interface {
	Resolve(ctx context.Context, doctorID uuid.UUID) (*model.DoctorDetail, error)
}

// Persister writes the finished draft as one appointment record.
type Persister interface {
	CreateFromDraft(ctx context.Context, patientID uuid.UUID, draft model.BookingDraft, fee float64) (*model.Appointment, error)
}

// Workflow owns one booking attempt for one patient. All step transitions are
// guarded here, not in the UI: an operation invoked out of order is rejected
// before any external system is contacted.
type Workflow struct {
	id        uuid.UUID
	patientID uuid.UUID

	resolver     ProfileResolver
	catalog      slot.Catalog
	processor    payment.Processor
	persister    Persister
	fetchTimeout time.Duration
	logger       *logger.Logger
	metrics      *metrics.Metrics

	mu         sync.Mutex
	state      State
	draft      model.BookingDraft
	doctor     *model.DoctorDetail
	profileErr error
	// fetchSeq implements last-selection-wins: a profile fetch result is
	// applied only if no later selection superseded it.
	fetchSeq int
	// paymentPending serializes confirm attempts per draft.
	paymentPending bool
	// paymentCaptured survives a failed persistence write so the retry saves
	// without charging again.
	paymentCaptured bool
	appointment     *model.Appointment
}

type workflowDeps struct {
	resolver     ProfileResolver
	catalog      slot.Catalog
	processor    payment.Processor
	persister    Persister
	fetchTimeout time.Duration
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func newWorkflow(patientID uuid.UUID, deps workflowDeps) (*Workflow, error) {
	if patientID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if deps.fetchTimeout <= 0 {
		deps.fetchTimeout = 5 * time.Second
	}
	return &Workflow{
		id:           uuid.New(),
		patientID:    patientID,
		resolver:     deps.resolver,
		catalog:      deps.catalog,
		processor:    deps.processor,
		persister:    deps.persister,
		fetchTimeout: deps.fetchTimeout,
		logger:       deps.logger,
		metrics:      deps.metrics,
		state:        StateSelectingDoctor,
	}, nil
}

func (w *Workflow) ID() uuid.UUID        { return w.id }
func (w *Workflow) PatientID() uuid.UUID { return w.patientID }

// SelectDoctor records the chosen doctor and moves to scheduling. The profile
// fetch runs asynchronously; its failure is reported but does not revert the
// transition. Re-selecting while a fetch is in flight discards the stale
// result when it arrives.
func (w *Workflow) SelectDoctor(doctorID uuid.UUID) error {
	if doctorID == uuid.Nil {
		w.countStepError("doctor", "validation")
		return ErrNoDoctor
	}

	w.mu.Lock()
	if w.state != StateSelectingDoctor && w.state != StateScheduling {
		w.mu.Unlock()
		w.countStepError("doctor", "transition")
		return ErrInvalidTransition
	}

	w.draft.DoctorID = &doctorID
	w.state = StateScheduling
	w.doctor = nil
	w.profileErr = nil
	w.fetchSeq++
	seq := w.fetchSeq
	w.mu.Unlock()

	// Detached from the request context: the fetch belongs to the session,
	// not to the HTTP call that triggered it.
	go w.fetchProfile(seq, doctorID)

	return nil
}

func (w *Workflow) fetchProfile(seq int, doctorID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), w.fetchTimeout)
	defer cancel()

	detail, err := w.resolver.Resolve(ctx, doctorID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.fetchSeq {
		w.countProfileFetch("stale")
		w.logger.Debug("discarding stale profile fetch", "doctor_id", doctorID.String())
		return
	}

	if err != nil {
		w.profileErr = err
		w.countProfileFetch("error")
		w.logger.Error(err, "doctor profile fetch failed", "doctor_id", doctorID.String())
		return
	}

	w.doctor = detail
	if detail.Degraded {
		w.countProfileFetch("degraded")
		w.logger.Info("fee schedule missing, default fee applied", "doctor_id", doctorID.String())
	} else {
		w.countProfileFetch("ok")
	}
}

func (w *Workflow) countProfileFetch(result string) {
	if w.metrics != nil {
		w.metrics.ProfileFetches.WithLabelValues(result).Inc()
	}
}

func (w *Workflow) countPayment(outcome string) {
	if w.metrics != nil {
		w.metrics.PaymentAttempts.WithLabelValues(outcome).Inc()
	}
}

func (w *Workflow) countStepError(step, class string) {
	if w.metrics != nil {
		w.metrics.BookingStepErrors.WithLabelValues(step, class).Inc()
	}
}

// SelectSchedule validates the date and slot and moves to intake. An
// unavailable slot never enters the draft.
func (w *Workflow) SelectSchedule(date, slotLabel string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateScheduling {
		w.countStepError("schedule", "transition")
		return ErrInvalidTransition
	}
	if w.profileErr != nil {
		w.countStepError("schedule", "fatal_fetch")
		return fmt.Errorf("%w: %v", ErrDoctorUnavailable, w.profileErr)
	}
	if date == "" || slotLabel == "" {
		w.countStepError("schedule", "validation")
		return ErrIncompleteSchedule
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		w.countStepError("schedule", "validation")
		return ErrInvalidDate
	}
	if !w.catalog.IsAvailable(slotLabel) {
		w.countStepError("schedule", "validation")
		return ErrSlotUnavailable
	}

	w.draft.Date = date
	w.draft.TimeSlot = slotLabel
	w.state = StateIntake
	return nil
}

// SubmitIntake merges the intake payload into the draft and opens payment.
// Only the symptom text is required. A profile fetch that failed after the
// schedule step still blocks here: the selected doctor is unavailable no
// matter when the error landed.
func (w *Workflow) SubmitIntake(intake model.Intake) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateIntake {
		w.countStepError("intake", "transition")
		return ErrInvalidTransition
	}
	if w.profileErr != nil {
		w.countStepError("intake", "fatal_fetch")
		return fmt.Errorf("%w: %v", ErrDoctorUnavailable, w.profileErr)
	}
	if intake.Empty() {
		w.countStepError("intake", "validation")
		return ErrEmptyIntake
	}

	w.draft.Intake = &intake
	w.state = StateAwaitingPayment
	return nil
}

// ConfirmPayment runs one payment attempt for the current draft and, on
// success, persists the appointment and resets the draft. Attempts are
// serialized: a confirm issued while another is in flight is rejected without
// contacting the processor. A captured payment followed by a failed write is
// not re-charged on retry.
func (w *Workflow) ConfirmPayment(ctx context.Context) (*model.Appointment, error) {
	w.mu.Lock()
	if w.state != StateAwaitingPayment {
		w.mu.Unlock()
		w.countStepError("payment", "transition")
		return nil, ErrInvalidTransition
	}
	if w.profileErr != nil {
		err := w.profileErr
		w.mu.Unlock()
		w.countStepError("payment", "fatal_fetch")
		return nil, fmt.Errorf("%w: %v", ErrDoctorUnavailable, err)
	}
	if w.paymentPending {
		w.mu.Unlock()
		w.countStepError("payment", "in_flight")
		return nil, ErrPaymentInFlight
	}

	w.paymentPending = true
	snapshot := w.draft
	captured := w.paymentCaptured
	fee := w.currentFeeLocked()
	w.mu.Unlock()

	if !captured {
		attempt := &model.PaymentAttempt{
			Draft:     snapshot,
			PatientID: w.patientID,
			Amount:    fee,
			Outcome:   model.PaymentOutcomePending,
			StartedAt: time.Now(),
		}

		start := time.Now()
		outcome, err := w.processor.Charge(ctx, attempt)
		if w.metrics != nil {
			w.metrics.PaymentLatency.Observe(time.Since(start).Seconds())
		}

		w.mu.Lock()
		if w.state != StateAwaitingPayment {
			// The user dismissed the payment step while the charge was in
			// flight; the result is no longer relevant.
			w.paymentPending = false
			w.mu.Unlock()
			w.countPayment("interrupted")
			return nil, ErrPaymentInterrupted
		}
		if err != nil {
			w.paymentPending = false
			w.mu.Unlock()
			w.countPayment("error")
			return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		if outcome != model.PaymentOutcomeSucceeded {
			w.paymentPending = false
			w.mu.Unlock()
			w.countPayment("declined")
			return nil, ErrPaymentDeclined
		}
		w.paymentCaptured = true
		w.mu.Unlock()
		w.countPayment("succeeded")
	}

	apt, err := w.persister.CreateFromDraft(ctx, w.patientID, snapshot, fee)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.paymentPending = false

	if err != nil {
		// Distinct failure class from a declined payment: the user should
		// retry saving, not re-enter payment details.
		w.countStepError("payment", "transient")
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	w.appointment = apt
	w.state = StateCompleted
	w.draft = model.BookingDraft{}
	w.paymentCaptured = false
	return apt, nil
}

// CancelPayment abandons the payment step and returns to intake with the
// draft unchanged.
func (w *Workflow) CancelPayment() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateAwaitingPayment {
		return ErrInvalidTransition
	}

	w.state = StateIntake
	return nil
}

func (w *Workflow) currentFeeLocked() float64 {
	if w.doctor != nil {
		return w.doctor.ConsultationFee
	}
	// Fee lookup still pending or degraded; the booking proceeds with the
	// default rather than blocking on it.
	return model.DefaultConsultationFee
}

// Snapshot is a consistent view of the session for presentation.
type Snapshot struct {
	ID             uuid.UUID           `json:"id"`
	State          State               `json:"state"`
	Progress       model.Progress      `json:"progress"`
	Draft          model.BookingDraft  `json:"draft"`
	Doctor         *model.DoctorDetail `json:"doctor,omitempty"`
	ProfilePending bool                `json:"profile_pending"`
	ProfileError   string              `json:"profile_error,omitempty"`
	Appointment    *model.Appointment  `json:"appointment,omitempty"`
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		ID:          w.id,
		State:       w.state,
		Progress:    w.draft.Progress(),
		Draft:       w.draft,
		Doctor:      w.doctor,
		Appointment: w.appointment,
	}
	if w.state == StateCompleted {
		snap.Progress = model.ProgressComplete
	}
	if w.profileErr != nil {
		snap.ProfileError = w.profileErr.Error()
	}
	snap.ProfilePending = w.draft.HasDoctor() && w.doctor == nil && w.profileErr == nil &&
		w.state != StateCompleted
	return snap
}
