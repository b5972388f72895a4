package booking

import "errors"

// Step failures fall into distinct classes: preconditions redirect the user,
// validation failures block a transition but leave the draft untouched,
// transient failures are retryable in place, and a fatal profile fetch pins
// the flow at doctor selection for that doctor.
var (
	// Precondition failures
	ErrNotAuthenticated = errors.New("booking requires an authenticated patient")
	ErrSessionNotFound  = errors.New("booking session not found")
	ErrSessionForbidden = errors.New("booking session belongs to another patient")

	// Transition guard
	ErrInvalidTransition = errors.New("operation not valid in current booking state")

	// Validation failures (draft unaffected, retryable)
	ErrNoDoctor           = errors.New("a doctor must be selected")
	ErrIncompleteSchedule = errors.New("both a date and a time slot are required")
	ErrInvalidDate        = errors.New("date must be in YYYY-MM-DD format")
	ErrSlotUnavailable    = errors.New("selected time slot is not available")
	ErrEmptyIntake        = errors.New("symptom description is required")

	// Fatal fetch failure: the profile could not be loaded at all
	ErrDoctorUnavailable = errors.New("doctor profile could not be loaded")

	// Transient operation failures (draft retained, retryable)
	ErrPaymentInFlight    = errors.New("a payment attempt is already in progress")
	ErrPaymentDeclined    = errors.New("payment was declined")
	ErrPaymentFailed      = errors.New("payment could not be processed")
	ErrPersistenceFailed  = errors.New("appointment could not be saved")
	ErrPaymentInterrupted = errors.New("payment was abandoned before completion")
)
