package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Progress is the discrete completion level of a booking draft.
type Progress int

const (
	ProgressSelectingDoctor Progress = 25
	ProgressScheduling      Progress = 50
	ProgressIntake          Progress = 75
	ProgressComplete        Progress = 100
)

// Intake is the free-text medical intake supplied before payment.
type Intake struct {
	Symptoms       string `json:"symptoms"`
	MedicalHistory string `json:"medical_history"`
	Allergies      string `json:"allergies"`
	Medications    string `json:"medications"`
	Vitals         string `json:"vitals"`
}

// Empty reports whether the intake carries no symptom text. Only symptoms are
// required; the remaining fields may be blank.
func (i *Intake) Empty() bool {
	return i == nil || strings.TrimSpace(i.Symptoms) == ""
}

// BookingDraft accumulates one in-progress booking attempt. It is scoped to a
// single session and reset on successful persistence or cancellation.
type BookingDraft struct {
	DoctorID *uuid.UUID `json:"doctor_id,omitempty"`
	Date     string     `json:"date,omitempty"`
	TimeSlot string     `json:"time_slot,omitempty"`
	Intake   *Intake    `json:"intake,omitempty"`
}

// HasDoctor reports whether a doctor has been chosen.
func (d *BookingDraft) HasDoctor() bool {
	return d.DoctorID != nil && *d.DoctorID != uuid.Nil
}

// HasSchedule reports whether both a date and a time slot are set.
func (d *BookingDraft) HasSchedule() bool {
	return d.Date != "" && d.TimeSlot != ""
}

// HasIntake reports whether a non-empty intake was submitted.
func (d *BookingDraft) HasIntake() bool {
	return !d.Intake.Empty()
}

// Progress derives the completion level from which draft fields are present.
// It is a pure function of the draft so the displayed progress can never
// drift from the actual state.
func (d *BookingDraft) Progress() Progress {
	switch {
	case d.HasDoctor() && d.HasSchedule() && d.HasIntake():
		return ProgressComplete
	case d.HasDoctor() && d.HasSchedule():
		return ProgressIntake
	case d.HasDoctor():
		return ProgressScheduling
	default:
		return ProgressSelectingDoctor
	}
}

type PaymentOutcome string

const (
	PaymentOutcomePending   PaymentOutcome = "pending"
	PaymentOutcomeSucceeded PaymentOutcome = "succeeded"
	PaymentOutcomeFailed    PaymentOutcome = "failed"
)

// PaymentAttempt is one confirm action against a draft snapshot. It exists
// only for the duration of the confirmation and is never persisted.
type PaymentAttempt struct {
	Draft     BookingDraft
	PatientID uuid.UUID
	Amount    float64
	Outcome   PaymentOutcome
	StartedAt time.Time
}
