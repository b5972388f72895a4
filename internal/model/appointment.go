package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Appointment is the durable artifact of a completed booking. Exactly one is
// created per successful payment; the intake fields travel with it.
type Appointment struct {
	Base
	PatientID      uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date           string            `db:"date" json:"date"`
	TimeSlot       string            `db:"time_slot" json:"time_slot"`
	Symptoms       string            `db:"symptoms" json:"symptoms"`
	MedicalHistory string            `db:"medical_history" json:"medical_history,omitempty"`
	Allergies      string            `db:"allergies" json:"allergies,omitempty"`
	Medications    string            `db:"medications" json:"medications,omitempty"`
	Vitals         string            `db:"vitals" json:"vitals,omitempty"`
	Fee            float64           `db:"fee" json:"fee"`
	Status         AppointmentStatus `db:"status" json:"status"`
	PaymentStatus  PaymentStatus     `db:"payment_status" json:"payment_status"`
	CancelReason   *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    AppointmentStatus
	FromDate  string
	ToDate    string
}
