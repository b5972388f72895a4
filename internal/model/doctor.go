package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DefaultConsultationFee is substituted when a doctor has no fee schedule on record.
const DefaultConsultationFee = 50

// DoctorProfile is the public part of a doctor record. It is read-only from
// the booking flow's point of view.
type DoctorProfile struct {
	Base
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	AvatarURL      string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Rating         float64   `db:"rating" json:"rating"`
	ReviewCount    int       `db:"review_count" json:"review_count"`
	HospitalID     uuid.UUID `db:"hospital_id" json:"hospital_id"`
}

// FeeSchedule holds the consultation fee and experience data, stored
// separately from the public profile and possibly absent.
type FeeSchedule struct {
	DoctorID        uuid.UUID      `db:"doctor_id" json:"doctor_id"`
	ConsultationFee float64        `db:"consultation_fee" json:"consultation_fee"`
	ExperienceYears *int           `db:"experience_years" json:"experience_years,omitempty"`
	Languages       pq.StringArray `db:"languages" json:"languages,omitempty"`
}

// DoctorDetail is the merged view served to the booking flow: public profile
// fields plus fee-schedule fields. Degraded reports that the fee schedule was
// missing and the default fee was substituted.
type DoctorDetail struct {
	DoctorProfile
	ConsultationFee float64  `json:"consultation_fee"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Degraded        bool     `json:"-"`
}

type DoctorFilters struct {
	Specialization string    `form:"specialization"`
	HospitalID     uuid.UUID `form:"hospital_id"`
	MinRating      float64   `form:"min_rating"`
}
