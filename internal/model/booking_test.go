package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProgressEmptyDraft(t *testing.T) {
	d := &BookingDraft{}
	assert.Equal(t, ProgressSelectingDoctor, d.Progress())
}

func TestProgressIncreasesAsFieldsFill(t *testing.T) {
	id := uuid.New()
	d := &BookingDraft{}

	prev := d.Progress()

	d.DoctorID = &id
	assert.Equal(t, ProgressScheduling, d.Progress())
	assert.Greater(t, int(d.Progress()), int(prev))
	prev = d.Progress()

	d.Date = "2025-04-10"
	d.TimeSlot = "09:30 AM"
	assert.Equal(t, ProgressIntake, d.Progress())
	assert.Greater(t, int(d.Progress()), int(prev))
	prev = d.Progress()

	d.Intake = &Intake{Symptoms: "fever"}
	assert.Equal(t, ProgressComplete, d.Progress())
	assert.Greater(t, int(d.Progress()), int(prev))
}

func TestProgressDeterministic(t *testing.T) {
	id := uuid.New()
	d := &BookingDraft{DoctorID: &id, Date: "2025-04-10", TimeSlot: "09:30 AM"}
	assert.Equal(t, d.Progress(), d.Progress())
}

func TestProgressDateAloneIsNotSchedule(t *testing.T) {
	id := uuid.New()
	d := &BookingDraft{DoctorID: &id, Date: "2025-04-10"}
	assert.Equal(t, ProgressScheduling, d.Progress())
}

func TestIntakeEmptyRequiresSymptomsOnly(t *testing.T) {
	assert.True(t, (&Intake{}).Empty())
	assert.True(t, (&Intake{Symptoms: "   "}).Empty())
	assert.True(t, (&Intake{MedicalHistory: "asthma"}).Empty())
	assert.False(t, (&Intake{Symptoms: "fever", MedicalHistory: ""}).Empty())

	var nilIntake *Intake
	assert.True(t, nilIntake.Empty())
}
