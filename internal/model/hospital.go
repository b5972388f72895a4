package model

type HospitalStatus string

const (
	HospitalStatusActive   HospitalStatus = "active"
	HospitalStatusInactive HospitalStatus = "inactive"
)

type Hospital struct {
	Base
	Name     string         `db:"name" json:"name"`
	Location string         `db:"location" json:"location"`
	Status   HospitalStatus `db:"status" json:"status"`
}
