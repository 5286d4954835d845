package models

import "time"

// AvailabilityState is the host's advertised availability.
type AvailabilityState string

const (
	StatusAvailable AvailabilityState = "available"
	StatusAway      AvailabilityState = "away"
	StatusBusy      AvailabilityState = "busy"
)

// Valid reports whether s is one of the known states.
func (s AvailabilityState) Valid() bool {
	switch s {
	case StatusAvailable, StatusAway, StatusBusy:
		return true
	}
	return false
}

// AvailabilityStatus is one row of the append-only status log.
// The row with the highest ID is the current status.
type AvailabilityStatus struct {
	ID        uint              `gorm:"primaryKey" json:"-"`
	Status    AvailabilityState `gorm:"type:varchar(16);not null;default:away" json:"status"`
	Message   string            `gorm:"type:text" json:"message"`
	UpdatedAt time.Time         `gorm:"autoCreateTime" json:"updated_at"`
}

// TableName keeps the table name used by the existing deployments.
func (AvailabilityStatus) TableName() string {
	return "availability"
}

// DefaultStatus is reported when the log is empty.
func DefaultStatus() AvailabilityStatus {
	return AvailabilityStatus{Status: StatusAway, Message: "Not available right now"}
}
