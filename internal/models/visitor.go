package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitorState is the position of a PendingVisitor in the approval state machine.
type VisitorState string

const (
	VisitorPending  VisitorState = "pending"
	VisitorApproved VisitorState = "approved"
	VisitorRejected VisitorState = "rejected"
)

// PendingVisitor is an access request made by a visitor.
// It moves from pending to approved or rejected exactly once.
type PendingVisitor struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:varchar(120);not null" json:"name"`
	Email        string       `gorm:"type:varchar(190);not null" json:"email"`
	SessionToken string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	RequestedAt  time.Time    `gorm:"not null;index" json:"requested_at"`
	State        VisitorState `gorm:"type:varchar(16);not null;index;default:pending" json:"state"`
	ApprovedAt   *time.Time   `json:"approved_at,omitempty"`
	DecidedAt    *time.Time   `json:"decided_at,omitempty"`
}

// BeforeCreate is a GORM hook that fills in a random session token and the
// request time when they are not set yet.
func (v *PendingVisitor) BeforeCreate(tx *gorm.DB) (err error) {
	if v.SessionToken == "" {
		v.SessionToken = uuid.New().String()
	}
	if v.RequestedAt.IsZero() {
		v.RequestedAt = time.Now()
	}
	if v.State == "" {
		v.State = VisitorPending
	}
	return
}

// IsTerminal reports whether the request was already decided.
func (v *PendingVisitor) IsTerminal() bool {
	return v.State == VisitorApproved || v.State == VisitorRejected
}
