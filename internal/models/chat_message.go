package models

import "time"

// SenderRole identifies who wrote a chat message.
type SenderRole string

const (
	SenderVisitor SenderRole = "visitor"
	SenderAdmin   SenderRole = "admin"
)

// ChatMessage represents a saved live-chat message.
// Rows are append-only and removed with a hard delete by the host.
type ChatMessage struct {
	// ID is the primary key assigned by the database.
	ID uint `gorm:"primaryKey" json:"id"`
	// Sender is the role of the author (visitor or admin).
	Sender SenderRole `gorm:"type:varchar(16);not null;index" json:"sender"`
	// SenderName is the display name shown next to the message.
	SenderName string `gorm:"type:varchar(120);not null" json:"sender_name"`
	// Message is the trimmed text of the message.
	Message string `gorm:"type:text;not null" json:"message"`
	// VisitorID is the visitor identity of the author; nil for the host.
	VisitorID *string `gorm:"type:varchar(64);index" json:"visitor_id,omitempty"`
	// CreatedAt is set by GORM on insert.
	CreatedAt time.Time `gorm:"index" json:"timestamp"`
}
