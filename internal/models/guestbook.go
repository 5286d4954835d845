package models

import (
	"time"

	"gorm.io/datatypes"
)

// GuestbookEntry is a note left by a visitor while the host is away.
type GuestbookEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VisitorName string    `gorm:"type:varchar(120)" json:"visitor_name"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	IsRead      bool      `gorm:"not null;default:false;index" json:"is_read"`
}

// GameRequest is a mini-game request made from the chat room.
type GameRequest struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	GameType  string         `gorm:"type:varchar(32);not null" json:"game_type"`
	Requester string         `gorm:"type:varchar(120)" json:"requester"`
	VisitorID string         `gorm:"type:varchar(64);index" json:"visitor_id"`
	Params    datatypes.JSON `json:"params,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// PushSubscription holds a browser push endpoint registered by the host.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey;type:varchar(512)" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
