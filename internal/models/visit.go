package models

import "time"

// VisitLog records one live connection of a visitor.
// EndedAt and DurationSeconds stay nil while the connection is open.
type VisitLog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	VisitorName     string     `gorm:"type:varchar(120)" json:"visitor_name"`
	ConnectionType  string     `gorm:"type:varchar(16)" json:"connection_type"`
	StartedAt       time.Time  `gorm:"not null;index" json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
}

// VisitStats is the aggregate shown on the host dashboard.
type VisitStats struct {
	TotalVisits        int64   `json:"total_visits"`
	TodayVisits        int64   `json:"today_visits"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
}
