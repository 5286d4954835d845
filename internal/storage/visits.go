package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"welcomewindow/backend/internal/models"

	"gorm.io/gorm"
)

// StartVisit opens a visit log entry and returns its id.
func (s *Service) StartVisit(ctx context.Context, visitorName, connectionType string, at time.Time) (uint, error) {
	visit := models.VisitLog{
		VisitorName:    visitorName,
		ConnectionType: connectionType,
		StartedAt:      at,
	}
	if err := s.DB.WithContext(ctx).Create(&visit).Error; err != nil {
		return 0, fmt.Errorf("failed to log visit for %s: %w", visitorName, err)
	}
	return visit.ID, nil
}

// EndVisit closes a visit, storing the end time and its duration in whole
// seconds. Only open visits are updated, so a second call reports false.
func (s *Service) EndVisit(ctx context.Context, id uint, at time.Time) (bool, error) {
	var visit models.VisitLog
	err := s.DB.WithContext(ctx).First(&visit, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if visit.EndedAt != nil {
		return false, nil
	}

	duration := int64(at.Sub(visit.StartedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}

	result := s.DB.WithContext(ctx).Model(&models.VisitLog{}).
		Where("id = ? AND ended_at IS NULL", id).
		Updates(map[string]interface{}{
			"ended_at":         at,
			"duration_seconds": duration,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to close visit %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RecentVisits returns the newest visits first.
func (s *Service) RecentVisits(ctx context.Context, limit int) ([]models.VisitLog, error) {
	var visits []models.VisitLog
	if err := s.DB.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

// VisitStats aggregates total visits, visits since local midnight and the
// average duration of closed visits in minutes (one decimal).
func (s *Service) VisitStats(ctx context.Context, now time.Time) (models.VisitStats, error) {
	var stats models.VisitStats
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.VisitLog{}).Count(&stats.TotalVisits).Error; err != nil {
		return stats, err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.VisitLog{}).Where("started_at >= ?", midnight).Count(&stats.TodayVisits).Error; err != nil {
		return stats, err
	}

	var avg sql.NullFloat64
	if err := db.Model(&models.VisitLog{}).
		Select("AVG(duration_seconds)").
		Where("duration_seconds IS NOT NULL").
		Row().Scan(&avg); err != nil {
		return stats, err
	}
	if avg.Valid && avg.Float64 > 0 {
		stats.AvgDurationMinutes = math.Round(avg.Float64/60*10) / 10
	}
	return stats, nil
}
