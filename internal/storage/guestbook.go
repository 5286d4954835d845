package storage

import (
	"context"

	"welcomewindow/backend/internal/models"

	"gorm.io/gorm/clause"
)

// AddGuestbookEntry stores a guestbook note as unread.
func (s *Service) AddGuestbookEntry(ctx context.Context, entry *models.GuestbookEntry) error {
	return s.DB.WithContext(ctx).Create(entry).Error
}

// ListGuestbook returns the newest entries first.
func (s *Service) ListGuestbook(ctx context.Context, limit int, unreadOnly bool) ([]models.GuestbookEntry, error) {
	var entries []models.GuestbookEntry
	q := s.DB.WithContext(ctx).Model(&models.GuestbookEntry{})
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkGuestbookRead flags an entry as read. Marking an entry twice is fine.
func (s *Service) MarkGuestbookRead(ctx context.Context, id uint) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.GuestbookEntry{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return s.DB.WithContext(ctx).Model(&models.GuestbookEntry{}).Where("id = ?", id).Update("is_read", true).Error
}

// UnreadGuestbookCount counts entries the host has not read yet.
func (s *Service) UnreadGuestbookCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.GuestbookEntry{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

// SavePushSubscription creates or refreshes a host push endpoint.
func (s *Service) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
}

// ListPushSubscriptions returns every registered host endpoint.
func (s *Service) ListPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := s.DB.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// DeletePushSubscription removes an endpoint; unknown endpoints are ignored.
func (s *Service) DeletePushSubscription(ctx context.Context, endpoint string) error {
	return s.DB.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error
}
