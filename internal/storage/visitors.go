package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"welcomewindow/backend/internal/models"

	"gorm.io/gorm"
)

// CreateVisitor inserts a new access request. The BeforeCreate hook fills in
// the session token when the caller left it empty.
func (s *Service) CreateVisitor(ctx context.Context, visitor *models.PendingVisitor) error {
	if err := s.DB.WithContext(ctx).Create(visitor).Error; err != nil {
		log.Printf("ERROR: Failed to save access request for %s: %v", visitor.Email, err)
		return err
	}
	return nil
}

// FindVisitorByToken returns nil without an error when no request carries the token.
func (s *Service) FindVisitorByToken(ctx context.Context, token string) (*models.PendingVisitor, error) {
	var visitor models.PendingVisitor
	err := s.DB.WithContext(ctx).Where("session_token = ?", token).First(&visitor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

// FindVisitorByID returns nil without an error when the id is unknown.
func (s *Service) FindVisitorByID(ctx context.Context, id uint) (*models.PendingVisitor, error) {
	var visitor models.PendingVisitor
	err := s.DB.WithContext(ctx).First(&visitor, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

// UpdateVisitorContact rewrites name and email of a request that is still
// pending. It reports false when the request was decided in the meantime.
func (s *Service) UpdateVisitorContact(ctx context.Context, id uint, name, email string) (bool, error) {
	result := s.DB.WithContext(ctx).Model(&models.PendingVisitor{}).
		Where("id = ? AND state = ?", id, models.VisitorPending).
		Updates(map[string]interface{}{
			"name":  name,
			"email": email,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecideVisitor moves a pending request into a terminal state. The update is
// conditional on the row still being pending, so the first decision wins and
// later calls report false. An unknown id yields ErrNotFound.
func (s *Service) DecideVisitor(ctx context.Context, id uint, state models.VisitorState, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"state":      state,
		"decided_at": at,
	}
	if state == models.VisitorApproved {
		updates["approved_at"] = at
	}

	result := s.DB.WithContext(ctx).Model(&models.PendingVisitor{}).
		Where("id = ? AND state = ?", id, models.VisitorPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.PendingVisitor{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// ListPendingVisitors returns undecided requests, newest first.
func (s *Service) ListPendingVisitors(ctx context.Context) ([]models.PendingVisitor, error) {
	var visitors []models.PendingVisitor
	if err := s.DB.WithContext(ctx).
		Where("state = ?", models.VisitorPending).
		Order("requested_at DESC").Order("id DESC").
		Find(&visitors).Error; err != nil {
		log.Printf("ERROR: Failed to list pending visitors: %v", err)
		return nil, err
	}
	return visitors, nil
}
