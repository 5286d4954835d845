package storage

import (
	"context"
	"log"

	"welcomewindow/backend/internal/models"

	"gorm.io/gorm"
)

// SaveChatMessage inserts msg; GORM fills in ID and CreatedAt.
func (s *Service) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save chat message from %s: %v", msg.SenderName, err)
		return err
	}
	return nil
}

// RecentChatMessages returns the newest limit messages in insertion order
// (oldest first).
func (s *Service) RecentChatMessages(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := s.DB.WithContext(ctx).Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		log.Printf("ERROR: Failed to load chat history: %v", err)
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteChatMessage hard-deletes one message.
func (s *Service) DeleteChatMessage(ctx context.Context, id uint) error {
	result := s.DB.WithContext(ctx).Delete(&models.ChatMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearChatMessages hard-deletes every message and returns how many were removed.
func (s *Service) ClearChatMessages(ctx context.Context) (int64, error) {
	result := s.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ChatMessage{})
	return result.RowsAffected, result.Error
}
