package chathub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/session"
)

// ErrMessageTooLong is returned when a chat message exceeds the configured limit.
var ErrMessageTooLong = errors.New("message too long")

// MessageStore persists chat messages.
type MessageStore interface {
	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	RecentChatMessages(ctx context.Context, limit int) ([]models.ChatMessage, error)
	DeleteChatMessage(ctx context.Context, id uint) error
	ClearChatMessages(ctx context.Context) (int64, error)
}

// Sender identifies the author of a chat message.
type Sender struct {
	ConnID  string
	Session session.Session
}

// Relay validates, persists and routes chat messages.
type Relay struct {
	store     MessageStore
	notifier  *Notifier
	maxLength int
	hostName  string
}

// NewRelay Constructor.
func NewRelay(store MessageStore, notifier *Notifier, maxLength int, hostName string) *Relay {
	if maxLength <= 0 {
		maxLength = config.DefaultMaxMessageLength
	}
	if hostName == "" {
		hostName = config.HostDisplayName
	}
	return &Relay{
		store:     store,
		notifier:  notifier,
		maxLength: maxLength,
		hostName:  hostName,
	}
}

// MaxLength returns the configured message limit in characters.
func (r *Relay) MaxLength() int {
	return r.maxLength
}

// PostMessage stores a message and delivers new_message. Host messages go to
// everyone; visitor messages go back to the author and to the admin room.
// A message that is empty after trimming is dropped and yields nil, nil.
func (r *Relay) PostMessage(ctx context.Context, from Sender, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(text) > r.maxLength {
		return nil, ErrMessageTooLong
	}

	msg := &models.ChatMessage{Message: text}
	if from.Session.IsHost {
		msg.Sender = models.SenderAdmin
		msg.SenderName = r.hostName
	} else {
		msg.Sender = models.SenderVisitor
		msg.SenderName = from.Session.VisitorName
		if msg.SenderName == "" {
			msg.SenderName = config.AnonymousVisitorName
		}
		if from.Session.VisitorID != "" {
			vid := from.Session.VisitorID
			msg.VisitorID = &vid
		}
	}

	if err := r.store.SaveChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}

	aud := ToEveryone()
	if msg.Sender == models.SenderVisitor {
		aud = ToConnection(from.ConnID).Plus(ToRoom(AdminRoom))
	}
	r.notifier.Deliver(aud, models.EventNewMessage, msg)
	return msg, nil
}

// DeleteMessage hard-deletes one message and tells everyone.
func (r *Relay) DeleteMessage(ctx context.Context, id uint) error {
	if err := r.store.DeleteChatMessage(ctx, id); err != nil {
		return err
	}
	r.notifier.Deliver(ToEveryone(), models.EventMessageDeleted, map[string]uint{"id": id})
	return nil
}

// ClearAll hard-deletes every message and tells everyone.
func (r *Relay) ClearAll(ctx context.Context) (int64, error) {
	n, err := r.store.ClearChatMessages(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear chat: %w", err)
	}
	r.notifier.Deliver(ToEveryone(), models.EventChatCleared, map[string]int64{"removed": n})
	return n, nil
}

// RecentHistory returns the newest limit messages, oldest first.
func (r *Relay) RecentHistory(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	msgs, err := r.store.RecentChatMessages(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}
