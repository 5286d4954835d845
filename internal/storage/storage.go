package storage

import (
	"context"
	"errors"
	"time"

	"welcomewindow/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned by mutations that target a row that does not exist.
var ErrNotFound = errors.New("record not found")

type Storage interface {
	CurrentStatus(ctx context.Context) (*models.AvailabilityStatus, error)
	AppendStatus(ctx context.Context, status *models.AvailabilityStatus) error

	CreateVisitor(ctx context.Context, visitor *models.PendingVisitor) error
	FindVisitorByToken(ctx context.Context, token string) (*models.PendingVisitor, error)
	FindVisitorByID(ctx context.Context, id uint) (*models.PendingVisitor, error)
	UpdateVisitorContact(ctx context.Context, id uint, name, email string) (bool, error)
	DecideVisitor(ctx context.Context, id uint, state models.VisitorState, at time.Time) (bool, error)
	ListPendingVisitors(ctx context.Context) ([]models.PendingVisitor, error)

	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	RecentChatMessages(ctx context.Context, limit int) ([]models.ChatMessage, error)
	DeleteChatMessage(ctx context.Context, id uint) error
	ClearChatMessages(ctx context.Context) (int64, error)

	StartVisit(ctx context.Context, visitorName, connectionType string, at time.Time) (uint, error)
	EndVisit(ctx context.Context, id uint, at time.Time) (bool, error)
	RecentVisits(ctx context.Context, limit int) ([]models.VisitLog, error)
	VisitStats(ctx context.Context, now time.Time) (models.VisitStats, error)

	AddGuestbookEntry(ctx context.Context, entry *models.GuestbookEntry) error
	ListGuestbook(ctx context.Context, limit int, unreadOnly bool) ([]models.GuestbookEntry, error)
	MarkGuestbookRead(ctx context.Context, id uint) error
	UnreadGuestbookCount(ctx context.Context) (int64, error)

	SaveGameRequest(ctx context.Context, req *models.GameRequest) error

	SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error
	ListPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor. rdb may be nil when the event mirror is disabled.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// CurrentStatus returns the newest availability row, or the default status
// when nothing was recorded yet.
func (s *Service) CurrentStatus(ctx context.Context) (*models.AvailabilityStatus, error) {
	var status models.AvailabilityStatus
	err := s.DB.WithContext(ctx).Order("id DESC").First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := models.DefaultStatus()
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// AppendStatus inserts a new availability row; older rows are never updated.
func (s *Service) AppendStatus(ctx context.Context, status *models.AvailabilityStatus) error {
	return s.DB.WithContext(ctx).Create(status).Error
}

// SaveGameRequest records a mini-game request.
func (s *Service) SaveGameRequest(ctx context.Context, req *models.GameRequest) error {
	return s.DB.WithContext(ctx).Create(req).Error
}
