package chathub_test

import (
	"context"
	"sync"
	"time"

	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/session"

	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock for the persistence interfaces used by the hub.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) StartVisit(ctx context.Context, visitorName, connectionType string, at time.Time) (uint, error) {
	args := m.Called(ctx, visitorName, connectionType, at)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockStore) EndVisit(ctx context.Context, id uint, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStore) RecentChatMessages(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStore) DeleteChatMessage(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) ClearChatMessages(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) SaveGameRequest(ctx context.Context, req *models.GameRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockAccess approves a fixed set of tokens.
type MockAccess struct {
	approved map[string]bool
}

func (a *MockAccess) IsApproved(ctx context.Context, token string) (bool, error) {
	return a.approved[token], nil
}

// MockClient is a channel-backed Client.
type MockClient struct {
	id     string
	sess   session.Session
	send   chan models.Event
	once   sync.Once
	closed bool
}

func newMockClient(id string, sess session.Session) *MockClient {
	return newMockClientWithBuffer(id, sess, 32)
}

func newMockClientWithBuffer(id string, sess session.Session, size int) *MockClient {
	return &MockClient{
		id:   id,
		sess: sess,
		send: make(chan models.Event, size),
	}
}

func (c *MockClient) ConnID() string                      { return c.id }
func (c *MockClient) Session() session.Session            { return c.sess }
func (c *MockClient) GetSendChannel() chan<- models.Event { return c.send }
func (c *MockClient) Run()                                {}

func (c *MockClient) Close() {
	c.once.Do(func() {
		c.closed = true
		close(c.send)
	})
}

// drain returns every event queued so far.
func (c *MockClient) drain() []models.Event {
	var out []models.Event
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

// types returns the event types of evs in order.
func types(evs []models.Event) []models.EventType {
	out := make([]models.EventType, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}
