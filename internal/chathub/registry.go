package chathub

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/session"
)

// connectionTypeChat is recorded on visit logs opened by the registry.
const connectionTypeChat = "chat"

// VisitStore persists visit logs for tracked connections.
type VisitStore interface {
	StartVisit(ctx context.Context, visitorName, connectionType string, at time.Time) (uint, error)
	EndVisit(ctx context.Context, id uint, at time.Time) (bool, error)
}

// Registry is the roster of live visitor connections. Host connections are
// never tracked.
type Registry struct {
	mu    sync.Mutex
	conns map[string]models.LiveConnection

	store     VisitStore
	notifier  *Notifier
	logVisits bool
	now       func() time.Time
}

// NewRegistry Constructor. Visits are only logged when logVisits is set.
func NewRegistry(store VisitStore, notifier *Notifier, logVisits bool) *Registry {
	return &Registry{
		conns:     make(map[string]models.LiveConnection),
		store:     store,
		notifier:  notifier,
		logVisits: logVisits,
		now:       time.Now,
	}
}

// OnConnect tracks a visitor connection and announces it to the admin room.
// It reports false for host sessions and for connection ids already tracked.
func (r *Registry) OnConnect(ctx context.Context, connID string, sess session.Session) bool {
	if sess.IsHost {
		return false
	}

	name := sess.VisitorName
	if name == "" {
		name = config.AnonymousVisitorName
	}
	at := r.now()

	var visitID *uint
	if r.logVisits {
		id, err := r.store.StartVisit(ctx, name, connectionTypeChat, at)
		if err != nil {
			log.Printf("ERROR: [Registry] %v", err)
		} else {
			visitID = &id
		}
	}

	r.mu.Lock()
	if _, exists := r.conns[connID]; exists {
		r.mu.Unlock()
		if visitID != nil {
			r.endVisit(ctx, *visitID)
		}
		log.Printf("WARN: [Registry] connection %s already tracked", connID)
		return false
	}
	r.conns[connID] = models.LiveConnection{
		ConnectionID: connID,
		VisitorID:    sess.VisitorID,
		VisitorName:  name,
		ConnectedAt:  at,
		VisitLogID:   visitID,
	}
	count := len(r.conns)
	r.mu.Unlock()

	r.notifier.Deliver(ToRoom(AdminRoom), models.EventVisitorJoined, models.PresencePayload{
		VisitorName: name,
		Count:       count,
	})
	return true
}

// OnDisconnect removes a tracked connection, closes its visit log and
// announces the departure. Unknown ids are ignored, so it is safe to call
// twice for the same connection.
func (r *Registry) OnDisconnect(ctx context.Context, connID string) bool {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
	}
	count := len(r.conns)
	r.mu.Unlock()

	if !ok {
		return false
	}
	if conn.VisitLogID != nil {
		r.endVisit(ctx, *conn.VisitLogID)
	}

	r.notifier.Deliver(ToRoom(AdminRoom), models.EventVisitorLeft, models.PresencePayload{
		VisitorName: conn.VisitorName,
		Count:       count,
	})
	return true
}

func (r *Registry) endVisit(ctx context.Context, id uint) {
	if _, err := r.store.EndVisit(ctx, id, r.now()); err != nil {
		log.Printf("ERROR: [Registry] failed to close visit %d: %v", id, err)
	}
}

// Snapshot returns the live connections ordered by connect time, then id.
func (r *Registry) Snapshot() []models.LiveConnection {
	r.mu.Lock()
	out := make([]models.LiveConnection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ConnectedAt.Equal(out[j].ConnectedAt) {
			return out[i].ConnectedAt.Before(out[j].ConnectedAt)
		}
		return out[i].ConnectionID < out[j].ConnectionID
	})
	return out
}

// Count returns the roster size.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
