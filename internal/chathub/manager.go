package chathub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"

	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"
)

// GameStore persists mini-game requests.
type GameStore interface {
	SaveGameRequest(ctx context.Context, req *models.GameRequest) error
}

// AccessChecker tells whether an access token was approved by the host.
type AccessChecker interface {
	IsApproved(ctx context.Context, token string) (bool, error)
}

// Translator renders user-facing error messages.
type Translator interface {
	Format(lang, key string, args ...any) string
}

type connState int

const (
	stateWaiting connState = iota
	stateAdmitted
	stateHost
)

// HubOptions configures a Hub.
type HubOptions struct {
	Games           GameStore
	Access          AccessChecker
	Translator      Translator
	RequireApproval bool
	HistoryLimit    int
	HostName        string
}

// Hub is the single router for inbound connection events. It owns no
// goroutine of its own: every call runs on the connection's read pump, so the
// events of one connection are handled in order.
type Hub struct {
	Notifier *Notifier
	Registry *Registry
	Relay    *Relay

	opts HubOptions

	mu     sync.Mutex
	states map[string]connState
}

// NewHub wires the hub to its collaborators, which are constructed by main
// and live for the whole process.
func NewHub(notifier *Notifier, registry *Registry, relay *Relay, opts HubOptions) *Hub {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = config.DefaultChatHistoryLimit
	}
	if opts.HostName == "" {
		opts.HostName = config.HostDisplayName
	}
	return &Hub{
		Notifier: notifier,
		Registry: registry,
		Relay:    relay,
		opts:     opts,
		states:   make(map[string]connState),
	}
}

// Connect registers a freshly opened connection. Visitors that still wait for
// approval join privately and only receive access decisions until they
// reconnect.
func (h *Hub) Connect(ctx context.Context, c Client) {
	id := c.ConnID()
	sess := c.Session()

	if sess.IsHost {
		h.Notifier.Join(c)
		h.setState(id, stateHost)
		h.Notifier.Deliver(ToConnection(id), models.EventConnectionEstablished, fields{
			"connection_id": id,
			"host":          true,
		})
		return
	}

	if h.opts.RequireApproval && !h.approved(ctx, sess.AccessToken) {
		h.Notifier.JoinPrivate(c)
		h.setState(id, stateWaiting)
		if pid, ok := sess.PendingID(); ok {
			h.Notifier.JoinRoom(id, AccessRoom(pid))
		}
		h.Notifier.Deliver(ToConnection(id), models.EventAwaitingApproval, fields{
			"connection_id": id,
		})
		return
	}

	h.Notifier.Join(c)
	h.setState(id, stateAdmitted)
	h.Registry.OnConnect(ctx, id, sess)
	h.Notifier.Deliver(ToConnection(id), models.EventConnectionEstablished, fields{
		"connection_id": id,
		"visitor_name":  sess.VisitorName,
	})
	h.Notifier.Deliver(ToConnection(id), models.EventChatHistory, []models.ChatMessage{})
}

// Disconnect runs the cleanup for a closed connection. It is safe to call more
// than once.
func (h *Hub) Disconnect(ctx context.Context, c Client) {
	id := c.ConnID()
	h.Notifier.Leave(id)

	h.mu.Lock()
	delete(h.states, id)
	h.mu.Unlock()

	h.Registry.OnDisconnect(ctx, id)
	c.Close()
}

// Handle routes one inbound event.
func (h *Hub) Handle(ctx context.Context, c Client, ev models.InboundEvent) {
	switch ev.Type {
	case models.EventJoinAdmin:
		h.handleJoinAdmin(ctx, c)
	case models.EventSendMessage:
		h.handleSendMessage(ctx, c, ev.Data)
	case models.EventRequestGame:
		h.handleRequestGame(ctx, c, ev.Data)
	default:
		h.sendError(c, "error.unknown_event", ev.Type)
	}
}

func (h *Hub) handleJoinAdmin(ctx context.Context, c Client) {
	id := c.ConnID()
	if h.state(id) != stateHost {
		h.sendError(c, "error.host_only")
		return
	}
	h.Notifier.JoinRoom(id, AdminRoom)

	h.Notifier.Deliver(ToConnection(id), models.EventAdminJoined, fields{
		"message":       h.translate(c.Session().Lang, "hub.admin_connected"),
		"visitor_count": h.Registry.Count(),
	})
	h.Notifier.Deliver(ToConnection(id), models.EventActiveVisitors, h.Registry.Snapshot())

	history, err := h.Relay.RecentHistory(ctx, h.opts.HistoryLimit)
	if err != nil {
		log.Printf("ERROR: [Hub] %v", err)
		history = []models.ChatMessage{}
	}
	h.Notifier.Deliver(ToConnection(id), models.EventChatHistory, history)
}

func (h *Hub) handleSendMessage(ctx context.Context, c Client, raw json.RawMessage) {
	if !h.canChat(c.ConnID()) {
		h.sendError(c, "error.not_admitted")
		return
	}

	var payload models.SendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.sendError(c, "error.invalid_payload")
		return
	}

	_, err := h.Relay.PostMessage(ctx, Sender{ConnID: c.ConnID(), Session: c.Session()}, payload.Message)
	switch {
	case errors.Is(err, ErrMessageTooLong):
		h.sendError(c, "error.message_too_long", h.Relay.MaxLength())
	case err != nil:
		log.Printf("ERROR: [Hub] %v", err)
		h.sendError(c, "error.internal")
	}
}

func (h *Hub) handleRequestGame(ctx context.Context, c Client, raw json.RawMessage) {
	id := c.ConnID()
	if !h.canChat(id) {
		h.sendError(c, "error.not_admitted")
		return
	}

	var payload models.RequestGamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.sendError(c, "error.invalid_payload")
		return
	}
	gameType := strings.TrimSpace(payload.GameType)
	if gameType == "" {
		h.sendError(c, "error.game_type_required")
		return
	}

	sess := c.Session()
	requester := sess.VisitorName
	if sess.IsHost {
		requester = h.opts.HostName
	} else if requester == "" {
		requester = config.AnonymousVisitorName
	}

	req := &models.GameRequest{
		GameType:  gameType,
		Requester: requester,
		VisitorID: sess.VisitorID,
		Params:    []byte(payload.Params),
	}
	if h.opts.Games != nil {
		if err := h.opts.Games.SaveGameRequest(ctx, req); err != nil {
			log.Printf("ERROR: [Hub] failed to save game request from %s: %v", requester, err)
			h.sendError(c, "error.internal")
			return
		}
	}

	h.Notifier.Deliver(ToConnection(id).Plus(ToRoom(AdminRoom)), models.EventGameRequested, fields{
		"game_type": gameType,
		"requester": requester,
		"params":    payload.Params,
	})
}

// CloseAll disconnects every open connection.
func (h *Hub) CloseAll(ctx context.Context) {
	for _, c := range h.Notifier.Peers() {
		h.Disconnect(ctx, c)
	}
}

func (h *Hub) approved(ctx context.Context, token string) bool {
	if token == "" || h.opts.Access == nil {
		return false
	}
	ok, err := h.opts.Access.IsApproved(ctx, token)
	if err != nil {
		log.Printf("ERROR: [Hub] approval lookup failed: %v", err)
		return false
	}
	return ok
}

func (h *Hub) setState(id string, st connState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[id] = st
}

func (h *Hub) state(id string) connState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.states[id]
}

func (h *Hub) canChat(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[id]
	return ok && (st == stateAdmitted || st == stateHost)
}

func (h *Hub) translate(lang, key string, args ...any) string {
	if h.opts.Translator == nil {
		return key
	}
	return h.opts.Translator.Format(lang, key, args...)
}

func (h *Hub) sendError(c Client, key string, args ...any) {
	msg := h.translate(c.Session().Lang, key, args...)
	h.Notifier.Deliver(ToConnection(c.ConnID()), models.EventError, models.ErrorPayload{Message: msg})
}

// fields is a shorthand for ad-hoc event payloads.
type fields map[string]any
