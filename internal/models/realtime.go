package models

import (
	"encoding/json"
	"time"
)

// EventType names a real-time event exchanged over the WebSocket.
type EventType string

// Outbound events (server → client).
const (
	EventConnectionEstablished EventType = "connection_established"
	EventAwaitingApproval      EventType = "awaiting_approval"
	EventAdminJoined           EventType = "admin_joined"
	EventActiveVisitors        EventType = "active_visitors"
	EventChatHistory           EventType = "chat_history"
	EventVisitorJoined         EventType = "visitor_joined"
	EventVisitorLeft           EventType = "visitor_left"
	EventNewMessage            EventType = "new_message"
	EventMessageDeleted        EventType = "message_deleted"
	EventChatCleared           EventType = "chat_cleared"
	EventNewAccessRequest      EventType = "new_access_request"
	EventAccessDecision        EventType = "access_decision"
	EventAccessDecided         EventType = "access_decided"
	EventStatusChanged         EventType = "status_changed"
	EventGameRequested         EventType = "game_requested"
	EventError                 EventType = "error"
)

// Inbound events (client → server).
const (
	EventJoinAdmin   EventType = "join_admin"
	EventSendMessage EventType = "send_message"
	EventRequestGame EventType = "request_game"
)

// Event is the envelope written to every connection.
// Seq grows monotonically across the process so clients can order events.
type Event struct {
	Type EventType `json:"type"`
	Seq  uint64    `json:"seq"`
	Data any       `json:"data,omitempty"`
}

// InboundEvent is the envelope read from a connection; Data is decoded
// according to Type by the hub.
type InboundEvent struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SendMessagePayload is the data of a send_message event.
type SendMessagePayload struct {
	Message string `json:"message"`
}

// RequestGamePayload is the data of a request_game event.
type RequestGamePayload struct {
	GameType string          `json:"game_type"`
	Params   json.RawMessage `json:"params,omitempty"`
}

// PresencePayload is the data of visitor_joined and visitor_left.
type PresencePayload struct {
	VisitorName string `json:"visitor_name"`
	Count       int    `json:"count"`
}

// LiveConnection describes one tracked visitor connection. It only lives in
// memory while the transport session is open.
type LiveConnection struct {
	ConnectionID string    `json:"connection_id"`
	VisitorID    string    `json:"visitor_id"`
	VisitorName  string    `json:"visitor_name"`
	ConnectedAt  time.Time `json:"connected_at"`
	VisitLogID   *uint     `json:"visit_log_id,omitempty"`
}

// AccessDecisionPayload tells a waiting visitor how the host decided.
type AccessDecisionPayload struct {
	VisitorID uint `json:"visitor_id"`
	Approved  bool `json:"approved"`
	Rejected  bool `json:"rejected"`
}

// ErrorPayload is the data of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}
