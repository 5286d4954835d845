package chathub

import (
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/session"
)

// Client is the interface for one live connection. It abstracts the
// underlying transport so that the hub can be driven by WebSocket clients in
// production and by channel-backed fakes in tests.
type Client interface {
	// ConnID returns the process-unique identifier of the connection.
	ConnID() string
	// Session returns the identity the connection was opened with.
	Session() session.Session

	// GetSendChannel returns the buffered channel the Notifier writes to.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the connection down. It must be safe to call more than once.
	Close()
}
