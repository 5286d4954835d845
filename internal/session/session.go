// Package session carries the per-request identity of a visitor or the host.
// The value is stored in a signed JWT cookie and passed explicitly to every
// component that needs to know who is calling.
package session

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const contextKey = "session"

// Session is the identity attached to one request or connection.
type Session struct {
	// VisitorID is the approved PendingVisitor id when approval is required,
	// otherwise an anonymous id minted on room entry.
	VisitorID string `json:"vid,omitempty"`
	// VisitorName is the display name chosen on room entry or access request.
	VisitorName string `json:"vname,omitempty"`
	// AccessToken is the token returned by an access request.
	AccessToken string `json:"atok,omitempty"`
	// IsHost is set after a successful admin login.
	IsHost bool `json:"host,omitempty"`
	// Lang is the preferred language for user-facing messages.
	Lang string `json:"lang,omitempty"`
}

// PendingID parses VisitorID as a PendingVisitor id.
func (s Session) PendingID() (uint, bool) {
	id, err := strconv.ParseUint(s.VisitorID, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// FromContext returns the session loaded by the middleware. A request without
// a valid cookie yields the zero Session.
func FromContext(c *gin.Context) Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return Session{}
	}
	sess, _ := v.(Session)
	return sess
}

func setContext(c *gin.Context, sess Session) {
	c.Set(contextKey, sess)
}
