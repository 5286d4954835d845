package session

import (
	"log"
	"net/http"

	"welcomewindow/backend/internal/config"

	"github.com/gin-gonic/gin"
)

// Middleware loads the session cookie into the request context. Requests
// without a valid cookie continue with an empty session.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(config.SessionCookieName)
		if err == nil && raw != "" {
			sess, err := m.Parse(raw)
			if err != nil {
				log.Printf("WARN: [Session] discarding invalid cookie from %s", c.ClientIP())
			} else {
				setContext(c, sess)
			}
		}
		c.Next()
	}
}

// Save issues a new cookie for sess and makes it the current request session.
func (m *Manager) Save(c *gin.Context, sess Session) error {
	token, err := m.Issue(sess)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.SessionCookieName, token, int(m.lifetime.Seconds()), "/", "", m.secure, true)
	setContext(c, sess)
	return nil
}

// Clear removes the session cookie.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.SessionCookieName, "", -1, "/", "", m.secure, true)
	setContext(c, Session{})
}

// RequireHost aborts with 401 unless the session belongs to the host.
func RequireHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c).IsHost {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "host login required"})
			return
		}
		c.Next()
	}
}

// RequireVisitor aborts with 403 unless the session has entered the room or is the host.
func RequireVisitor() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := FromContext(c)
		if !sess.IsHost && sess.VisitorID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "enter the room first"})
			return
		}
		c.Next()
	}
}
