// Package handler exposes the HTTP and WebSocket surface of the welcome window.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"welcomewindow/backend/internal/approval"
	"welcomewindow/backend/internal/chathub"
	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/localization"
	"welcomewindow/backend/internal/mw"
	"welcomewindow/backend/internal/session"
	"welcomewindow/backend/internal/storage"
	"welcomewindow/backend/internal/trivia"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Deps are the lifecycle-scoped services built by main.
type Deps struct {
	Config      *config.Config
	Store       storage.Storage
	Hub         *chathub.Hub
	Gate        *approval.Service
	Sessions    *session.Manager
	Credentials *session.Credentials
	Trivia      *trivia.Client
	Localizer   *localization.Localizer
	StatusCache *mw.ResponseCache
	Limiter     *mw.IPRateLimiter
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	Deps

	upgrader websocket.Upgrader
	now      func() time.Time
}

func NewHandler(d Deps) *Handler {
	h := &Handler{Deps: d, now: time.Now}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(d.Config.Server.AllowedOrigins),
	}
	return h
}

// originChecker allows the configured origins. With none configured gorilla's
// same-origin check applies.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		if set["*"] {
			return true
		}
		return set[r.Header.Get("Origin")]
	}
}

// lang picks the language for user-facing messages of this request.
func (h *Handler) lang(c *gin.Context) string {
	if sess := session.FromContext(c); sess.Lang != "" {
		return sess.Lang
	}
	return h.Localizer.Detect(c.GetHeader("Accept-Language"))
}

func (h *Handler) fail(c *gin.Context, status int, key string, args ...any) {
	c.AbortWithStatusJSON(status, gin.H{"error": h.Localizer.Format(h.lang(c), key, args...)})
}

// internalError logs err and answers 500.
func (h *Handler) internalError(c *gin.Context, where string, err error) {
	log.Printf("ERROR: [API] %s: %v", where, err)
	h.fail(c, http.StatusInternalServerError, "error.internal")
}

// notFoundOr answers 404 for storage.ErrNotFound and 500 otherwise.
func (h *Handler) notFoundOr(c *gin.Context, where string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.fail(c, http.StatusNotFound, "error.not_found")
		return
	}
	h.internalError(c, where, err)
}

func (h *Handler) idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.fail(c, http.StatusBadRequest, "validation.invalid_id")
		return 0, false
	}
	return uint(id), true
}

// requireAdmitted lets through the host and visitors that may be in the room.
// With approval enabled the session's access token must have been approved.
func (h *Handler) requireAdmitted() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c)
		if sess.IsHost || !h.Config.Features.RequireApproval {
			c.Next()
			return
		}
		ok, err := h.Gate.IsApproved(c.Request.Context(), sess.AccessToken)
		if err != nil {
			h.internalError(c, "approval check", err)
			return
		}
		if !ok {
			h.fail(c, http.StatusForbidden, "error.approval_required")
			return
		}
		c.Next()
	}
}

// Healthz reports whether the database answers.
func (h *Handler) Healthz(c *gin.Context) {
	if p, ok := h.Store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
