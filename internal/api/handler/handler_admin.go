package handler

import (
	"log"
	"net/http"
	"strings"

	"welcomewindow/backend/internal/chathub"
	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/session"

	"github.com/gin-gonic/gin"
)

// Login checks the shared host credential sent as form fields.
func (h *Handler) Login(c *gin.Context) {
	if !h.Credentials.Check(c.PostForm("username"), c.PostForm("password")) {
		log.Printf("WARN: [API] failed host login from %s", c.ClientIP())
		h.fail(c, http.StatusUnauthorized, "error.invalid_credentials")
		return
	}
	sess := session.Session{
		IsHost:      true,
		VisitorName: h.Config.Site.HostName,
		Lang:        h.lang(c),
	}
	if err := h.Sessions.Save(c, sess); err != nil {
		h.internalError(c, "save session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"host": true})
}

func (h *Handler) Logout(c *gin.Context) {
	h.Sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"host": false})
}

// Dashboard collects everything the host page shows on load.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	status, err := h.Store.CurrentStatus(ctx)
	if err != nil {
		h.internalError(c, "current status", err)
		return
	}
	guestbook, err := h.Store.ListGuestbook(ctx, config.DashboardGuestbookLimit, false)
	if err != nil {
		h.internalError(c, "list guestbook", err)
		return
	}
	unread, err := h.Store.UnreadGuestbookCount(ctx)
	if err != nil {
		h.internalError(c, "unread guestbook count", err)
		return
	}
	visits, err := h.Store.RecentVisits(ctx, config.DashboardVisitLimit)
	if err != nil {
		h.internalError(c, "recent visits", err)
		return
	}
	stats, err := h.Store.VisitStats(ctx, h.now())
	if err != nil {
		h.internalError(c, "visit stats", err)
		return
	}
	pending, err := h.Gate.ListPending(ctx)
	if err != nil {
		h.internalError(c, "list pending", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"guestbook":       guestbook,
		"unread_count":    unread,
		"recent_visits":   visits,
		"stats":           stats,
		"active_visitors": h.Hub.Registry.Count(),
		"pending":         pending,
	})
}

type statusRequest struct {
	Status  models.AvailabilityState `json:"status"`
	Message string                   `json:"message"`
}

// UpdateStatus appends a status row and tells every connection about it.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "error.invalid_payload")
		return
	}
	if !req.Status.Valid() {
		h.fail(c, http.StatusBadRequest, "validation.status_invalid")
		return
	}

	status := models.AvailabilityStatus{Status: req.Status, Message: strings.TrimSpace(req.Message)}
	if err := h.Store.AppendStatus(c.Request.Context(), &status); err != nil {
		h.internalError(c, "append status", err)
		return
	}
	if h.StatusCache != nil {
		h.StatusCache.Invalidate()
	}
	h.Hub.Notifier.Deliver(chathub.ToEveryone(), models.EventStatusChanged, status)
	log.Printf("INFO: [API] host status is now %s", status.Status)
	c.JSON(http.StatusOK, status)
}

func (h *Handler) ListPending(c *gin.Context) {
	pending, err := h.Gate.ListPending(c.Request.Context())
	if err != nil {
		h.internalError(c, "list pending", err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (h *Handler) ApproveVisitor(c *gin.Context) {
	h.decide(c, true)
}

func (h *Handler) RejectVisitor(c *gin.Context) {
	h.decide(c, false)
}

// decide answers 200 with changed=false when the request was already decided.
func (h *Handler) decide(c *gin.Context, approve bool) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var (
		changed bool
		err     error
	)
	if approve {
		changed, err = h.Gate.Approve(c.Request.Context(), id)
	} else {
		changed, err = h.Gate.Reject(c.Request.Context(), id)
	}
	if err != nil {
		h.notFoundOr(c, "decide visitor", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "changed": changed})
}

func (h *Handler) MarkGuestbookRead(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.Store.MarkGuestbookRead(c.Request.Context(), id); err != nil {
		h.notFoundOr(c, "mark guestbook read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_read": true})
}

func (h *Handler) DeleteChatMessage(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.Hub.Relay.DeleteMessage(c.Request.Context(), id); err != nil {
		h.notFoundOr(c, "delete chat message", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearChat(c *gin.Context) {
	n, err := h.Hub.Relay.ClearAll(c.Request.Context())
	if err != nil {
		h.internalError(c, "clear chat", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

// Roster lists the visitors connected right now.
func (h *Handler) Roster(c *gin.Context) {
	c.JSON(http.StatusOK, h.Hub.Registry.Snapshot())
}
