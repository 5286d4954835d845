package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// GetStatus returns the host's current availability.
func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.Store.CurrentStatus(c.Request.Context())
	if err != nil {
		h.internalError(c, "current status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     status.Status,
		"message":    status.Message,
		"updated_at": status.UpdatedAt,
		"site_name":  h.Config.Site.Name,
		"tagline":    h.Config.Site.Tagline,
	})
}

type guestbookRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// PostGuestbook stores a note for the host.
func (h *Handler) PostGuestbook(c *gin.Context) {
	var req guestbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "error.invalid_payload")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.fail(c, http.StatusBadRequest, "validation.message_required")
		return
	}
	if max := h.Config.Features.MaxMessageLength; utf8.RuneCountInString(message) > max {
		h.fail(c, http.StatusBadRequest, "validation.message_too_long", max)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = config.AnonymousVisitorName
	}

	entry := models.GuestbookEntry{VisitorName: name, Message: message}
	if err := h.Store.AddGuestbookEntry(c.Request.Context(), &entry); err != nil {
		h.internalError(c, "add guestbook entry", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetQRCode renders a PNG QR code pointing at the public site.
func (h *Handler) GetQRCode(c *gin.Context) {
	target := h.Config.Server.PublicURL
	if target == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		target = scheme + "://" + c.Request.Host + "/"
	}

	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		h.internalError(c, "qr encode", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
