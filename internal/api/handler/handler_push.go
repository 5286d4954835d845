package handler

import (
	"net/http"

	"welcomewindow/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutPushSubscription registers or refreshes a browser push endpoint of the host.
func (h *Handler) PutPushSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := models.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.Store.SavePushSubscription(c.Request.Context(), &sub); err != nil {
		h.internalError(c, "save push subscription", err)
		return
	}
	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

func (h *Handler) DeletePushSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.DeletePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.internalError(c, "delete push subscription", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetVAPIDPublicKey returns the key browsers need to subscribe.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	key := h.Config.Alerts.VAPIDPublicKey
	if key == "" {
		h.fail(c, http.StatusNotFound, "error.not_found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": key})
}
