package handler

import (
	"context"
	"log"

	"welcomewindow/backend/internal/chathub"
	"welcomewindow/backend/internal/session"

	"github.com/gin-gonic/gin"
)

// ServeWebSocket upgrades the request and hands the connection to the hub.
// The identity comes from the session cookie; waiting visitors are told so by
// the hub after the upgrade.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	sess := session.FromContext(c)
	if sess.Lang == "" {
		sess.Lang = h.lang(c)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Printf("WARN: [WS] upgrade failed from %s: %v", c.ClientIP(), err)
		return
	}

	sock := h.Config.Socket
	client := chathub.NewWebSocketClient(context.WithoutCancel(c.Request.Context()), conn, h.Hub, sess, chathub.SocketOptions{
		PingTimeout:  sock.PingTimeout,
		PingInterval: sock.PingInterval,
		SendBuffer:   sock.SendBuffer,
		MaxFrameSize: sock.MaxFrameBytes,
	})
	client.Run()
}
