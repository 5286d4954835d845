package handler

import (
	"welcomewindow/backend/internal/session"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()
	r.Use(h.Sessions.Middleware())

	r.GET("/healthz", h.Healthz)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	if h.Limiter != nil {
		api.Use(h.Limiter.Middleware(func(c *gin.Context) string {
			return h.Localizer.Format(h.lang(c), "error.rate_limited")
		}))
	}
	{
		if h.StatusCache != nil {
			api.GET("/status", h.StatusCache.Middleware(), h.GetStatus)
		} else {
			api.GET("/status", h.GetStatus)
		}
		api.GET("/qr", h.GetQRCode)
		api.POST("/guestbook", h.PostGuestbook)
		api.POST("/room/enter", h.EnterRoom)
		api.POST("/room/video", h.EnterVideoRoom)
		api.POST("/access/request", h.RequestAccess)
		api.GET("/access/check", h.CheckAccess)

		games := api.Group("/games", session.RequireVisitor(), h.requireAdmitted())
		games.GET("/wordsearch", h.GetWordSearch)
		games.GET("/sudoku", h.GetSudoku)
		games.GET("/trivia", h.GetTrivia)

		api.POST("/admin/login", h.Login)
		api.POST("/admin/logout", h.Logout)

		admin := api.Group("/admin", session.RequireHost())
		admin.GET("/dashboard", h.Dashboard)
		admin.POST("/status", h.UpdateStatus)
		admin.GET("/visitors/pending", h.ListPending)
		admin.POST("/visitors/:id/approve", h.ApproveVisitor)
		admin.POST("/visitors/:id/reject", h.RejectVisitor)
		admin.POST("/guestbook/:id/read", h.MarkGuestbookRead)
		admin.DELETE("/chat/:id", h.DeleteChatMessage)
		admin.DELETE("/chat", h.ClearChat)
		admin.GET("/roster", h.Roster)
		admin.GET("/vapid-public-key", h.GetVAPIDPublicKey)
		admin.PUT("/push-subscriptions", h.PutPushSubscription)
		admin.DELETE("/push-subscriptions", h.DeletePushSubscription)
	}

	return r
}
