package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"welcomewindow/backend/internal/approval"
	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type enterRoomRequest struct {
	Name string `json:"name"`
}

// EnterRoom stores the visitor's display name in the session. The room is
// only open while the host is available.
func (h *Handler) EnterRoom(c *gin.Context) {
	name, approved, ok := h.admit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"visitor_name":      name,
		"requires_approval": h.Config.Features.RequireApproval,
		"approved":          approved,
	})
}

// EnterVideoRoom is EnterRoom for the video call. The Jitsi room name changes
// daily and is only handed to admitted visitors.
func (h *Handler) EnterVideoRoom(c *gin.Context) {
	name, approved, ok := h.admit(c)
	if !ok {
		return
	}
	if !approved {
		h.fail(c, http.StatusForbidden, "error.approval_required")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"visitor_name": name,
		"jitsi_room":   VideoRoomName(h.Config.Site.HostName, h.now()),
	})
}

// VideoRoomName returns the Jitsi room for the given day, e.g.
// "DianeWelcomeWindow-20260131".
func VideoRoomName(hostName string, day time.Time) string {
	host := strings.Join(strings.Fields(hostName), "")
	return host + "WelcomeWindow-" + day.Format("20060102")
}

// admit runs the checks shared by the chat and video rooms and saves the
// session. It writes the error response itself when ok is false.
func (h *Handler) admit(c *gin.Context) (name string, approved bool, ok bool) {
	var req enterRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, http.StatusBadRequest, "error.invalid_payload")
		return "", false, false
	}

	ctx := c.Request.Context()
	status, err := h.Store.CurrentStatus(ctx)
	if err != nil {
		h.internalError(c, "current status", err)
		return "", false, false
	}
	if status.Status != models.StatusAvailable {
		h.fail(c, http.StatusConflict, "error.not_available")
		return "", false, false
	}

	sess := session.FromContext(c)
	name = strings.TrimSpace(req.Name)
	if name == "" {
		name = sess.VisitorName
	}
	if name == "" {
		if h.Config.Features.RequireNames {
			h.fail(c, http.StatusBadRequest, "validation.name_required")
			return "", false, false
		}
		name = config.AnonymousVisitorName
	}

	sess.VisitorName = name
	sess.Lang = h.lang(c)
	if !h.Config.Features.RequireApproval && sess.VisitorID == "" {
		sess.VisitorID = uuid.NewString()
	}

	approved = !h.Config.Features.RequireApproval
	if !approved && sess.AccessToken != "" {
		approved, err = h.Gate.IsApproved(ctx, sess.AccessToken)
		if err != nil {
			h.internalError(c, "approval check", err)
			return "", false, false
		}
	}

	if err := h.Sessions.Save(c, sess); err != nil {
		h.internalError(c, "save session", err)
		return "", false, false
	}
	return name, approved, true
}

type accessRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RequestAccess asks the host to let the visitor in.
func (h *Handler) RequestAccess(c *gin.Context) {
	var req accessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "error.invalid_payload")
		return
	}

	sess := session.FromContext(c)
	res, err := h.Gate.RequestAccess(c.Request.Context(), req.Name, req.Email, sess.AccessToken)
	if err != nil {
		var verr *approval.ValidationError
		if errors.As(err, &verr) {
			h.fail(c, http.StatusBadRequest, "validation."+verr.Field+"_required")
			return
		}
		h.internalError(c, "request access", err)
		return
	}

	sess.AccessToken = res.Token
	sess.VisitorID = strconv.FormatUint(uint64(res.VisitorID), 10)
	sess.VisitorName = strings.TrimSpace(req.Name)
	sess.Lang = h.lang(c)
	if err := h.Sessions.Save(c, sess); err != nil {
		h.internalError(c, "save session", err)
		return
	}

	status := http.StatusCreated
	if res.AlreadyPending {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// CheckAccess reports the host's decision on the session's access token. A
// token may also be passed as a query parameter.
func (h *Handler) CheckAccess(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = session.FromContext(c).AccessToken
	}
	d, err := h.Gate.CheckApproval(c.Request.Context(), token)
	if err != nil {
		h.internalError(c, "check approval", err)
		return
	}
	c.JSON(http.StatusOK, d)
}
