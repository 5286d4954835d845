package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"welcomewindow/backend/internal/approval"
	"welcomewindow/backend/internal/chathub"
	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/localization"
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/mw"
	"welcomewindow/backend/internal/session"
	"welcomewindow/backend/internal/storage"
	"welcomewindow/backend/internal/trivia"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var dbCounter atomic.Int64

type testEnv struct {
	cfg     *config.Config
	store   *storage.Service
	hub     *chathub.Hub
	handler *Handler
	router  *gin.Engine
}

func newTestEnv(t *testing.T, mutate func(cfg *config.Config)) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DSN = fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	cfg.Database.MaxOpenConns = 1
	cfg.Auth.AdminPassword = "s3cret"
	cfg.Trivia.BaseURL = "http://127.0.0.1:1/api.php"
	cfg.Trivia.TimeoutSeconds = 1
	if mutate != nil {
		mutate(cfg)
	}

	db, err := storage.OpenDatabase(&cfg.Database)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	store := storage.NewStorageService(db, nil)

	loc, err := localization.NewLocalizer()
	require.NoError(t, err)
	creds, err := session.NewCredentials(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, "")
	require.NoError(t, err)

	notifier := chathub.NewNotifier(nil)
	gate := approval.NewService(store, notifier, nil)
	registry := chathub.NewRegistry(store, notifier, cfg.Features.LogVisits)
	relay := chathub.NewRelay(store, notifier, cfg.Features.MaxMessageLength, cfg.Site.HostName)
	hub := chathub.NewHub(notifier, registry, relay, chathub.HubOptions{
		Games:           store,
		Access:          gate,
		Translator:      loc,
		RequireApproval: cfg.Features.RequireApproval,
		HistoryLimit:    cfg.Features.ChatHistoryLimit,
		HostName:        cfg.Site.HostName,
	})
	t.Cleanup(func() { hub.CloseAll(context.Background()) })

	h := NewHandler(Deps{
		Config:      cfg,
		Store:       store,
		Hub:         hub,
		Gate:        gate,
		Sessions:    session.NewManager(cfg.Auth.SessionSecret, time.Hour, false),
		Credentials: creds,
		Trivia:      trivia.NewClient(cfg.Trivia),
		Localizer:   loc,
		StatusCache: mw.NewResponseCache(time.Minute),
	})
	return &testEnv{cfg: cfg, store: store, hub: hub, handler: h, router: NewRouter(h)}
}

// browser keeps the session cookie between requests.
type browser struct {
	env     *testEnv
	cookies []*http.Cookie
	lang    string
}

func (e *testEnv) browser() *browser { return &browser{env: e} }

func (b *browser) do(method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	switch v := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case url.Values:
		req = httptest.NewRequest(method, path, strings.NewReader(v.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		raw, _ := json.Marshal(v)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	if b.lang != "" {
		req.Header.Set("Accept-Language", b.lang)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.env.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == config.SessionCookieName {
			b.cookies = []*http.Cookie{c}
			if c.MaxAge < 0 {
				b.cookies = nil
			}
		}
	}
	return w
}

func (b *browser) cookieHeader() http.Header {
	hdr := http.Header{}
	for _, c := range b.cookies {
		hdr.Add("Cookie", c.Name+"="+c.Value)
	}
	return hdr
}

func (e *testEnv) host(t *testing.T) *browser {
	t.Helper()
	b := e.browser()
	w := b.do(http.MethodPost, "/api/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return b
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStatus_CachedUntilHostUpdates(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := env.browser()

	w := visitor.do(http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "away", decode[map[string]any](t, w)["status"])
	assert.Equal(t, "HIT", visitor.do(http.MethodGet, "/api/status", nil).Header().Get("X-Cache"))

	host := env.host(t)
	w = host.do(http.MethodPost, "/api/admin/status", gin.H{"status": "available", "message": " Come in! "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Come in!", decode[map[string]any](t, w)["message"])

	w = visitor.do(http.MethodGet, "/api/status", nil)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, "available", decode[map[string]any](t, w)["status"])

	w = host.do(http.MethodPost, "/api/admin/status", gin.H{"status": "sleeping"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_RequiresLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser()

	assert.Equal(t, http.StatusUnauthorized, b.do(http.MethodGet, "/api/admin/dashboard", nil).Code)

	w := b.do(http.MethodPost, "/api/admin/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password.", decode[map[string]string](t, w)["error"])

	host := env.host(t)
	assert.Equal(t, http.StatusOK, host.do(http.MethodGet, "/api/admin/dashboard", nil).Code)
	host.do(http.MethodPost, "/api/admin/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, host.do(http.MethodGet, "/api/admin/dashboard", nil).Code)
}

func TestEnterRoom_OnlyWhileAvailable(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.Features.RequireApproval = false })
	visitor := env.browser()

	w := visitor.do(http.MethodPost, "/api/room/enter", gin.H{"name": "Ada"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusForbidden, visitor.do(http.MethodGet, "/api/games/sudoku", nil).Code)

	env.host(t).do(http.MethodPost, "/api/admin/status", gin.H{"status": "available"})

	w = visitor.do(http.MethodPost, "/api/room/enter", gin.H{"name": "  Ada "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Ada", body["visitor_name"])
	assert.Equal(t, true, body["approved"])

	w = visitor.do(http.MethodGet, "/api/games/sudoku?difficulty=easy&seed=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "easy", decode[map[string]any](t, w)["difficulty"])

	w = visitor.do(http.MethodGet, "/api/games/wordsearch?theme=space&size=10&seed=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ws := decode[map[string]any](t, w)
	assert.Equal(t, "space", ws["theme"])
	assert.EqualValues(t, 10, ws["size"])

	w = visitor.do(http.MethodGet, "/api/games/trivia?amount=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"questions":[]}`, w.Body.String())
}

func TestEnterVideoRoom(t *testing.T) {
	env := newTestEnv(t, nil)
	env.handler.now = func() time.Time { return time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC) }
	visitor := env.browser()

	assert.Equal(t, http.StatusConflict, visitor.do(http.MethodPost, "/api/room/video", gin.H{"name": "Ada"}).Code)

	host := env.host(t)
	host.do(http.MethodPost, "/api/admin/status", gin.H{"status": "available"})

	w := visitor.do(http.MethodPost, "/api/room/video", gin.H{"name": "Ada"})
	assert.Equal(t, http.StatusForbidden, w.Code, "the room name is not handed out before approval")
	assert.NotContains(t, w.Body.String(), "WelcomeWindow")

	res := decode[approval.Result](t, visitor.do(http.MethodPost, "/api/access/request", gin.H{"name": "Ada", "email": "ada@example.com"}))
	require.Equal(t, http.StatusOK, host.do(http.MethodPost, fmt.Sprintf("/api/admin/visitors/%d/approve", res.VisitorID), nil).Code)

	w = visitor.do(http.MethodPost, "/api/room/video", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"visitor_name":"Ada","jitsi_room":"DianeWelcomeWindow-20260131"}`, w.Body.String())
}

func TestVideoRoomName(t *testing.T) {
	day := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "DianeWelcomeWindow-20261016", VideoRoomName("Diane", day))
	assert.Equal(t, "MaryAnnWelcomeWindow-20261016", VideoRoomName(" Mary Ann ", day))
}

func TestAccess_RequestApproveAndPlay(t *testing.T) {
	env := newTestEnv(t, nil)
	host := env.host(t)
	visitor := env.browser()

	w := visitor.do(http.MethodPost, "/api/access/request", gin.H{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[approval.Result](t, w)
	require.NotZero(t, res.VisitorID)

	w = visitor.do(http.MethodPost, "/api/access/request", gin.H{"name": "Ada L", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, res.Token, decode[approval.Result](t, w).Token)

	assert.JSONEq(t, `{"approved":false,"rejected":false}`, visitor.do(http.MethodGet, "/api/access/check", nil).Body.String())
	assert.Equal(t, http.StatusForbidden, visitor.do(http.MethodGet, "/api/games/sudoku", nil).Code)

	pending := decode[[]models.PendingVisitor](t, host.do(http.MethodGet, "/api/admin/visitors/pending", nil))
	require.Len(t, pending, 1)
	assert.Equal(t, "Ada L", pending[0].Name)

	path := fmt.Sprintf("/api/admin/visitors/%d/approve", res.VisitorID)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"changed":true}`, res.VisitorID), host.do(http.MethodPost, path, nil).Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"changed":false}`, res.VisitorID), host.do(http.MethodPost, path, nil).Body.String())

	reject := fmt.Sprintf("/api/admin/visitors/%d/reject", res.VisitorID)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"changed":false}`, res.VisitorID), host.do(http.MethodPost, reject, nil).Body.String())

	assert.JSONEq(t, `{"approved":true,"rejected":false}`, visitor.do(http.MethodGet, "/api/access/check", nil).Body.String())
	assert.Equal(t, http.StatusOK, visitor.do(http.MethodGet, "/api/games/sudoku", nil).Code)

	assert.Equal(t, http.StatusNotFound, host.do(http.MethodPost, "/api/admin/visitors/999/approve", nil).Code)
	assert.Equal(t, http.StatusBadRequest, host.do(http.MethodPost, "/api/admin/visitors/abc/approve", nil).Code)
}

func TestAccess_ValidationIsLocalized(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := env.browser()

	w := visitor.do(http.MethodPost, "/api/access/request", gin.H{"name": "", "email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please tell us your name.", decode[map[string]string](t, w)["error"])

	visitor.lang = "uk-UA,uk;q=0.9"
	w = visitor.do(http.MethodPost, "/api/access/request", gin.H{"name": "Ada", "email": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Будь ласка, залиште адресу електронної пошти.", decode[map[string]string](t, w)["error"])
}

func TestGuestbook_AndDashboard(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.Features.MaxMessageLength = 10 })
	visitor := env.browser()

	assert.Equal(t, http.StatusBadRequest, visitor.do(http.MethodPost, "/api/guestbook", gin.H{"message": "   "}).Code)
	w := visitor.do(http.MethodPost, "/api/guestbook", gin.H{"message": "this is far too long"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Messages can be at most 10 characters.", decode[map[string]string](t, w)["error"])

	w = visitor.do(http.MethodPost, "/api/guestbook", gin.H{"message": "hi Diane"})
	require.Equal(t, http.StatusCreated, w.Code)
	entry := decode[models.GuestbookEntry](t, w)
	assert.Equal(t, "Anonymous", entry.VisitorName)

	host := env.host(t)
	dash := decode[map[string]any](t, host.do(http.MethodGet, "/api/admin/dashboard", nil))
	assert.EqualValues(t, 1, dash["unread_count"])
	assert.EqualValues(t, 0, dash["active_visitors"])
	assert.Len(t, dash["guestbook"], 1)

	assert.Equal(t, http.StatusOK, host.do(http.MethodPost, fmt.Sprintf("/api/admin/guestbook/%d/read", entry.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, host.do(http.MethodPost, "/api/admin/guestbook/999/read", nil).Code)

	dash = decode[map[string]any](t, host.do(http.MethodGet, "/api/admin/dashboard", nil))
	assert.EqualValues(t, 0, dash["unread_count"])
}

func TestChatModeration(t *testing.T) {
	env := newTestEnv(t, nil)
	host := env.host(t)

	msg := models.ChatMessage{Sender: models.SenderVisitor, SenderName: "Ada", Message: "hello"}
	require.NoError(t, env.store.SaveChatMessage(t.Context(), &msg))

	assert.Equal(t, http.StatusNotFound, host.do(http.MethodDelete, "/api/admin/chat/999", nil).Code)
	assert.Equal(t, http.StatusNoContent, host.do(http.MethodDelete, fmt.Sprintf("/api/admin/chat/%d", msg.ID), nil).Code)

	require.NoError(t, env.store.SaveChatMessage(t.Context(), &models.ChatMessage{Sender: models.SenderAdmin, SenderName: "Diane", Message: "bye"}))
	assert.JSONEq(t, `{"removed":1}`, host.do(http.MethodDelete, "/api/admin/chat", nil).Body.String())
	assert.JSONEq(t, `[]`, host.do(http.MethodGet, "/api/admin/roster", nil).Body.String())
}

func TestPushSubscriptions(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.Alerts.VAPIDPublicKey = "pub-key" })
	host := env.host(t)

	assert.JSONEq(t, `{"public_key":"pub-key"}`, host.do(http.MethodGet, "/api/admin/vapid-public-key", nil).Body.String())
	assert.Equal(t, http.StatusBadRequest, host.do(http.MethodPut, "/api/admin/push-subscriptions", gin.H{"endpoint": "x"}).Code)

	sub := gin.H{"endpoint": "https://push.example/1", "p256dh": "k", "auth": "a"}
	assert.Equal(t, http.StatusCreated, host.do(http.MethodPut, "/api/admin/push-subscriptions", sub).Code)
	subs, err := env.store.ListPushSubscriptions(t.Context())
	require.NoError(t, err)
	require.Len(t, subs, 1)

	assert.Equal(t, http.StatusNoContent, host.do(http.MethodDelete, "/api/admin/push-subscriptions", gin.H{"endpoint": "https://push.example/1"}).Code)
	subs, err = env.store.ListPushSubscriptions(t.Context())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestQRCode(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.Server.PublicURL = "https://window.example/" })
	w := env.browser().do(http.MethodGet, "/api/qr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	loc, err := localization.NewLocalizer()
	require.NoError(t, err)
	h := NewHandler(Deps{
		Config:    env.cfg,
		Store:     env.store,
		Hub:       env.hub,
		Sessions:  session.NewManager("x", time.Hour, false),
		Localizer: loc,
		Limiter:   mw.NewIPRateLimiter(rate.Limit(0.001), 1),
	})
	r := NewRouter(h)

	codes := []int{}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

type wsEvent struct {
	Type string          `json:"type"`
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data"`
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) wsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var ev wsEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Type == typ {
			return ev
		}
	}
}

func TestWebSocket_VisitorChats(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.Features.RequireApproval = false })
	env.host(t).do(http.MethodPost, "/api/admin/status", gin.H{"status": "available"})
	visitor := env.browser()
	require.Equal(t, http.StatusOK, visitor.do(http.MethodPost, "/api/room/enter", gin.H{"name": "Ada"}).Code)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, visitor.cookieHeader())
	require.NoError(t, err)
	defer conn.Close()

	hello := readUntil(t, conn, "connection_established")
	assert.Contains(t, string(hello.Data), `"visitor_name":"Ada"`)

	require.NoError(t, conn.WriteJSON(gin.H{"type": "send_message", "data": gin.H{"message": " hi there "}}))
	ev := readUntil(t, conn, "new_message")
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(ev.Data, &msg))
	assert.Equal(t, "hi there", msg.Message)
	assert.Equal(t, "Ada", msg.SenderName)
	assert.Greater(t, ev.Seq, hello.Seq)

	require.NoError(t, conn.WriteJSON(gin.H{"type": "join_admin"}))
	errEv := readUntil(t, conn, "error")
	assert.Contains(t, string(errEv.Data), "Only the host can do that.")

	assert.Equal(t, 1, env.hub.Registry.Count())
}
