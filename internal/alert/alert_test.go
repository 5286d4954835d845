package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"welcomewindow/backend/internal/models"

	"github.com/SherClockHolmes/webpush-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

type memSubscriptions struct {
	mu      sync.Mutex
	subs    []models.PushSubscription
	deleted []string
}

func (m *memSubscriptions) ListPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PushSubscription{}, m.subs...), nil
}

func (m *memSubscriptions) DeletePushSubscription(ctx context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, endpoint)
	return nil
}

type recordingChannel struct {
	mu     sync.Mutex
	alerts []Alert
	done   chan struct{}
}

func (r *recordingChannel) Name() string { return "recording" }

func (r *recordingChannel) Notify(ctx context.Context, a Alert) error {
	r.mu.Lock()
	r.alerts = append(r.alerts, a)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func response(code int) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(bytes.NewBuffer(nil))}
}

func TestWorkerPool_DispatchIsNonBlocking(t *testing.T) {
	wp := NewWorkerPool(1, 1, "Test", &recordingChannel{done: make(chan struct{}, 1)})

	wp.Dispatch(models.PendingVisitor{ID: 1})
	done := make(chan struct{})
	go func() {
		wp.Dispatch(models.PendingVisitor{ID: 2})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
	assert.Len(t, wp.jobs, 1)
}

func TestWorkerPool_SendsToEveryChannel(t *testing.T) {
	rec := &recordingChannel{done: make(chan struct{}, 1)}
	wp := NewWorkerPool(2, 4, "Diane's Welcome Window", rec)
	assert.Equal(t, []string{"recording"}, wp.Channels())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch(models.PendingVisitor{ID: 7, Name: "Ada", Email: "ada@example.com"})

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for alert")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.alerts, 1)
	assert.Equal(t, uint(7), rec.alerts[0].VisitorID)
	assert.Contains(t, rec.alerts[0].Body, "Ada (ada@example.com)")
	assert.True(t, strings.HasPrefix(rec.alerts[0].Title, "Diane's Welcome Window"))
}

func TestWebPushChannel_PrunesExpiredSubscriptions(t *testing.T) {
	store := &memSubscriptions{subs: []models.PushSubscription{
		{Endpoint: "https://push.example/ok", P256DH: "k1", Auth: "a1"},
		{Endpoint: "https://push.example/gone", P256DH: "k2", Auth: "a2"},
	}}

	var payloads [][]byte
	sender := &mockSender{SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		payloads = append(payloads, payload)
		if strings.HasSuffix(sub.Endpoint, "gone") {
			return response(http.StatusGone), nil
		}
		return response(http.StatusCreated), nil
	}}

	ch := NewWebPushChannel(store, &webpush.Options{}).WithSender(sender)
	require.NoError(t, ch.Notify(context.Background(), Alert{VisitorID: 3, Title: "t", Body: "b"}))

	assert.Equal(t, []string{"https://push.example/gone"}, store.deleted)
	require.Len(t, payloads, 2)
	var decoded Alert
	require.NoError(t, json.Unmarshal(payloads[0], &decoded))
	assert.Equal(t, uint(3), decoded.VisitorID)
}

func TestWebPushChannel_SendErrorIsSkipped(t *testing.T) {
	store := &memSubscriptions{subs: []models.PushSubscription{{Endpoint: "https://push.example/x"}}}
	sender := &mockSender{SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		return nil, errors.New("network down")
	}}

	ch := NewWebPushChannel(store, &webpush.Options{}).WithSender(sender)
	assert.NoError(t, ch.Notify(context.Background(), Alert{}))
	assert.Empty(t, store.deleted)
}

func TestTelegramChannel_Notify(t *testing.T) {
	bot := &fakeBot{}
	ch := NewTelegramChannelWithBot(bot, 42)

	require.NoError(t, ch.Notify(context.Background(), Alert{VisitorID: 5, Title: "Door", Body: "Ada_B is here"}))
	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, `Ada\_B`)

	bot.err = errors.New("forbidden")
	assert.Error(t, ch.Notify(context.Background(), Alert{}))
}
