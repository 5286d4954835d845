package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"welcomewindow/backend/internal/models"

	"github.com/SherClockHolmes/webpush-go"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real NotificationSender backed by the webpush library.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore lists and prunes the host's push endpoints.
type SubscriptionStore interface {
	ListPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// WebPushChannel sends alerts to every browser the host subscribed.
type WebPushChannel struct {
	store   SubscriptionStore
	options *webpush.Options
	sender  NotificationSender
}

func NewWebPushChannel(store SubscriptionStore, options *webpush.Options) *WebPushChannel {
	return &WebPushChannel{
		store:   store,
		options: options,
		sender:  &WebPushSender{},
	}
}

// WithSender replaces the transport, for tests.
func (c *WebPushChannel) WithSender(s NotificationSender) *WebPushChannel {
	c.sender = s
	return c
}

func (c *WebPushChannel) Name() string { return "webpush" }

// Notify pushes a to every subscription. Subscriptions reported as gone are
// deleted.
func (c *WebPushChannel) Notify(ctx context.Context, a Alert) error {
	subs, err := c.store.ListPushSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		wpSub := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256DH,
				Auth:   sub.Auth,
			},
		}
		resp, err := c.sender.Send(payload, wpSub, c.options)
		if err != nil {
			log.Printf("ERROR: [Alert] push to %s failed: %v", sub.Endpoint, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
			log.Printf("INFO: [Alert] subscription %s expired, deleting", sub.Endpoint)
			if err := c.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
				log.Printf("ERROR: [Alert] failed to delete subscription %s: %v", sub.Endpoint, err)
			}
		}
	}
	return nil
}
