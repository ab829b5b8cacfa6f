package push

import (
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/globalmarket/backend/internal/config"
	"github.com/globalmarket/backend/internal/models"
)

// WebPushSender delivers browser push notifications signed with the
// service's VAPID key pair.
type WebPushSender struct {
	subject    string
	publicKey  string
	privateKey string
}

func NewWebPush(cfg *config.Config) *WebPushSender {
	return &WebPushSender{
		subject:    cfg.VAPID_SUBJECT,
		publicKey:  cfg.VAPID_PUBLIC_KEY,
		privateKey: cfg.VAPID_PRIVATE_KEY,
	}
}

func (s *WebPushSender) Send(sub models.Subscriber, payload []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotification(payload, target, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             30,
	})
	if err != nil {
		return fmt.Errorf("push: send to subscriber %d failed: %w", sub.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push: endpoint answered %d for subscriber %d", resp.StatusCode, sub.ID)
	}
	return nil
}
