package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/config"
	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
)

type fakePush struct {
	sent     []uint
	payloads [][]byte
	failFor  map[uint]bool
}

func (p *fakePush) Send(sub models.Subscriber, payload []byte) error {
	if p.failFor[sub.ID] {
		return errors.New("endpoint gone")
	}
	p.sent = append(p.sent, sub.ID)
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) Send(to, subject, htmlBody, plainText string) error {
	m.sent = append(m.sent, to)
	return nil
}

func newService(t *testing.T) (*Service, *fakePush, *fakeMailer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	push := &fakePush{failFor: map[uint]bool{}}
	mailer := &fakeMailer{}
	svc := &Service{DB: db, Push: push, Mailer: mailer, Icon: "https://shop.example.com/icon.png"}
	return svc, push, mailer, db
}

func subscribe(t *testing.T, svc *Service, email string) *models.Subscriber {
	t.Helper()
	sub, err := svc.NewSubscriber(email, Subscription{
		Endpoint: "https://push.example.com/" + email,
		Keys:     SubscriptionKeys{P256dh: "p256dh-key", Auth: "auth-key"},
	})
	require.NoError(t, err)
	return sub
}

func TestNewSubscriberRejectsDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newService(t)
	subscribe(t, svc, "alice@example.com")

	_, err := svc.NewSubscriber("alice@example.com", Subscription{Endpoint: "https://push.example.com/other"})
	require.True(t, httperr.IsStatus(err, http.StatusConflict))
}

func TestSendNewNotificationFansOut(t *testing.T) {
	svc, push, mailer, db := newService(t)
	for i := 0; i < 3; i++ {
		subscribe(t, svc, fmt.Sprintf("user%d@example.com", i))
	}

	created, err := svc.SendNewNotification(context.Background(), "Summer Sale", "<h1>Sale</h1>", "Sale")
	require.NoError(t, err)
	require.Equal(t, "Summer Sale", created.Title)
	require.Equal(t, "Sale", created.Body)

	var joins []models.SubscriberNotification
	require.NoError(t, db.Where("notification_id = ?", created.ID).Find(&joins).Error)
	require.Len(t, joins, 3)

	require.Len(t, push.sent, 3)
	require.Len(t, mailer.sent, 3)

	var payload Payload
	require.NoError(t, json.Unmarshal(push.payloads[0], &payload))
	require.Equal(t, "Summer Sale", payload.Title)
	require.Equal(t, []int{100, 50, 100}, payload.Vibrate)
	require.NotEmpty(t, payload.RefID)
}

func TestSendNewNotificationSurvivesDeliveryFailure(t *testing.T) {
	svc, push, mailer, db := newService(t)
	broken := subscribe(t, svc, "broken@example.com")
	subscribe(t, svc, "fine@example.com")
	push.failFor[broken.ID] = true

	created, err := svc.SendNewNotification(context.Background(), "Hello", "<p>hi</p>", "hi")
	require.NoError(t, err)

	// the join row is written even when the push bounces
	var joins int64
	require.NoError(t, db.Model(&models.SubscriberNotification{}).
		Where("notification_id = ?", created.ID).Count(&joins).Error)
	require.Equal(t, int64(2), joins)

	require.Len(t, push.sent, 1)
	require.Len(t, mailer.sent, 2)
}

func TestDeleteSubscriberDropsHistory(t *testing.T) {
	svc, _, _, db := newService(t)
	sub := subscribe(t, svc, "alice@example.com")
	_, err := svc.SendNewNotification(context.Background(), "Hello", "<p>hi</p>", "hi")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubscriber(sub.ID))

	var joins int64
	require.NoError(t, db.Model(&models.SubscriberNotification{}).Count(&joins).Error)
	require.Zero(t, joins)

	err = svc.DeleteSubscriber(sub.ID)
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}

func TestGetSubscriberNotifications(t *testing.T) {
	svc, _, _, _ := newService(t)
	sub := subscribe(t, svc, "alice@example.com")

	_, err := svc.SendNewNotification(context.Background(), "First", "<p>1</p>", "1")
	require.NoError(t, err)
	_, err = svc.SendNewNotification(context.Background(), "Second", "<p>2</p>", "2")
	require.NoError(t, err)

	rows, err := svc.GetSubscriberNotifications(sub.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
