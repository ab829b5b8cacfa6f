package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/logging"
	"github.com/globalmarket/backend/internal/models"
)

type PushSender interface {
	Send(sub models.Subscriber, payload []byte) error
}

type Mailer interface {
	Send(to, subject, htmlBody, plainText string) error
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type Subscription struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *int64           `json:"expiration_time,omitempty"`
	Keys           SubscriptionKeys `json:"keys"`
}

type Payload struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Icon      string   `json:"icon"`
	Vibrate   []int    `json:"vibrate"`
	Actions   []Action `json:"actions"`
	ArrivedAt string   `json:"arrived_at"`
	RefID     string   `json:"ref_id"`
}

type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

type Service struct {
	DB     *gorm.DB
	Push   PushSender
	Mailer Mailer
	Icon   string
}

func (s *Service) GetAllSubscribers() ([]models.Subscriber, error) {
	var subscribers []models.Subscriber
	err := s.DB.Find(&subscribers).Error
	return subscribers, err
}

func (s *Service) GetAllNotifications() ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.Order("id DESC").Find(&notifications).Error
	return notifications, err
}

func (s *Service) GetSubscriberByID(id uint) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := s.DB.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Subscriber", id)
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Service) NewSubscriber(email string, sub Subscription) (*models.Subscriber, error) {
	var existing models.Subscriber
	err := s.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, httperr.Conflict("you already have subscribed to our newsletter with %s", email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	subscriber := models.Subscriber{
		Email:          email,
		Endpoint:       sub.Endpoint,
		ExpirationTime: sub.ExpirationTime,
		P256dh:         sub.Keys.P256dh,
		Auth:           sub.Keys.Auth,
	}
	if err := s.DB.Create(&subscriber).Error; err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// SendNewNotification broadcasts to every subscriber: one join row per
// subscriber for history, then a push and an email. Delivery failures are
// logged and do not stop the fan-out.
func (s *Service) SendNewNotification(ctx context.Context, title, htmlBody, plainText string) (*models.Notification, error) {
	subscribers, err := s.GetAllSubscribers()
	if err != nil {
		return nil, err
	}

	notification := models.Notification{
		Title:     title,
		Body:      plainText,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		return nil, err
	}

	payload := Payload{
		Title:     title,
		Body:      plainText,
		Icon:      s.Icon,
		Vibrate:   []int{100, 50, 100},
		Actions:   []Action{{Action: "explore", Title: title}},
		ArrivedAt: notification.CreatedAt.Format(time.RFC3339),
		RefID:     uuid.NewString(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	for _, subscriber := range subscribers {
		join := models.SubscriberNotification{
			SubscriberID:   subscriber.ID,
			NotificationID: notification.ID,
			Title:          title,
			Body:           plainText,
		}
		if err := s.DB.Create(&join).Error; err != nil {
			return nil, err
		}

		if err := s.Push.Send(subscriber, data); err != nil {
			log.Error("push delivery failed", "subscriber_id", subscriber.ID, "error", err)
		}
		if err := s.Mailer.Send(subscriber.Email, title, htmlBody, plainText); err != nil {
			log.Error("email delivery failed", "subscriber_id", subscriber.ID, "error", err)
		}
	}

	return &notification, nil
}

func (s *Service) DeleteSubscriber(id uint) error {
	subscriber, err := s.GetSubscriberByID(id)
	if err != nil {
		return err
	}
	if err := s.DB.Where("subscriber_id = ?", subscriber.ID).
		Delete(&models.SubscriberNotification{}).Error; err != nil {
		return err
	}
	return s.DB.Delete(&models.Subscriber{}, subscriber.ID).Error
}

func (s *Service) GetSubscriberNotifications(subscriberID uint) ([]models.SubscriberNotification, error) {
	var rows []models.SubscriberNotification
	err := s.DB.Where("subscriber_id = ?", subscriberID).Find(&rows).Error
	return rows, err
}
