package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalmarket/backend/internal/logging"
	"github.com/globalmarket/backend/internal/mykafka"
	"github.com/globalmarket/backend/internal/service/notification"
)

type NotificationHandler struct {
	Notifications *notification.Service
	Producer      *mykafka.Producer
}

func NewNotificationHandler(n *notification.Service, p *mykafka.Producer) *NotificationHandler {
	return &NotificationHandler{Notifications: n, Producer: p}
}

type subscribeRequest struct {
	Email        string                    `json:"email"`
	Subscription notification.Subscription `json:"subscription"`
}

func (h *NotificationHandler) Subscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Subscription.Endpoint == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and subscription endpoint are required")
	}
	sub, err := h.Notifications.NewSubscriber(req.Email, req.Subscription)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *NotificationHandler) Unsubscribe(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Notifications.DeleteSubscriber(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) GetSubscribers(c echo.Context) error {
	subs, err := h.Notifications.GetAllSubscribers()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	items, err := h.Notifications.GetAllNotifications()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *NotificationHandler) GetSubscriberNotifications(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.Notifications.GetSubscriberNotifications(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

type broadcastRequest struct {
	Title     string `json:"title"`
	HTMLBody  string `json:"html_body"`
	PlainText string `json:"plain_text"`
}

func (h *NotificationHandler) Broadcast(c echo.Context) error {
	var req broadcastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	ctx := c.Request().Context()
	created, err := h.Notifications.SendNewNotification(ctx, req.Title, req.HTMLBody, req.PlainText)
	if err != nil {
		return err
	}
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicNotificationEvents, "notification_sent", map[string]any{
		"notification_id": created.ID,
		"title":           req.Title,
	}); err != nil {
		logging.FromContext(ctx).Error("publish notification event", "error", err)
	}
	return c.JSON(http.StatusCreated, created)
}
