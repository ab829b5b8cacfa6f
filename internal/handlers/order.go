package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalmarket/backend/internal/service/order"
	"github.com/globalmarket/backend/internal/service/payment"
)

type OrderHandler struct {
	Orders   *order.Service
	Payments *payment.Service
}

func NewOrderHandler(orders *order.Service, payments *payment.Service) *OrderHandler {
	return &OrderHandler{Orders: orders, Payments: payments}
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	orders, err := h.Orders.GetUserOrders(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ord, items, err := h.Orders.GetOrderByID(userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"order": ord, "items": items})
}

func (h *OrderHandler) GetMyPayments(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	payments, err := h.Payments.GetUserPayments(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *OrderHandler) GetMyInvoices(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	invoices, err := h.Payments.GetUserInvoices(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoices)
}
