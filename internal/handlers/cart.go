package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/logging"
	"github.com/globalmarket/backend/internal/mykafka"
	"github.com/globalmarket/backend/internal/service/cart"
	"github.com/globalmarket/backend/internal/service/order"
	"github.com/globalmarket/backend/internal/service/payment"
)

type CartHandler struct {
	DB       *gorm.DB
	Carts    *cart.Service
	Producer *mykafka.Producer
}

func NewCartHandler(db *gorm.DB, carts *cart.Service, p *mykafka.Producer) *CartHandler {
	return &CartHandler{DB: db, Carts: carts, Producer: p}
}

func (h *CartHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("publish event", "topic", topic, "error", err)
	}
}

func pathID(c echo.Context, name string) (uint, error) {
	raw, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(raw), nil
}

func (h *CartHandler) CreateCart(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	created, err := h.Carts.CreateCart(user)
	if err != nil {
		return err
	}
	h.publish(c, mykafka.TopicCartEvents, "cart_created", map[string]any{
		"cart_id": created.ID,
		"user_id": user.ID,
	})
	return c.JSON(http.StatusCreated, created)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	userCart, err := h.Carts.GetUserCart(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userCart)
}

func (h *CartHandler) GetCartsCount(c echo.Context) error {
	total, err := h.Carts.GetTotalCarts()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}

type addProductRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

func (h *CartHandler) AddProduct(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	userCart, err := h.Carts.GetUserCart(user)
	if err != nil {
		return err
	}
	var req addProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	line, err := h.Carts.AddProduct(userCart.ID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	h.publish(c, mykafka.TopicCartEvents, "product_added", map[string]any{
		"cart_id":    userCart.ID,
		"product_id": req.ProductID,
		"quantity":   line.Quantity,
	})
	return c.JSON(http.StatusCreated, line)
}

func (h *CartHandler) UpdateProductQuantity(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	userCart, err := h.Carts.GetUserCart(user)
	if err != nil {
		return err
	}
	cartProductID, err := pathID(c, "cartProductId")
	if err != nil {
		return err
	}
	newQuantity, err := strconv.ParseUint(c.QueryParam("newQuantity"), 10, 32)
	if err != nil || newQuantity == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid newQuantity")
	}
	updated, err := h.Carts.UpdateCartProductQuantity(userCart.ID, cartProductID, uint(newQuantity))
	if err != nil {
		return err
	}
	h.publish(c, mykafka.TopicCartEvents, "quantity_updated", map[string]any{
		"cart_id":         userCart.ID,
		"cart_product_id": cartProductID,
		"quantity":        newQuantity,
	})
	return c.JSON(http.StatusOK, updated)
}

func (h *CartHandler) RemoveProduct(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	userCart, err := h.Carts.GetUserCart(user)
	if err != nil {
		return err
	}
	cartProductID, err := pathID(c, "cartProductId")
	if err != nil {
		return err
	}
	updated, err := h.Carts.RemoveCartProduct(userCart.ID, cartProductID)
	if err != nil {
		return err
	}
	h.publish(c, mykafka.TopicCartEvents, "product_removed", map[string]any{
		"cart_id":         userCart.ID,
		"cart_product_id": cartProductID,
	})
	return c.JSON(http.StatusOK, updated)
}

type removeBatchRequest struct {
	CartProducts []cart.RemoveItem `json:"cart_products"`
}

func (h *CartHandler) RemoveProducts(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	userCart, err := h.Carts.GetUserCart(user)
	if err != nil {
		return err
	}
	var req removeBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := h.Carts.RemoveProductsFromCart(userCart.ID, req.CartProducts, true)
	if err != nil {
		return err
	}
	h.publish(c, mykafka.TopicCartEvents, "products_removed", map[string]any{
		"cart_id": userCart.ID,
		"count":   len(req.CartProducts),
	})
	return c.JSON(http.StatusOK, updated)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	userCart, err := h.Carts.GetUserCart(user)
	if err != nil {
		return err
	}
	cleared, err := h.Carts.ClearCart(userCart, true)
	if err != nil {
		return err
	}
	h.publish(c, mykafka.TopicCartEvents, "cart_cleared", map[string]any{"cart_id": userCart.ID})
	return c.JSON(http.StatusOK, cleared)
}

type checkoutRequest struct {
	Address string `json:"address"`
	Comment string `json:"comment"`
	Method  string `json:"method"`
}

func (h *CartHandler) Checkout(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := h.Carts.CheckoutOnCart(user,
		order.Info{Address: req.Address, Comment: req.Comment},
		payment.Info{Method: req.Method})
	if err != nil {
		return err
	}
	h.publish(c, mykafka.TopicOrderEvents, "order_placed", map[string]any{
		"order_id": result.Order.ID,
		"user_id":  user.ID,
		"total":    result.Order.Total,
	})
	return c.JSON(http.StatusCreated, result)
}

func (h *CartHandler) CheckoutSingleProduct(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	cartProductID, err := pathID(c, "cartProductId")
	if err != nil {
		return err
	}
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := h.Carts.CheckoutOnSingleProduct(user, cartProductID,
		order.Info{Address: req.Address, Comment: req.Comment},
		payment.Info{Method: req.Method})
	if err != nil {
		return err
	}
	h.publish(c, mykafka.TopicOrderEvents, "order_placed", map[string]any{
		"order_id": result.Order.ID,
		"user_id":  user.ID,
		"total":    result.Order.Total,
	})
	return c.JSON(http.StatusCreated, result)
}
