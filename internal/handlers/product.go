package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/globalmarket/backend/internal/logging"
	"github.com/globalmarket/backend/internal/models"
	"github.com/globalmarket/backend/internal/mykafka"
	"github.com/globalmarket/backend/internal/service/product"
)

type ProductHandler struct {
	Products *product.Service
	Producer *mykafka.Producer
}

func NewProductHandler(products *product.Service, p *mykafka.Producer) *ProductHandler {
	return &ProductHandler{Products: products, Producer: p}
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), mykafka.TopicProductEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("publish product event", "error", err)
	}
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	prod, err := h.Products.GetProductByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 0)
	items, meta, err := h.Products.GetProducts(page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "meta": meta})
}

func (h *ProductHandler) GetLatest(c echo.Context) error {
	items, err := h.Products.GetLatestProducts(queryInt(c, "take", 10))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetMostSales(c echo.Context) error {
	items, err := h.Products.GetMostSalesProducts(queryInt(c, "take", 10))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) FilterByPrice(c echo.Context) error {
	low, err := strconv.ParseFloat(c.QueryParam("low"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid low bound")
	}
	high, err := strconv.ParseFloat(c.QueryParam("high"), 64)
	if err != nil || high < low {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid high bound")
	}
	items, err := h.Products.FilterByPriceRange(low, high, queryInt(c, "skip", 0), queryInt(c, "take", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) FilterByStock(c echo.Context) error {
	inStock := c.QueryParam("in_stock") != "false"
	items, err := h.Products.FilterByStockExistence(queryInt(c, "take", 0), inStock)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetProductsCount(c echo.Context) error {
	total, err := h.Products.GetTotalProducts()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var prod models.Product
	if err := c.Bind(&prod); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if prod.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product name is required")
	}
	if err := h.Products.CreateProduct(&prod); err != nil {
		return err
	}
	h.publish(c, "product_created", map[string]any{"product_id": prod.ID, "name": prod.Name})
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var upd models.Product
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	prod, err := h.Products.UpdateProduct(id, &upd)
	if err != nil {
		return err
	}
	h.publish(c, "product_updated", map[string]any{"product_id": prod.ID})
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.DeleteProduct(id); err != nil {
		return err
	}
	h.publish(c, "product_deleted", map[string]any{"product_id": id})
	return c.NoContent(http.StatusNoContent)
}
