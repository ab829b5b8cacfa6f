package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalmarket/backend/internal/service/catalog"
)

type CatalogHandler struct {
	Categories    *catalog.CategoryService
	SubCategories *catalog.SubCategoryService
}

func NewCatalogHandler(categories *catalog.CategoryService, subs *catalog.SubCategoryService) *CatalogHandler {
	return &CatalogHandler{Categories: categories, SubCategories: subs}
}

func (h *CatalogHandler) GetCategories(c echo.Context) error {
	items, err := h.Categories.GetAllCategories()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	category, err := h.Categories.GetCategoryByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) SearchCategories(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}
	items, err := h.Categories.SearchByName(name, queryInt(c, "take", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetMatchingNames(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}
	names, err := h.Categories.GetMatchingNames(name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, names)
}

func (h *CatalogHandler) GetCategoriesCount(c echo.Context) error {
	total, err := h.Categories.GetTotalCategories()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var info catalog.CategoryInfo
	if err := c.Bind(&info); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	category, err := h.Categories.NewCategory(info)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var info catalog.CategoryInfo
	if err := c.Bind(&info); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	category, err := h.Categories.UpdateCategory(id, info)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Categories.DeleteCategory(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) AddSubCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var info catalog.SubCategoryInfo
	if err := c.Bind(&info); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sub, err := h.Categories.AddSubCategory(id, info)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *CatalogHandler) GetSubCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	sub, err := h.SubCategories.GetSubCategoryByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *CatalogHandler) SearchSubCategories(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}
	items, err := h.SubCategories.SearchByName(name, queryInt(c, "take", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) UpdateSubCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var info catalog.SubCategoryInfo
	if err := c.Bind(&info); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sub, err := h.SubCategories.UpdateSubCategory(id, info)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *CatalogHandler) DeleteSubCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.SubCategories.DeleteSubCategory(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
