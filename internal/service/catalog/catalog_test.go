package catalog

import (
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/config"
	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
)

func newServices(t *testing.T) (*CategoryService, *SubCategoryService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	subs := &SubCategoryService{DB: db}
	return &CategoryService{DB: db, SubCategories: subs}, subs, db
}

func TestNewCategoryAndSubCategory(t *testing.T) {
	categories, _, _ := newServices(t)

	cat, err := categories.NewCategory(CategoryInfo{Name: "Electronics", Icon: "zap"})
	require.NoError(t, err)

	sub, err := categories.AddSubCategory(cat.ID, SubCategoryInfo{Name: "Phones", References: []int{1, 2}})
	require.NoError(t, err)
	require.Equal(t, cat.ID, sub.CategoryID)
	require.Equal(t, []int{1, 2}, sub.References)

	fetched, err := categories.GetCategoryByID(cat.ID)
	require.NoError(t, err)
	require.Len(t, fetched.SubCategories, 1)
}

func TestAddSubCategoryToMissingCategory(t *testing.T) {
	categories, _, _ := newServices(t)
	_, err := categories.AddSubCategory(77, SubCategoryInfo{Name: "Phones"})
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}

func TestUpdateCategoryPartial(t *testing.T) {
	categories, _, _ := newServices(t)
	cat, err := categories.NewCategory(CategoryInfo{Name: "Electronics", Description: "old"})
	require.NoError(t, err)

	updated, err := categories.UpdateCategory(cat.ID, CategoryInfo{Description: "new"})
	require.NoError(t, err)
	require.Equal(t, "Electronics", updated.Name)
	require.Equal(t, "new", updated.Description)
}

func TestDeleteCategoryCascades(t *testing.T) {
	categories, subs, db := newServices(t)
	cat, err := categories.NewCategory(CategoryInfo{Name: "Electronics"})
	require.NoError(t, err)

	phones, err := categories.AddSubCategory(cat.ID, SubCategoryInfo{Name: "Phones"})
	require.NoError(t, err)
	_, err = categories.AddSubCategory(cat.ID, SubCategoryInfo{Name: "Laptops"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.SubCategoryTag{Name: "android", SubCategoryID: phones.ID}).Error)
	prod := models.Product{Name: "pixel", CurrentPrice: 500, Quantity: 1, SubCategoryID: &phones.ID}
	require.NoError(t, db.Create(&prod).Error)

	require.NoError(t, categories.DeleteCategory(cat.ID))

	var subCount int64
	require.NoError(t, db.Model(&models.SubCategory{}).Count(&subCount).Error)
	require.Zero(t, subCount)
	var tagCount int64
	require.NoError(t, db.Model(&models.SubCategoryTag{}).Count(&tagCount).Error)
	require.Zero(t, tagCount)

	// products survive the delete, detached from the sub-category
	var stored models.Product
	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Nil(t, stored.SubCategoryID)

	_, err = subs.GetSubCategoryByID(phones.ID)
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}

func TestDeleteCategoryMissing(t *testing.T) {
	categories, _, _ := newServices(t)
	err := categories.DeleteCategory(5)
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}

func TestSearchByNameCaseInsensitive(t *testing.T) {
	categories, _, _ := newServices(t)
	for _, name := range []string{"Electronics", "Electric Tools", "Furniture"} {
		_, err := categories.NewCategory(CategoryInfo{Name: name})
		require.NoError(t, err)
	}

	found, err := categories.SearchByName("electr", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)

	capped, err := categories.SearchByName("electr", 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)

	names, err := categories.GetMatchingNames("ELECTRONICS")
	require.NoError(t, err)
	require.Equal(t, []string{"Electronics"}, names)
}

func TestUpdateSubCategoryReferences(t *testing.T) {
	categories, subs, _ := newServices(t)
	cat, err := categories.NewCategory(CategoryInfo{Name: "Electronics"})
	require.NoError(t, err)
	sub, err := categories.AddSubCategory(cat.ID, SubCategoryInfo{Name: "Phones", References: []int{1}})
	require.NoError(t, err)

	updated, err := subs.UpdateSubCategory(sub.ID, SubCategoryInfo{References: []int{3, 4}})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, updated.References)
	require.Equal(t, "Phones", updated.Name)
}
