package product

import (
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

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return &Service{DB: db}
}

func TestCreateProductSetsStockFlag(t *testing.T) {
	svc := newService(t)

	inStock := models.Product{Name: "lamp", CurrentPrice: 10, Quantity: 3}
	require.NoError(t, svc.CreateProduct(&inStock))
	require.True(t, inStock.InStock)

	outOfStock := models.Product{Name: "desk", CurrentPrice: 100, Quantity: 0}
	require.NoError(t, svc.CreateProduct(&outOfStock))
	require.False(t, outOfStock.InStock)
}

func TestUpdateProductRotatesPrice(t *testing.T) {
	svc := newService(t)

	prod := models.Product{Name: "lamp", CurrentPrice: 10, Quantity: 3}
	require.NoError(t, svc.CreateProduct(&prod))

	updated, err := svc.UpdateProduct(prod.ID, &models.Product{CurrentPrice: 8, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 8.0, updated.CurrentPrice)
	require.Equal(t, 10.0, updated.PreviousPrice)
}

func TestDeleteProductMissing(t *testing.T) {
	svc := newService(t)
	err := svc.DeleteProduct(42)
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}

func TestGetProductsPagination(t *testing.T) {
	svc := newService(t)
	for i := 0; i < 25; i++ {
		require.NoError(t, svc.CreateProduct(&models.Product{
			Name:         fmt.Sprintf("product-%d", i),
			CurrentPrice: float64(i + 1),
			Quantity:     1,
		}))
	}

	items, meta, err := svc.GetProducts(2, 10)
	require.NoError(t, err)
	require.Len(t, items, 10)
	require.Equal(t, 2, meta.Page)
	require.Equal(t, int64(25), meta.Total)
	require.Equal(t, int64(3), meta.TotalPages)
	require.True(t, meta.HasPrev)
	require.True(t, meta.HasNext)

	last, meta, err := svc.GetProducts(3, 10)
	require.NoError(t, err)
	require.Len(t, last, 5)
	require.False(t, meta.HasNext)
}

func TestFilterByPriceRange(t *testing.T) {
	svc := newService(t)
	for _, price := range []float64{5, 15, 25, 35} {
		require.NoError(t, svc.CreateProduct(&models.Product{
			Name:         fmt.Sprintf("p-%v", price),
			CurrentPrice: price,
			Quantity:     1,
		}))
	}

	items, err := svc.FilterByPriceRange(10, 30, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		require.GreaterOrEqual(t, it.CurrentPrice, 10.0)
		require.LessOrEqual(t, it.CurrentPrice, 30.0)
	}
}

func TestTakeStockAndRestock(t *testing.T) {
	svc := newService(t)
	prod := models.Product{Name: "lamp", CurrentPrice: 10, Quantity: 3}
	require.NoError(t, svc.CreateProduct(&prod))

	taken, err := svc.TakeStock(prod.ID, 3)
	require.NoError(t, err)
	require.Equal(t, uint(0), taken.Quantity)
	require.False(t, taken.InStock)

	_, err = svc.TakeStock(prod.ID, 1)
	require.True(t, httperr.IsStatus(err, http.StatusConflict))

	require.NoError(t, svc.Restock(prod.ID, 2))
	stored, err := svc.GetProductByID(prod.ID)
	require.NoError(t, err)
	require.Equal(t, uint(2), stored.Quantity)
	require.True(t, stored.InStock)
}
