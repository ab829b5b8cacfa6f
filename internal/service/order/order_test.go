package order

import (
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/config"
	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
	"github.com/globalmarket/backend/internal/service/product"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return &Service{DB: db, Products: &product.Service{DB: db}}, db
}

func TestCreateOrderItemSnapshotsProduct(t *testing.T) {
	svc, db := newService(t)
	user := models.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "x", Salt: "s"}
	require.NoError(t, db.Create(&user).Error)
	prod := models.Product{Name: "lamp", CurrentPrice: 10, Quantity: 5, InStock: true}
	require.NoError(t, db.Create(&prod).Error)

	ord, err := svc.CreateOrder(&user, Info{Address: "Main St 1", Comment: "ring twice"})
	require.NoError(t, err)
	require.Equal(t, "new", ord.Status)

	item, err := svc.CreateOrderItem(ord, models.CartProduct{
		CartID: 1, ProductID: prod.ID, Quantity: 2, TotalPrice: 20,
	})
	require.NoError(t, err)
	require.Equal(t, "lamp", item.Name)
	require.Equal(t, 10.0, item.UnitPrice)
	require.Equal(t, 20.0, ord.Total)

	// a later price change must not touch the snapshot
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", prod.ID).Update("current_price", 99).Error)
	var stored models.OrderItem
	require.NoError(t, db.First(&stored, item.ID).Error)
	require.Equal(t, 10.0, stored.UnitPrice)

	var soldProd models.Product
	require.NoError(t, db.First(&soldProd, prod.ID).Error)
	require.Equal(t, uint(2), soldProd.Sales)
}

func TestGetOrderByIDScopedToOwner(t *testing.T) {
	svc, db := newService(t)
	owner := models.User{Username: "owner", Email: "owner@example.com", PasswordHash: "x", Salt: "s"}
	require.NoError(t, db.Create(&owner).Error)

	ord, err := svc.CreateOrder(&owner, Info{Address: "Main St 1"})
	require.NoError(t, err)

	fetched, items, err := svc.GetOrderByID(owner.ID, ord.ID)
	require.NoError(t, err)
	require.Equal(t, ord.ID, fetched.ID)
	require.Empty(t, items)

	// another user cannot read it
	_, _, err = svc.GetOrderByID(owner.ID+1, ord.ID)
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}

func TestGetUserOrdersNewestFirst(t *testing.T) {
	svc, db := newService(t)
	user := models.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "x", Salt: "s"}
	require.NoError(t, db.Create(&user).Error)

	first, err := svc.CreateOrder(&user, Info{})
	require.NoError(t, err)
	second, err := svc.CreateOrder(&user, Info{})
	require.NoError(t, err)

	orders, err := svc.GetUserOrders(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, second.ID, orders[0].ID)
	require.Equal(t, first.ID, orders[1].ID)
}
