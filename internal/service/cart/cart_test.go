package cart

import (
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/config"
	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
	"github.com/globalmarket/backend/internal/service/order"
	"github.com/globalmarket/backend/internal/service/payment"
	"github.com/globalmarket/backend/internal/service/product"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	products := &product.Service{DB: db}
	orders := &order.Service{DB: db, Products: products}
	payments := &payment.Service{DB: db}
	return &Service{DB: db, Orders: orders, Payments: payments, Products: products}, db
}

func seedUserWithCart(t *testing.T, svc *Service, db *gorm.DB) (*models.User, *models.Cart) {
	t.Helper()
	user := models.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "x", Salt: "s", Roles: []string{models.RoleUser}}
	require.NoError(t, db.Create(&user).Error)
	cart, err := svc.CreateCart(&user)
	require.NoError(t, err)
	return &user, cart
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, quantity uint) *models.Product {
	t.Helper()
	prod := models.Product{Name: name, CurrentPrice: price, Quantity: quantity, InStock: quantity > 0}
	require.NoError(t, db.Create(&prod).Error)
	return &prod
}

func TestCreateCartTwiceConflicts(t *testing.T) {
	svc, db := newService(t)
	user, cart := seedUserWithCart(t, svc, db)

	require.NotNil(t, user.CartID)
	require.Equal(t, cart.ID, *user.CartID)

	_, err := svc.CreateCart(user)
	require.True(t, httperr.IsStatus(err, http.StatusConflict))
}

func TestAddProductReservesStock(t *testing.T) {
	svc, db := newService(t)
	_, cart := seedUserWithCart(t, svc, db)
	prod := seedProduct(t, db, "lamp", 10, 5)

	line, err := svc.AddProduct(cart.ID, prod.ID, 2)
	require.NoError(t, err)
	require.Equal(t, uint(2), line.Quantity)
	require.Equal(t, 20.0, line.TotalPrice)

	var stored models.Product
	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Equal(t, uint(3), stored.Quantity)

	fresh, err := svc.GetCart(cart.ID)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.TotalItems)
}

func TestAddProductBumpsExistingLine(t *testing.T) {
	svc, db := newService(t)
	_, cart := seedUserWithCart(t, svc, db)
	prod := seedProduct(t, db, "lamp", 10, 10)

	_, err := svc.AddProduct(cart.ID, prod.ID, 2)
	require.NoError(t, err)
	line, err := svc.AddProduct(cart.ID, prod.ID, 3)
	require.NoError(t, err)

	require.Equal(t, uint(5), line.Quantity)
	require.Equal(t, 50.0, line.TotalPrice)

	fresh, err := svc.GetCart(cart.ID)
	require.NoError(t, err)
	require.Len(t, fresh.CartProducts, 1)
	require.Equal(t, 1, fresh.TotalItems)
}

func TestAddProductInsufficientStock(t *testing.T) {
	svc, db := newService(t)
	_, cart := seedUserWithCart(t, svc, db)
	prod := seedProduct(t, db, "lamp", 10, 1)

	_, err := svc.AddProduct(cart.ID, prod.ID, 2)
	require.True(t, httperr.IsStatus(err, http.StatusConflict))

	var stored models.Product
	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Equal(t, uint(1), stored.Quantity)
}

func TestUpdateCartProductQuantity(t *testing.T) {
	svc, db := newService(t)
	_, cart := seedUserWithCart(t, svc, db)
	prod := seedProduct(t, db, "lamp", 10, 10)

	line, err := svc.AddProduct(cart.ID, prod.ID, 2)
	require.NoError(t, err)

	updated, err := svc.UpdateCartProductQuantity(cart.ID, line.ID, 3)
	require.NoError(t, err)
	require.Len(t, updated.CartProducts, 1)
	require.Equal(t, uint(3), updated.CartProducts[0].Quantity)
	require.Equal(t, 30.0, updated.CartProducts[0].TotalPrice)
}

func TestUpdateCartProductQuantityMissingLine(t *testing.T) {
	svc, db := newService(t)
	_, cart := seedUserWithCart(t, svc, db)

	_, err := svc.UpdateCartProductQuantity(cart.ID, 99, 3)
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}

func TestRemoveCartProduct(t *testing.T) {
	svc, db := newService(t)
	_, cart := seedUserWithCart(t, svc, db)
	prod := seedProduct(t, db, "lamp", 10, 5)

	line, err := svc.AddProduct(cart.ID, prod.ID, 2)
	require.NoError(t, err)

	updated, err := svc.RemoveCartProduct(cart.ID, line.ID)
	require.NoError(t, err)
	require.Empty(t, updated.CartProducts)
	require.Equal(t, 0, updated.TotalItems)

	// single removal never restocks
	var stored models.Product
	require.NoError(t, db.First(&stored, prod.ID).Error)
	require.Equal(t, uint(3), stored.Quantity)

	_, err = svc.RemoveCartProduct(cart.ID, line.ID)
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}

func TestRemoveProductsFromCartRestocks(t *testing.T) {
	svc, db := newService(t)
	_, cart := seedUserWithCart(t, svc, db)
	lamp := seedProduct(t, db, "lamp", 10, 5)
	desk := seedProduct(t, db, "desk", 100, 5)

	lampLine, err := svc.AddProduct(cart.ID, lamp.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(cart.ID, desk.ID, 1)
	require.NoError(t, err)

	updated, err := svc.RemoveProductsFromCart(cart.ID, []RemoveItem{
		{CartProductID: lampLine.ID, ProductID: lamp.ID},
		{CartProductID: 999, ProductID: 999},
	}, true)
	require.NoError(t, err)
	require.Len(t, updated.CartProducts, 1)
	require.Equal(t, 1, updated.TotalItems)

	var stored models.Product
	require.NoError(t, db.First(&stored, lamp.ID).Error)
	require.Equal(t, uint(5), stored.Quantity)
	require.True(t, stored.InStock)
}

func TestClearCart(t *testing.T) {
	svc, db := newService(t)
	_, cart := seedUserWithCart(t, svc, db)
	lamp := seedProduct(t, db, "lamp", 10, 5)
	desk := seedProduct(t, db, "desk", 100, 5)

	_, err := svc.AddProduct(cart.ID, lamp.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(cart.ID, desk.ID, 3)
	require.NoError(t, err)

	cleared, err := svc.ClearCartByID(cart.ID, true)
	require.NoError(t, err)
	require.Zero(t, cleared.TotalItems)

	var count int64
	require.NoError(t, db.Model(&models.CartProduct{}).Where("cart_id = ?", cart.ID).Count(&count).Error)
	require.Zero(t, count)

	var stored models.Product
	require.NoError(t, db.First(&stored, lamp.ID).Error)
	require.Equal(t, uint(5), stored.Quantity)
}

func TestCheckoutOnCart(t *testing.T) {
	svc, db := newService(t)
	user, cart := seedUserWithCart(t, svc, db)
	lamp := seedProduct(t, db, "lamp", 10, 5)
	desk := seedProduct(t, db, "desk", 100, 5)

	_, err := svc.AddProduct(cart.ID, lamp.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(cart.ID, desk.ID, 1)
	require.NoError(t, err)

	result, err := svc.CheckoutOnCart(user, order.Info{Address: "Main St 1"}, payment.Info{Method: "card"})
	require.NoError(t, err)
	require.Equal(t, 120.0, result.Order.Total)
	require.Equal(t, "new", result.Order.Status)
	require.Equal(t, 120.0, result.Payment.Amount)
	require.Equal(t, "succeeded", result.Payment.Status)
	require.NotEmpty(t, result.Invoice.Number)
	require.NotEmpty(t, result.CustomerID)
	require.Zero(t, result.Cart.TotalItems)

	var items []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", result.Order.ID).Find(&items).Error)
	require.Len(t, items, 2)

	// order items snapshot name and unit price at checkout time
	byProduct := map[uint]models.OrderItem{}
	for _, it := range items {
		byProduct[it.ProductID] = it
	}
	require.Equal(t, "lamp", byProduct[lamp.ID].Name)
	require.Equal(t, 10.0, byProduct[lamp.ID].UnitPrice)
	require.Equal(t, uint(2), byProduct[lamp.ID].Quantity)

	var storedLamp models.Product
	require.NoError(t, db.First(&storedLamp, lamp.ID).Error)
	require.Equal(t, uint(2), storedLamp.Sales)
	require.Equal(t, uint(3), storedLamp.Quantity)
}

func TestCheckoutOnEmptyCart(t *testing.T) {
	svc, db := newService(t)
	user, _ := seedUserWithCart(t, svc, db)

	_, err := svc.CheckoutOnCart(user, order.Info{}, payment.Info{})
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
	var payments int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
	require.Zero(t, payments)
}

func TestCheckoutOnSingleProduct(t *testing.T) {
	svc, db := newService(t)
	user, cart := seedUserWithCart(t, svc, db)
	lamp := seedProduct(t, db, "lamp", 10, 5)
	desk := seedProduct(t, db, "desk", 100, 5)

	lampLine, err := svc.AddProduct(cart.ID, lamp.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(cart.ID, desk.ID, 1)
	require.NoError(t, err)

	result, err := svc.CheckoutOnSingleProduct(user, lampLine.ID, order.Info{Address: "Main St 1"}, payment.Info{Method: "card"})
	require.NoError(t, err)
	require.Equal(t, 20.0, result.Order.Total)
	require.Len(t, result.Cart.CartProducts, 1)
	require.Equal(t, desk.ID, result.Cart.CartProducts[0].ProductID)

	var items []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", result.Order.ID).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, lamp.ID, items[0].ProductID)
}

func TestCheckoutOnSingleProductMissingLine(t *testing.T) {
	svc, db := newService(t)
	user, _ := seedUserWithCart(t, svc, db)

	_, err := svc.CheckoutOnSingleProduct(user, 42, order.Info{}, payment.Info{})
	require.True(t, httperr.IsStatus(err, http.StatusNotFound))
}
