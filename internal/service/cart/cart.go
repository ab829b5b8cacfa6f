package cart

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
	"github.com/globalmarket/backend/internal/service/order"
	"github.com/globalmarket/backend/internal/service/payment"
	"github.com/globalmarket/backend/internal/service/product"
)

// RemoveItem names one line item of a batch removal request.
type RemoveItem struct {
	CartProductID uint `json:"cart_product_id"`
	ProductID     uint `json:"product_id"`
}

type CheckoutResult struct {
	Order      *models.Order   `json:"order"`
	Invoice    *models.Invoice `json:"invoice"`
	Payment    *models.Payment `json:"payment"`
	Cart       *models.Cart    `json:"cart"`
	CustomerID string          `json:"customer_id"`
}

type Service struct {
	DB       *gorm.DB
	Orders   *order.Service
	Payments *payment.Service
	Products *product.Service
}

func (s *Service) withTx(tx *gorm.DB) *Service {
	return &Service{
		DB:       tx,
		Orders:   s.Orders.WithTx(tx),
		Payments: s.Payments.WithTx(tx),
		Products: s.Products.WithTx(tx),
	}
}

func (s *Service) CreateCart(user *models.User) (*models.Cart, error) {
	if user.CartID != nil {
		return nil, httperr.Conflict("user %d already has cart %d", user.ID, *user.CartID)
	}

	cart := models.Cart{
		UserID:       user.ID,
		TotalItems:   0,
		CartProducts: []models.CartProduct{},
	}
	if err := s.DB.Create(&cart).Error; err != nil {
		return nil, err
	}

	user.CartID = &cart.ID
	if err := s.DB.Save(user).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *Service) GetCart(id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := s.DB.Preload("CartProducts").First(&cart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Cart", id)
		}
		return nil, err
	}
	return &cart, nil
}

func (s *Service) GetUserCart(user *models.User) (*models.Cart, error) {
	if user.CartID == nil {
		return nil, httperr.NotFound("Cart for user", user.ID)
	}
	return s.GetCart(*user.CartID)
}

func (s *Service) GetTotalCarts() (int64, error) {
	var total int64
	err := s.DB.Model(&models.Cart{}).Count(&total).Error
	return total, err
}

// AddProduct reserves stock for the requested quantity and either bumps an
// existing line item for the same product or creates a new one.
func (s *Service) AddProduct(cartID, productID uint, quantity uint) (*models.CartProduct, error) {
	if quantity < 1 {
		quantity = 1
	}

	cart, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}

	prod, err := s.Products.TakeStock(productID, quantity)
	if err != nil {
		return nil, err
	}

	for i := range cart.CartProducts {
		cp := &cart.CartProducts[i]
		if cp.ProductID == productID {
			cp.Quantity += quantity
			cp.TotalPrice = prod.CurrentPrice * float64(cp.Quantity)
			if err := s.DB.Save(cp).Error; err != nil {
				return nil, err
			}
			return cp, s.syncTotalItems(cart)
		}
	}

	cp := models.CartProduct{
		CartID:     cart.ID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalPrice: prod.CurrentPrice * float64(quantity),
	}
	if err := s.DB.Create(&cp).Error; err != nil {
		return nil, err
	}
	cart.CartProducts = append(cart.CartProducts, cp)
	return &cp, s.syncTotalItems(cart)
}

// UpdateCartProductQuantity re-fetches the product's current price, so the
// line total always reflects the price at the moment of the update.
func (s *Service) UpdateCartProductQuantity(cartID, cartProductID uint, newQuantity uint) (*models.Cart, error) {
	cart, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}

	for i := range cart.CartProducts {
		cp := &cart.CartProducts[i]
		if cp.ID != cartProductID {
			continue
		}
		prod, err := s.Products.GetProductByID(cp.ProductID)
		if err != nil {
			return nil, err
		}
		cp.Quantity = newQuantity
		cp.TotalPrice = prod.CurrentPrice * float64(newQuantity)
		if err := s.DB.Save(cp).Error; err != nil {
			return nil, err
		}
		if err := s.DB.Save(cart).Error; err != nil {
			return nil, err
		}
		return cart, nil
	}
	return nil, httperr.NotFound("Cart Product", cartProductID)
}

// RemoveCartProduct deletes one line item without restocking.
func (s *Service) RemoveCartProduct(cartID, cartProductID uint) (*models.Cart, error) {
	cart, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}

	for i := range cart.CartProducts {
		if cart.CartProducts[i].ID != cartProductID {
			continue
		}
		if err := s.DB.Delete(&models.CartProduct{}, cartProductID).Error; err != nil {
			return nil, err
		}
		cart.CartProducts = append(cart.CartProducts[:i], cart.CartProducts[i+1:]...)
		cart.TotalItems--
		if err := s.DB.Save(cart).Error; err != nil {
			return nil, err
		}
		return cart, nil
	}
	return nil, httperr.NotFound("Cart Product", cartProductID)
}

// RemoveProductsFromCart is the batch removal; items not present in the
// cart are skipped. With restock=true every removed quantity goes back to
// the product's stock first.
func (s *Service) RemoveProductsFromCart(cartID uint, items []RemoveItem, restock bool) (*models.Cart, error) {
	cart, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}

	for _, rm := range items {
		idx := -1
		for i := range cart.CartProducts {
			if cart.CartProducts[i].ID == rm.CartProductID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		cp := cart.CartProducts[idx]
		if restock {
			if err := s.Products.Restock(cp.ProductID, cp.Quantity); err != nil {
				return nil, err
			}
		}
		if err := s.DB.Delete(&models.CartProduct{}, cp.ID).Error; err != nil {
			return nil, err
		}
		cart.CartProducts = append(cart.CartProducts[:idx], cart.CartProducts[idx+1:]...)
		cart.TotalItems--
	}

	if err := s.DB.Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) ClearCartByID(id uint, restock bool) (*models.Cart, error) {
	cart, err := s.GetCart(id)
	if err != nil {
		return nil, err
	}
	return s.ClearCart(cart, restock)
}

func (s *Service) ClearCart(cart *models.Cart, restock bool) (*models.Cart, error) {
	for _, cp := range cart.CartProducts {
		if restock {
			if err := s.Products.Restock(cp.ProductID, cp.Quantity); err != nil {
				return nil, err
			}
		}
		if err := s.DB.Delete(&models.CartProduct{}, cp.ID).Error; err != nil {
			return nil, err
		}
	}
	cart.CartProducts = []models.CartProduct{}
	cart.TotalItems = 0
	if err := s.DB.Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// CheckoutOnCart turns every line item of the user's cart into an order
// item, clears the cart without restocking and charges the order.
func (s *Service) CheckoutOnCart(user *models.User, orderInfo order.Info, payInfo payment.Info) (*CheckoutResult, error) {
	cart, err := s.GetUserCart(user)
	if err != nil {
		return nil, err
	}
	if len(cart.CartProducts) == 0 {
		return nil, echo.NewHTTPError(http.StatusNotFound, "no products in cart to checkout")
	}

	var result CheckoutResult
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		st := s.withTx(tx)

		ord, err := st.Orders.CreateOrder(user, orderInfo)
		if err != nil {
			return err
		}
		for _, cp := range cart.CartProducts {
			if _, err := st.Orders.CreateOrderItem(ord, cp); err != nil {
				return err
			}
		}

		cleared, err := st.ClearCart(cart, false)
		if err != nil {
			return err
		}

		pay, err := st.Payments.CreatePayment(user, payInfo, ord)
		if err != nil {
			return err
		}

		result = CheckoutResult{
			Order:      ord,
			Invoice:    pay.Invoice,
			Payment:    pay.Payment,
			Cart:       cleared,
			CustomerID: pay.CustomerID,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &result, nil
}

// CheckoutOnSingleProduct checks out exactly one line item of the user's
// cart; the rest of the cart stays untouched.
func (s *Service) CheckoutOnSingleProduct(user *models.User, cartProductID uint, orderInfo order.Info, payInfo payment.Info) (*CheckoutResult, error) {
	cart, err := s.GetUserCart(user)
	if err != nil {
		return nil, err
	}

	var target *models.CartProduct
	for i := range cart.CartProducts {
		if cart.CartProducts[i].ID == cartProductID {
			target = &cart.CartProducts[i]
			break
		}
	}
	if target == nil {
		return nil, httperr.NotFound("Cart Product", cartProductID)
	}

	var result CheckoutResult
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		st := s.withTx(tx)

		ord, err := st.Orders.CreateOrder(user, orderInfo)
		if err != nil {
			return err
		}
		if _, err := st.Orders.CreateOrderItem(ord, *target); err != nil {
			return err
		}

		trimmed, err := st.RemoveProductsFromCart(cart.ID,
			[]RemoveItem{{CartProductID: target.ID, ProductID: target.ProductID}}, false)
		if err != nil {
			return err
		}

		pay, err := st.Payments.CreatePayment(user, payInfo, ord)
		if err != nil {
			return err
		}

		result = CheckoutResult{
			Order:      ord,
			Invoice:    pay.Invoice,
			Payment:    pay.Payment,
			Cart:       trimmed,
			CustomerID: pay.CustomerID,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &result, nil
}

func (s *Service) syncTotalItems(cart *models.Cart) error {
	cart.TotalItems = len(cart.CartProducts)
	return s.DB.Save(cart).Error
}
