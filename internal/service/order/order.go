package order

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
	"github.com/globalmarket/backend/internal/service/product"
)

type Info struct {
	Address string `json:"address"`
	Comment string `json:"comment"`
}

type Service struct {
	DB       *gorm.DB
	Products *product.Service
}

func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{DB: tx, Products: s.Products.WithTx(tx)}
}

func (s *Service) CreateOrder(user *models.User, info Info) (*models.Order, error) {
	order := models.Order{
		UserID:    user.ID,
		Address:   info.Address,
		Comment:   info.Comment,
		Status:    "new",
		CreatedAt: time.Now().Unix(),
	}
	if err := s.DB.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrderItem copies the line item's data into an order item snapshot,
// adds it to the order total and counts the sale on the product.
func (s *Service) CreateOrderItem(order *models.Order, cp models.CartProduct) (*models.OrderItem, error) {
	prod, err := s.Products.GetProductByID(cp.ProductID)
	if err != nil {
		return nil, err
	}

	item := models.OrderItem{
		OrderID:    order.ID,
		UserID:     order.UserID,
		ProductID:  cp.ProductID,
		Name:       prod.Name,
		UnitPrice:  prod.CurrentPrice,
		Quantity:   cp.Quantity,
		TotalPrice: cp.TotalPrice,
	}
	if err := s.DB.Create(&item).Error; err != nil {
		return nil, err
	}

	order.Total += item.TotalPrice
	if err := s.DB.Save(order).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Model(&models.Product{}).
		Where("id = ?", prod.ID).
		Update("sales", gorm.Expr("sales + ?", cp.Quantity)).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *Service) GetUserOrders(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Where("user_id = ?", userID).Order("id DESC").Find(&orders).Error
	return orders, err
}

func (s *Service) GetOrderByID(userID, id uint) (*models.Order, []models.OrderItem, error) {
	var ord models.Order
	if err := s.DB.Where("id = ? AND user_id = ?", id, userID).First(&ord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, httperr.NotFound("Order", id)
		}
		return nil, nil, err
	}

	var items []models.OrderItem
	if err := s.DB.Where("order_id = ?", ord.ID).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &ord, items, nil
}
