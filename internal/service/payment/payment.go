package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/models"
)

type Info struct {
	Method string `json:"method"`
}

type Result struct {
	Payment    *models.Payment `json:"payment"`
	Invoice    *models.Invoice `json:"invoice"`
	CustomerID string          `json:"customer_id"`
}

type Service struct {
	DB *gorm.DB
}

func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{DB: tx}
}

// CreatePayment charges the order total and issues the matching invoice.
func (s *Service) CreatePayment(user *models.User, info Info, order *models.Order) (*Result, error) {
	customerID := uuid.NewString()

	pay := models.Payment{
		UserID:     user.ID,
		OrderID:    order.ID,
		Amount:     order.Total,
		Method:     info.Method,
		Status:     "succeeded",
		CustomerID: customerID,
	}
	if err := s.DB.Create(&pay).Error; err != nil {
		return nil, err
	}

	inv := models.Invoice{
		UserID:   user.ID,
		OrderID:  order.ID,
		Number:   uuid.NewString(),
		Total:    order.Total,
		IssuedAt: time.Now().UTC(),
	}
	if err := s.DB.Create(&inv).Error; err != nil {
		return nil, err
	}

	return &Result{Payment: &pay, Invoice: &inv, CustomerID: customerID}, nil
}

func (s *Service) GetUserPayments(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.Where("user_id = ?", userID).Find(&payments).Error
	return payments, err
}

func (s *Service) GetUserInvoices(userID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.DB.Where("user_id = ?", userID).Find(&invoices).Error
	return invoices, err
}
