package product

import (
	"errors"

	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
	"github.com/globalmarket/backend/internal/util"
)

type Service struct {
	DB *gorm.DB
}

// WithTx returns a service bound to the given transaction handle, so cart
// checkout can run collaborator calls inside one unit of work.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{DB: tx}
}

func (s *Service) GetProductByID(id uint) (*models.Product, error) {
	var prod models.Product
	if err := s.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Product", id)
		}
		return nil, err
	}
	return &prod, nil
}

func (s *Service) CreateProduct(prod *models.Product) error {
	prod.InStock = prod.Quantity > 0
	return s.DB.Create(prod).Error
}

func (s *Service) UpdateProduct(id uint, upd *models.Product) (*models.Product, error) {
	prod, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if upd.Name != "" {
		prod.Name = upd.Name
	}
	if upd.Description != "" {
		prod.Description = upd.Description
	}
	if upd.CurrentPrice > 0 && upd.CurrentPrice != prod.CurrentPrice {
		prod.PreviousPrice = prod.CurrentPrice
		prod.CurrentPrice = upd.CurrentPrice
	}
	prod.Quantity = upd.Quantity
	prod.InStock = prod.Quantity > 0
	if upd.SubCategoryID != nil {
		prod.SubCategoryID = upd.SubCategoryID
	}

	if err := s.DB.Save(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (s *Service) DeleteProduct(id uint) error {
	res := s.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.NotFound("Product", id)
	}
	return nil
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func (s *Service) GetProducts(page, size int) ([]models.Product, *PageMeta, error) {
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := s.DB.Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var items []models.Product
	if err := s.DB.Model(&models.Product{}).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if page < 1 {
		page = 1
	}
	meta := &PageMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
	return items, meta, nil
}

func (s *Service) GetLatestProducts(take int) ([]models.Product, error) {
	if take <= 0 {
		take = 10
	}
	var items []models.Product
	err := s.DB.Order("created_at DESC").Limit(take).Find(&items).Error
	return items, err
}

func (s *Service) GetMostSalesProducts(take int) ([]models.Product, error) {
	if take <= 0 {
		take = 10
	}
	var items []models.Product
	err := s.DB.Order("sales DESC").Limit(take).Find(&items).Error
	return items, err
}

func (s *Service) FilterByPriceRange(low, high float64, skip, take int) ([]models.Product, error) {
	q := s.DB.Where("current_price >= ? AND current_price <= ?", low, high)
	if take > 0 {
		q = q.Limit(take)
	}
	if skip > 0 {
		q = q.Offset(skip)
	}
	var items []models.Product
	err := q.Find(&items).Error
	return items, err
}

func (s *Service) FilterByStockExistence(limit int, inStock bool) ([]models.Product, error) {
	q := s.DB.Where("in_stock = ?", inStock)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []models.Product
	err := q.Find(&items).Error
	return items, err
}

func (s *Service) GetTotalProducts() (int64, error) {
	var total int64
	err := s.DB.Model(&models.Product{}).Count(&total).Error
	return total, err
}

// Restock returns a removed line item's quantity to the product's
// available stock.
func (s *Service) Restock(productID uint, quantity uint) error {
	prod, err := s.GetProductByID(productID)
	if err != nil {
		return err
	}
	prod.Quantity += quantity
	prod.InStock = prod.Quantity > 0
	return s.DB.Save(prod).Error
}

// TakeStock reserves quantity units of a product for a cart line item.
func (s *Service) TakeStock(productID uint, quantity uint) (*models.Product, error) {
	prod, err := s.GetProductByID(productID)
	if err != nil {
		return nil, err
	}
	if prod.Quantity < quantity {
		return nil, httperr.Conflict("product %d has only %d units in stock", productID, prod.Quantity)
	}
	prod.Quantity -= quantity
	prod.InStock = prod.Quantity > 0
	if err := s.DB.Save(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}
