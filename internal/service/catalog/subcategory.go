package catalog

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
)

type SubCategoryService struct {
	DB *gorm.DB
}

func (s *SubCategoryService) GetSubCategoryByID(id uint) (*models.SubCategory, error) {
	var sub models.SubCategory
	if err := s.DB.Preload("Products").Preload("Tags").First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("SubCategory", id)
		}
		return nil, err
	}
	return &sub, nil
}

func (s *SubCategoryService) UpdateSubCategory(id uint, info SubCategoryInfo) (*models.SubCategory, error) {
	sub, err := s.GetSubCategoryByID(id)
	if err != nil {
		return nil, err
	}

	if info.Name != "" {
		sub.Name = info.Name
	}
	if info.Description != "" {
		sub.Description = info.Description
	}
	if info.Icon != "" {
		sub.Icon = info.Icon
	}
	if info.References != nil {
		sub.References = info.References
	}
	sub.UpdatedAt = time.Now().UTC()

	if err := s.DB.Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubCategoryService) SearchByName(name string, take int) ([]models.SubCategory, error) {
	q := s.DB.Preload("Products").
		Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	if take > 0 {
		q = q.Limit(take)
	}
	var subs []models.SubCategory
	err := q.Find(&subs).Error
	return subs, err
}

// DeleteSubCategory drops the sub-category's tags, detaches its products
// and deletes the row.
func (s *SubCategoryService) DeleteSubCategory(id uint) error {
	if _, err := s.GetSubCategoryByID(id); err != nil {
		return err
	}

	if err := s.DB.Where("sub_category_id = ?", id).
		Delete(&models.SubCategoryTag{}).Error; err != nil {
		return err
	}

	if err := s.DB.Model(&models.Product{}).
		Where("sub_category_id = ?", id).
		Update("sub_category_id", nil).Error; err != nil {
		return err
	}

	res := s.DB.Delete(&models.SubCategory{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.NotFound("SubCategory", id)
	}
	return nil
}

func (s *SubCategoryService) GetTotalSubCategories() (int64, error) {
	var total int64
	err := s.DB.Model(&models.SubCategory{}).Count(&total).Error
	return total, err
}
