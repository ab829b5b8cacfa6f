package catalog

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
)

type CategoryInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type SubCategoryInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	References  []int  `json:"references"`
}

type CategoryService struct {
	DB            *gorm.DB
	SubCategories *SubCategoryService
}

func (s *CategoryService) GetAllCategories() ([]models.Category, error) {
	var categories []models.Category
	err := s.DB.Preload("SubCategories").Find(&categories).Error
	return categories, err
}

func (s *CategoryService) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := s.DB.Preload("SubCategories").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Category", id)
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) NewCategory(info CategoryInfo) (*models.Category, error) {
	category := models.Category{
		Name:          info.Name,
		Description:   info.Description,
		Icon:          info.Icon,
		CreatedAt:     time.Now().UTC(),
		SubCategories: []models.SubCategory{},
	}
	if err := s.DB.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) UpdateCategory(id uint, info CategoryInfo) (*models.Category, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}

	if info.Name != "" {
		category.Name = info.Name
	}
	if info.Description != "" {
		category.Description = info.Description
	}
	if info.Icon != "" {
		category.Icon = info.Icon
	}
	category.UpdatedAt = time.Now().UTC()

	if err := s.DB.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) AddSubCategory(categoryID uint, info SubCategoryInfo) (*models.SubCategory, error) {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}

	references := info.References
	if references == nil {
		references = []int{}
	}
	sub := models.SubCategory{
		Name:        info.Name,
		Description: info.Description,
		Icon:        info.Icon,
		References:  references,
		CategoryID:  category.ID,
		CreatedAt:   time.Now().UTC(),
		Products:    []models.Product{},
		Tags:        []models.SubCategoryTag{},
	}
	if err := s.DB.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteCategory removes the category's sub-categories first, then the
// category itself. A concurrent delete can still win the race, which shows
// up as zero affected rows.
func (s *CategoryService) DeleteCategory(id uint) error {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return err
	}

	for _, sub := range category.SubCategories {
		if err := s.SubCategories.DeleteSubCategory(sub.ID); err != nil {
			return err
		}
	}

	res := s.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.NotFound("Category", id)
	}
	return nil
}

// SearchByName is a case-insensitive substring match, capped by take when
// take is positive.
func (s *CategoryService) SearchByName(name string, take int) ([]models.Category, error) {
	q := s.DB.Preload("SubCategories.Products").Preload("SubCategories").
		Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	if take > 0 {
		q = q.Limit(take)
	}
	var categories []models.Category
	err := q.Find(&categories).Error
	return categories, err
}

func (s *CategoryService) GetMatchingNames(name string) ([]string, error) {
	var names []string
	err := s.DB.Model(&models.Category{}).
		Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%").
		Pluck("name", &names).Error
	return names, err
}

func (s *CategoryService) GetTotalCategories() (int64, error) {
	var total int64
	err := s.DB.Model(&models.Category{}).Count(&total).Error
	return total, err
}
