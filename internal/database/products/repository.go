// Package products provides database operations for the product catalog.
package products

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tiendatech/storefront/internal/entities"
)

// Repository handles all product database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new products repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns a page of products plus the total count.
func (r *Repository) List(limit, offset int) ([]entities.Product, int64, error) {
	var products []entities.Product
	var total int64

	if err := r.db.Model(&entities.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 9
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&products).Error
	return products, total, err
}

// GetByID retrieves a product, or nil if it does not exist.
func (r *Repository) GetByID(id uint) (*entities.Product, error) {
	var product entities.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product.
func (r *Repository) Create(product *entities.Product) (*entities.Product, error) {
	if err := r.db.Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves changed fields on an existing product and returns the fresh
// record, or nil if it does not exist.
func (r *Repository) Update(id uint, updates map[string]any) (*entities.Product, error) {
	result := r.db.Model(&entities.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

// Delete soft-deletes a product. Reports whether a record was deleted.
func (r *Repository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&entities.Product{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
