package catalog

import (
	"context"

	"github.com/gmihail/shop/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the products table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns gorm.ErrRecordNotFound when the product does not exist.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var row models.Product
	if err := r.db.WithContext(ctx).
		Select(productColumns).
		Where("id = ?", id).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDs loads every existing product among ids in a single query.
func (r *Repository) FindByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	var rows []models.Product
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).
		Select(productColumns).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns up to limit products with id greater than afterID, by id.
func (r *Repository) List(ctx context.Context, afterID int64, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Select(productColumns).Order("id ASC").Limit(limit)
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
