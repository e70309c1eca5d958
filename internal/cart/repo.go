package cart

import (
	"context"

	"github.com/gmihail/shop/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByID(ctx context.Context, id int64) (*models.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID string, productID int64, forUpdate bool) (*models.CartItem, error)
	Create(ctx context.Context, row *models.CartItem) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// Repository persists cart items with gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID returns gorm.ErrRecordNotFound when the item does not exist.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.CartItem, error) {
	var row models.CartItem
	if err := r.db.WithContext(ctx).
		Select(cartItemColumns).
		Where("id = ?", id).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByUserAndProduct returns the oldest item for the pair. forUpdate locks
// the row until the surrounding transaction ends.
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID string, productID int64, forUpdate bool) (*models.CartItem, error) {
	query := r.db.WithContext(ctx).
		Select(cartItemColumns).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Order("created_at ASC, id ASC")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row models.CartItem
	if err := query.Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.CartItem) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// Delete removes the item. A missing row is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{}).Error
}

// ListByUser returns the user's items, most recent first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var rows []models.CartItem
	if err := r.db.WithContext(ctx).
		Select(cartItemColumns).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
