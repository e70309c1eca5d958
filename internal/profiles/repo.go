package profiles

import (
	"context"
	"strings"
	"time"

	"github.com/gmihail/shop/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists profiles.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to tx. A nil tx keeps the current handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the profile. A zero CreatedAt is set to now.
func (r *Repository) Create(ctx context.Context, profile Profile) (*Profile, error) {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	profile.Username = strings.TrimSpace(profile.Username)
	row := profile.toModel()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return FromModel(row), nil
}

// FindByUserID returns gorm.ErrRecordNotFound when the user has no profile.
func (r *Repository) FindByUserID(ctx context.Context, userID string) (*Profile, error) {
	var row models.Profile
	if err := r.db.WithContext(ctx).
		Select(profileColumns).
		Where("user_id = ?", userID).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return FromModel(&row), nil
}

// UpdateUsername rewrites the username and reports whether a row changed.
func (r *Repository) UpdateUsername(ctx context.Context, userID, username string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("username", strings.TrimSpace(username))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
