package profiles

import (
	"time"

	"github.com/gmihail/shop/pkg/db/models"
)

// Profile is the user-editable part of an account.
type Profile struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

var profileColumns = []string{"user_id", "username", "created_at"}

func FromModel(row *models.Profile) *Profile {
	if row == nil {
		return nil
	}
	return &Profile{
		UserID:    row.UserID,
		Username:  row.Username,
		CreatedAt: row.CreatedAt,
	}
}

func (p Profile) toModel() *models.Profile {
	return &models.Profile{
		UserID:    p.UserID,
		Username:  p.Username,
		CreatedAt: p.CreatedAt,
	}
}
