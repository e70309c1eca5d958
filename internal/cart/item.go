package cart

import (
	"time"

	"github.com/gmihail/shop/pkg/db/models"
)

const (
	// MinQuantity is the smallest quantity a stored cart item may carry.
	MinQuantity = 1
	// MaxQuantity caps both single adds and merged totals.
	MaxQuantity = 100
)

// Item is one (user, product) line of a cart as stored.
type Item struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// cartItemColumns is the column set read and written for an Item.
var cartItemColumns = []string{"id", "user_id", "product_id", "quantity", "created_at"}

func itemFromRow(row models.CartItem) Item {
	return Item{
		ID:        row.ID,
		UserID:    row.UserID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		CreatedAt: row.CreatedAt,
	}
}

func itemToRow(item Item) models.CartItem {
	return models.CartItem{
		ID:        item.ID,
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
	}
}

func itemsFromRows(rows []models.CartItem) []Item {
	out := make([]Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, itemFromRow(row))
	}
	return out
}
