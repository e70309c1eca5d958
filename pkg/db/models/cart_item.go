package models

import "time"

// CartItem is one (user, product) line of a shopping cart.
type CartItem struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null;index:idx_cart_items_user_created,priority:1"`
	ProductID int64     `gorm:"column:product_id;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_cart_items_user_created,priority:2,sort:desc"`
}

func (CartItem) TableName() string { return "cart_items" }
