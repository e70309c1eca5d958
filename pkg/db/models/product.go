package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog row. The service never writes it.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;type:text;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Description *string         `gorm:"column:description;type:text"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null"`
}

func (Product) TableName() string { return "products" }
