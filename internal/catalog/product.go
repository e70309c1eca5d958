package catalog

import (
	"strings"

	"github.com/gmihail/shop/pkg/db/models"
	"github.com/shopspring/decimal"
)

// DefaultProductName is shown for catalog rows stored without a name.
const DefaultProductName = "Unknown product"

// Product is the read-only catalog view used by carts and listings.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
}

// productColumns is the column set read for a Product, in row order.
var productColumns = []string{"id", "name", "price", "description"}

func productFromRow(row models.Product) Product {
	p := Product{
		ID:    row.ID,
		Name:  strings.TrimSpace(row.Name),
		Price: row.Price,
	}
	if p.Name == "" {
		p.Name = DefaultProductName
	}
	if row.Description != nil {
		p.Description = *row.Description
	}
	return p
}

func productsFromRows(rows []models.Product) []Product {
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, productFromRow(row))
	}
	return out
}
