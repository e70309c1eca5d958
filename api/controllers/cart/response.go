package cart

import (
	"time"

	cartsvc "github.com/gmihail/shop/internal/cart"
	"github.com/shopspring/decimal"
)

type cartResponse struct {
	Items     []cartLineResponse `json:"items"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	ItemCount int                `json:"item_count"`
}

type cartLineResponse struct {
	ID          int64           `json:"id"`
	Product     productResponse `json:"product"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

type productResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
}

type itemResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func newCartResponse(c cartsvc.Cart) cartResponse {
	lines := make([]cartLineResponse, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, cartLineResponse{
			ID: line.Item.ID,
			Product: productResponse{
				ID:          line.Product.ID,
				Name:        line.Product.Name,
				Price:       line.Product.Price,
				Description: line.Product.Description,
			},
			Quantity:    line.Quantity,
			LineTotal:   line.Total,
			Unavailable: line.Unavailable,
		})
	}
	return cartResponse{
		Items:     lines,
		Subtotal:  c.Subtotal,
		ItemCount: c.ItemCount,
	}
}

func newItemResponse(item cartsvc.Item) itemResponse {
	return itemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
	}
}
