package cart

import (
	"context"
	"fmt"

	"github.com/gmihail/shop/internal/catalog"
	"github.com/gmihail/shop/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	UnavailableProductName        = "[item unavailable]"
	UnavailableProductDescription = "this item was removed or is temporarily unavailable"
)

type productBatchLoader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error)
}

// Line is a cart item joined with its product. It is never persisted.
type Line struct {
	Item        Item            `json:"item"`
	Product     catalog.Product `json:"product"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	Unavailable bool            `json:"unavailable"`
}

// Cart is the presented view of a user's cart.
type Cart struct {
	Lines     []Line          `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

// Presenter joins cart items with catalog data.
type Presenter struct {
	catalog productBatchLoader
	logg    *logger.Logger
}

func NewPresenter(products productBatchLoader, logg *logger.Logger) (*Presenter, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Presenter{catalog: products, logg: logg}, nil
}

// Build resolves every referenced product in one batch and emits one line
// per item in input order. Products that cannot be resolved are replaced by
// the unavailable placeholder, so Build never fails.
func (p *Presenter) Build(ctx context.Context, items []Item) Cart {
	out := Cart{Lines: make([]Line, 0, len(items)), Subtotal: decimal.Zero}
	if len(items) == 0 {
		return out
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	byID := map[int64]catalog.Product{}
	products, err := p.catalog.GetByIDs(ctx, catalog.DistinctIDs(ids))
	if err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "catalog lookup failed; rendering cart with placeholders")
	}
	for _, product := range products {
		byID[product.ID] = product
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			product = unavailableProduct(item.ProductID)
		}
		total := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		out.Lines = append(out.Lines, Line{
			Item:        item,
			Product:     product,
			Quantity:    item.Quantity,
			Total:       total,
			Unavailable: !ok,
		})
		out.Subtotal = out.Subtotal.Add(total)
		out.ItemCount += item.Quantity
	}
	return out
}

func unavailableProduct(id int64) catalog.Product {
	return catalog.Product{
		ID:          id,
		Name:        UnavailableProductName,
		Price:       decimal.Zero,
		Description: UnavailableProductDescription,
	}
}
