package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gmihail/shop/pkg/db/models"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/gmihail/shop/pkg/pagination"
	"gorm.io/gorm"
)

const (
	msgProductNotFound    = "product not found"
	msgCatalogUnavailable = "catalog unavailable"
	msgInvalidProductID   = "product id must be positive"
	msgInvalidCursor      = "invalid cursor"
)

type productRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	List(ctx context.Context, afterID int64, limit int) ([]models.Product, error)
}

// Service is the read-only gateway to the product catalog.
type Service interface {
	GetByID(ctx context.Context, id int64) (Product, error)
	// GetByIDs returns the products that exist among ids. Missing ids are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	List(ctx context.Context, params pagination.Params) (ProductList, error)
}

// ProductList is one page of the catalog.
type ProductList struct {
	Products   []Product `json:"products"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type service struct {
	repo productRepository
}

func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidProductID)
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
		}
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgCatalogUnavailable)
	}
	return productFromRow(*row), nil
}

func (s *service) GetByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	unique := DistinctIDs(ids)
	if len(unique) == 0 {
		return []Product{}, nil
	}
	rows, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgCatalogUnavailable)
	}
	return productsFromRows(rows), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (ProductList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return ProductList{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidCursor)
	}
	var afterID int64
	if cursor != nil {
		afterID = cursor.AfterID
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, afterID, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return ProductList{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgCatalogUnavailable)
	}

	list := ProductList{}
	if len(rows) > limit {
		rows = rows[:limit]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{AfterID: rows[len(rows)-1].ID})
	}
	list.Products = productsFromRows(rows)
	return list, nil
}

// DistinctIDs drops duplicates and non-positive ids, keeping first-seen order.
func DistinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
