package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gmihail/shop/internal/catalog"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/gmihail/shop/pkg/logger"
	"github.com/gmihail/shop/pkg/metrics"
	"gorm.io/gorm"
)

const (
	msgUserRequired     = "user id is required"
	msgInvalidProductID = "product id must be positive"
	msgInvalidItemID    = "cart item id must be positive"
	msgQuantityMinimum  = "quantity must be at least 1"
	msgOperationFailed  = "cart operation failed"
	msgUpdateFailed     = "update failed"
	msgItemNotFound     = "cart item not found"
)

const (
	opAddItem        = "add_item"
	opRemoveItem     = "remove_item"
	opUpdateQuantity = "update_quantity"
	opListForUser    = "list_for_user"
	opGetItem        = "get_item"
	opCount          = "count"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id int64) (catalog.Product, error)
}

// Service exposes the cart store operations.
type Service interface {
	// AddItem merges quantity into the user's existing line for productID or
	// creates a new one.
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (Item, error)
	// RemoveItem deletes the item. Removing a missing item succeeds.
	RemoveItem(ctx context.Context, itemID int64) error
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) (Item, error)
	// ListForUser returns the user's items, most recent first.
	ListForUser(ctx context.Context, userID string) ([]Item, error)
	GetItem(ctx context.Context, itemID int64) (Item, error)
	Count(ctx context.Context, userID string) (int64, error)
}

// ServiceParams wires the cart service dependencies.
type ServiceParams struct {
	Repo        CartRepository
	Catalog     productLoader
	Tx          txRunner
	Metrics     *metrics.CartMetrics
	Logger      *logger.Logger
	MaxQuantity int
	Now         func() time.Time
}

type service struct {
	repo        CartRepository
	catalog     productLoader
	tx          txRunner
	metrics     *metrics.CartMetrics
	logg        *logger.Logger
	maxQuantity int
	now         func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	// the cart_items CHECK constraint caps quantity at MaxQuantity
	maxQuantity := params.MaxQuantity
	if maxQuantity < MinQuantity || maxQuantity > MaxQuantity {
		maxQuantity = MaxQuantity
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:        params.Repo,
		catalog:     params.Catalog,
		tx:          params.Tx,
		metrics:     params.Metrics,
		logg:        logg,
		maxQuantity: maxQuantity,
		now:         now,
	}, nil
}

func (s *service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (item Item, err error) {
	defer s.observe(opAddItem, time.Now(), &err)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, msgUserRequired)
	}
	if productID <= 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidProductID)
	}
	if quantity < MinQuantity || quantity > s.maxQuantity {
		return Item{}, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between %d and %d", MinQuantity, s.maxQuantity)
	}

	// Resolved outside the transaction so a pooled connection is not held
	// across the catalog read.
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return Item{}, err
	}

	var result Item
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByUserAndProduct(ctx, userID, productID, true)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			merged, err := s.updateQuantity(ctx, repo, existing.ID, s.clamp(existing.Quantity+quantity))
			if err == nil {
				result = merged
				return nil
			}
			if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				return err
			}
			s.logg.Warn(ctx, "cart item vanished during merge; inserting a new row")
		}

		row := itemToRow(Item{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: s.now().UTC(),
		})
		if err := repo.Create(ctx, &row); err != nil {
			return err
		}
		result = itemFromRow(row)
		return nil
	})
	if err != nil {
		return Item{}, s.storeError(ctx, opAddItem, err)
	}
	return result, nil
}

func (s *service) RemoveItem(ctx context.Context, itemID int64) (err error) {
	defer s.observe(opRemoveItem, time.Now(), &err)

	if itemID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgInvalidItemID)
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return s.storeError(ctx, opRemoveItem, err)
	}
	return nil
}

func (s *service) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (item Item, err error) {
	defer s.observe(opUpdateQuantity, time.Now(), &err)

	if itemID <= 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidItemID)
	}
	if quantity < MinQuantity {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, msgQuantityMinimum)
	}
	if quantity > s.maxQuantity {
		return Item{}, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between %d and %d", MinQuantity, s.maxQuantity)
	}
	item, err = s.updateQuantity(ctx, s.repo, itemID, quantity)
	if err != nil {
		return Item{}, s.storeError(ctx, opUpdateQuantity, err)
	}
	return item, nil
}

// updateQuantity writes then re-reads. The pair is not atomic; a delete in
// between surfaces as NOT_FOUND.
func (s *service) updateQuantity(ctx context.Context, repo CartRepository, itemID int64, quantity int) (Item, error) {
	if err := repo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return Item{}, err
	}
	row, err := repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Item{}, pkgerrors.New(pkgerrors.CodeNotFound, msgUpdateFailed)
		}
		return Item{}, err
	}
	return itemFromRow(*row), nil
}

func (s *service) ListForUser(ctx context.Context, userID string) (items []Item, err error) {
	defer s.observe(opListForUser, time.Now(), &err)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgUserRequired)
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.storeError(ctx, opListForUser, err)
	}
	return itemsFromRows(rows), nil
}

func (s *service) GetItem(ctx context.Context, itemID int64) (item Item, err error) {
	defer s.observe(opGetItem, time.Now(), &err)

	if itemID <= 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidItemID)
	}
	row, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Item{}, pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
		}
		return Item{}, s.storeError(ctx, opGetItem, err)
	}
	return itemFromRow(*row), nil
}

func (s *service) Count(ctx context.Context, userID string) (count int64, err error) {
	defer s.observe(opCount, time.Now(), &err)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, msgUserRequired)
	}
	count, err = s.repo.CountByUser(ctx, userID)
	if err != nil {
		return 0, s.storeError(ctx, opCount, err)
	}
	return count, nil
}

func (s *service) clamp(quantity int) int {
	if quantity > s.maxQuantity {
		return s.maxQuantity
	}
	return quantity
}

// storeError passes typed errors through and wraps anything else as a
// dependency failure.
func (s *service) storeError(ctx context.Context, op string, err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	s.logg.Error(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "cart "+op+" failed", nil)
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgOperationFailed)
}

func (s *service) observe(op string, started time.Time, errp *error) {
	s.metrics.Observe(op, outcomeFor(*errp), time.Since(started))
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		return metrics.OutcomeValidation
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
