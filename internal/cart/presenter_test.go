package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/gmihail/shop/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenterSubstitutesMissingProducts(t *testing.T) {
	t.Parallel()

	cat := defaultCatalog()
	presenter, err := NewPresenter(cat, nil)
	require.NoError(t, err)

	items := []Item{
		{ID: 2, UserID: "u1", ProductID: 42, Quantity: 2},
		{ID: 1, UserID: "u1", ProductID: 999, Quantity: 3},
	}
	cart := presenter.Build(context.Background(), items)

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 1, cat.calls, "products resolve in a single batch")

	valid := cart.Lines[0]
	assert.Equal(t, int64(2), valid.Item.ID)
	assert.Equal(t, "Tea", valid.Product.Name)
	assert.False(t, valid.Unavailable)
	assert.True(t, valid.Total.Equal(decimal.RequireFromString("5.00")), "got %s", valid.Total)

	missing := cart.Lines[1]
	assert.True(t, missing.Unavailable)
	assert.Equal(t, UnavailableProductName, missing.Product.Name)
	assert.Equal(t, UnavailableProductDescription, missing.Product.Description)
	assert.True(t, missing.Product.Price.IsZero())
	assert.True(t, missing.Total.IsZero())
	assert.Equal(t, 3, missing.Quantity)

	assert.True(t, cart.Subtotal.Equal(decimal.RequireFromString("5")))
	assert.Equal(t, 5, cart.ItemCount)
}

func TestPresenterDegradesOnCatalogOutage(t *testing.T) {
	t.Parallel()

	cat := defaultCatalog()
	cat.err = errors.New("catalog down")
	presenter, err := NewPresenter(cat, nil)
	require.NoError(t, err)

	cart := presenter.Build(context.Background(), []Item{
		{ID: 1, ProductID: 42, Quantity: 1},
		{ID: 2, ProductID: 7, Quantity: 1},
	})
	require.Len(t, cart.Lines, 2)
	for _, line := range cart.Lines {
		assert.True(t, line.Unavailable)
		assert.Equal(t, UnavailableProductName, line.Product.Name)
	}
	assert.True(t, cart.Subtotal.IsZero())
}

func TestPresenterEmptyCartSkipsCatalog(t *testing.T) {
	t.Parallel()

	cat := defaultCatalog()
	presenter, err := NewPresenter(cat, nil)
	require.NoError(t, err)

	cart := presenter.Build(context.Background(), nil)
	assert.Empty(t, cart.Lines)
	assert.NotNil(t, cart.Lines)
	assert.Zero(t, cat.calls)
}

func TestPresenterDeduplicatesProductIDs(t *testing.T) {
	t.Parallel()

	var seen [][]int64
	loader := productBatchLoaderFunc(func(_ context.Context, ids []int64) ([]catalog.Product, error) {
		seen = append(seen, ids)
		return nil, nil
	})
	presenter, err := NewPresenter(loader, nil)
	require.NoError(t, err)

	presenter.Build(context.Background(), []Item{{ProductID: 3}, {ProductID: 3}, {ProductID: 1}})
	require.Len(t, seen, 1)
	assert.Equal(t, []int64{3, 1}, seen[0])
}

func TestNewPresenterRequiresLoader(t *testing.T) {
	t.Parallel()
	_, err := NewPresenter(nil, nil)
	assert.Error(t, err)
}

type productBatchLoaderFunc func(ctx context.Context, ids []int64) ([]catalog.Product, error)

func (f productBatchLoaderFunc) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	return f(ctx, ids)
}
