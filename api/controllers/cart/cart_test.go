package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmihail/shop/api/middleware"
	cartsvc "github.com/gmihail/shop/internal/cart"
	"github.com/gmihail/shop/internal/catalog"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
)

const (
	testUser  = "8d4f5c1e-0000-4000-8000-000000000001"
	otherUser = "8d4f5c1e-0000-4000-8000-000000000002"
)

type stubCartService struct {
	items     map[int64]cartsvc.Item
	err       error
	countErr  error
	added     []int
	removed   []int64
	updated   map[int64]int
	updateErr error
}

func newStubCartService() *stubCartService {
	return &stubCartService{items: map[int64]cartsvc.Item{}, updated: map[int64]int{}}
}

func (s *stubCartService) AddItem(ctx context.Context, userID string, productID int64, quantity int) (cartsvc.Item, error) {
	if s.err != nil {
		return cartsvc.Item{}, s.err
	}
	s.added = append(s.added, quantity)
	item := cartsvc.Item{ID: int64(len(s.items) + 1), UserID: userID, ProductID: productID, Quantity: quantity, CreatedAt: time.Now().UTC()}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, itemID int64) error {
	if s.err != nil {
		return s.err
	}
	s.removed = append(s.removed, itemID)
	delete(s.items, itemID)
	return nil
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (cartsvc.Item, error) {
	if s.updateErr != nil {
		return cartsvc.Item{}, s.updateErr
	}
	item := s.items[itemID]
	item.Quantity = quantity
	s.items[itemID] = item
	s.updated[itemID] = quantity
	return item, nil
}

func (s *stubCartService) ListForUser(ctx context.Context, userID string) ([]cartsvc.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []cartsvc.Item
	for _, item := range s.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubCartService) GetItem(ctx context.Context, itemID int64) (cartsvc.Item, error) {
	if s.err != nil {
		return cartsvc.Item{}, s.err
	}
	item, ok := s.items[itemID]
	if !ok {
		return cartsvc.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return item, nil
}

func (s *stubCartService) Count(ctx context.Context, userID string) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	items, _ := s.ListForUser(ctx, userID)
	return int64(len(items)), nil
}

type stubProducts map[int64]catalog.Product

func (p stubProducts) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if product, ok := p[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

func newTestPresenter(t *testing.T) *cartsvc.Presenter {
	t.Helper()
	presenter, err := cartsvc.NewPresenter(stubProducts{
		42: {ID: 42, Name: "Tea", Price: decimal.RequireFromString("2.50")},
	}, nil)
	require.NoError(t, err)
	return presenter
}

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func withItemParam(req *http.Request, itemID string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("itemId", itemID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Error.Code, envelope.Error.Message
}

func TestCartFetchRendersUnavailableProducts(t *testing.T) {
	svc := newStubCartService()
	svc.items[1] = cartsvc.Item{ID: 1, UserID: testUser, ProductID: 42, Quantity: 2}
	svc.items[2] = cartsvc.Item{ID: 2, UserID: testUser, ProductID: 99, Quantity: 1}
	svc.items[3] = cartsvc.Item{ID: 3, UserID: otherUser, ProductID: 42, Quantity: 9}

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), testUser)
	resp := httptest.NewRecorder()
	CartFetch(svc, newTestPresenter(t), nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body cartResponse
	decodeData(t, resp, &body)
	require.Len(t, body.Items, 2)
	assert.True(t, body.Subtotal.Equal(decimal.RequireFromString("5.00")))
	assert.Equal(t, 3, body.ItemCount)

	var unavailable int
	for _, line := range body.Items {
		if line.Unavailable {
			unavailable++
			assert.Equal(t, cartsvc.UnavailableProductName, line.Product.Name)
			assert.Equal(t, int64(99), line.Product.ID)
		}
	}
	assert.Equal(t, 1, unavailable)
}

func TestCartFetchHidesStoreFailure(t *testing.T) {
	svc := newStubCartService()
	svc.err = pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection refused"), "cart operation failed")

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), testUser)
	resp := httptest.NewRecorder()
	CartFetch(svc, newTestPresenter(t), nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	code, message := decodeErrorCode(t, resp)
	assert.Equal(t, string(pkgerrors.CodeDependency), code)
	assert.Equal(t, cartErrorMessage, message)
	assert.NotContains(t, resp.Body.String(), "connection refused")
}

func TestCartCount(t *testing.T) {
	svc := newStubCartService()
	svc.items[1] = cartsvc.Item{ID: 1, UserID: testUser, ProductID: 42, Quantity: 2}
	svc.items[2] = cartsvc.Item{ID: 2, UserID: testUser, ProductID: 7, Quantity: 4}

	tests := []struct {
		name     string
		userID   string
		countErr error
		want     int64
	}{
		{name: "signed in", userID: testUser, want: 2},
		{name: "anonymous", want: 0},
		{name: "store failure", userID: testUser, countErr: errors.New("redis down"), want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc.countErr = tc.countErr
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/count", nil)
			if tc.userID != "" {
				req = withUser(req, tc.userID)
			}
			resp := httptest.NewRecorder()
			CartCount(svc, nil).ServeHTTP(resp, req)

			require.Equal(t, http.StatusOK, resp.Code)
			var body countResponse
			decodeData(t, resp, &body)
			assert.Equal(t, tc.want, body.Count)
		})
	}
}

func TestCartAddItem(t *testing.T) {
	svc := newStubCartService()

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":42}`)), testUser)
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	var body itemResponse
	decodeData(t, resp, &body)
	assert.Equal(t, int64(42), body.ProductID)
	assert.Equal(t, []int{1}, svc.added, "quantity defaults to one")

	req = withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":42,"quantity":3}`)), testUser)
	resp = httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, []int{1, 3}, svc.added)
}

func TestCartAddItemValidation(t *testing.T) {
	bodies := []string{
		`{"product_id":42,"quantity":0}`,
		`{"product_id":42,"quantity":101}`,
		`{"product_id":0}`,
		`{"product_id":42,"color":"red"}`,
	}
	for _, body := range bodies {
		svc := newStubCartService()
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), testUser)
		resp := httptest.NewRecorder()
		CartAddItem(svc, nil).ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
		assert.Empty(t, svc.added, body)
	}
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	svc := newStubCartService()
	svc.err = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":404}`)), testUser)
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	_, message := decodeErrorCode(t, resp)
	assert.Equal(t, "product not found", message)
}

func TestCartAddItemRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":42}`))
	resp := httptest.NewRecorder()
	CartAddItem(newStubCartService(), nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCartUpdateItem(t *testing.T) {
	svc := newStubCartService()
	svc.items[5] = cartsvc.Item{ID: 5, UserID: testUser, ProductID: 42, Quantity: 2}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/5", strings.NewReader(`{"quantity":7}`))
	req = withItemParam(withUser(req, testUser), "5")
	resp := httptest.NewRecorder()
	CartUpdateItem(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body itemResponse
	decodeData(t, resp, &body)
	assert.Equal(t, 7, body.Quantity)
	assert.Equal(t, 7, svc.updated[5])
}

func TestCartUpdateItemRejectsOutOfRange(t *testing.T) {
	for _, body := range []string{`{"quantity":0}`, `{"quantity":-3}`, `{"quantity":101}`} {
		svc := newStubCartService()
		svc.items[5] = cartsvc.Item{ID: 5, UserID: testUser, ProductID: 42, Quantity: 2}

		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/5", strings.NewReader(body))
		req = withItemParam(withUser(req, testUser), "5")
		resp := httptest.NewRecorder()
		CartUpdateItem(svc, nil).ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
		assert.Empty(t, svc.updated, body)
	}
}

func TestCartUpdateItemUnavailable(t *testing.T) {
	tests := []struct {
		name      string
		owner     string
		updateErr error
	}{
		{name: "missing item"},
		{name: "foreign item", owner: otherUser},
		{name: "deleted during update", owner: testUser, updateErr: pkgerrors.New(pkgerrors.CodeNotFound, "update failed")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newStubCartService()
			svc.updateErr = tc.updateErr
			if tc.owner != "" {
				svc.items[5] = cartsvc.Item{ID: 5, UserID: tc.owner, ProductID: 42, Quantity: 2}
			}

			req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/5", strings.NewReader(`{"quantity":3}`))
			req = withItemParam(withUser(req, testUser), "5")
			resp := httptest.NewRecorder()
			CartUpdateItem(svc, nil).ServeHTTP(resp, req)

			require.Equal(t, http.StatusOK, resp.Code)
			var body statusResponse
			decodeData(t, resp, &body)
			assert.Equal(t, statusItemUnavailable, body.Status)
			assert.Empty(t, svc.updated)
		})
	}
}

func TestCartRemoveItem(t *testing.T) {
	svc := newStubCartService()
	svc.items[5] = cartsvc.Item{ID: 5, UserID: testUser, ProductID: 42, Quantity: 2}
	svc.items[6] = cartsvc.Item{ID: 6, UserID: otherUser, ProductID: 42, Quantity: 2}

	for _, id := range []string{"5", "6", "77"} {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+id, nil)
		req = withItemParam(withUser(req, testUser), id)
		resp := httptest.NewRecorder()
		CartRemoveItem(svc, nil).ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code, id)
		var body statusResponse
		decodeData(t, resp, &body)
		assert.Equal(t, statusRemoved, body.Status)
	}

	assert.Equal(t, []int64{5}, svc.removed, "only the caller's item is deleted")
	_, stillThere := svc.items[6]
	assert.True(t, stillThere)
}

func TestCartRemoveItemInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/abc", nil)
	req = withItemParam(withUser(req, testUser), "abc")
	resp := httptest.NewRecorder()
	CartRemoveItem(newStubCartService(), nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
