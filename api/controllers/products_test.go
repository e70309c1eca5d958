package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmihail/shop/internal/catalog"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/gmihail/shop/pkg/pagination"
)

type stubCatalog struct {
	products   map[int64]catalog.Product
	lastParams pagination.Params
	err        error
}

func (s *stubCatalog) GetByID(ctx context.Context, id int64) (catalog.Product, error) {
	if s.err != nil {
		return catalog.Product{}, s.err
	}
	product, ok := s.products[id]
	if !ok {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *stubCatalog) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	return nil, nil
}

func (s *stubCatalog) List(ctx context.Context, params pagination.Params) (catalog.ProductList, error) {
	s.lastParams = params
	if s.err != nil {
		return catalog.ProductList{}, s.err
	}
	list := catalog.ProductList{}
	for _, p := range s.products {
		list.Products = append(list.Products, p)
	}
	return list, nil
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{products: map[int64]catalog.Product{
		42: {ID: 42, Name: "Tea", Price: decimal.RequireFromString("2.50")},
	}}
}

func productRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id, nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("productId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestProductDetail(t *testing.T) {
	resp := httptest.NewRecorder()
	ProductDetail(newStubCatalog(), nil).ServeHTTP(resp, productRequest("42"))

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data catalog.Product `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "Tea", envelope.Data.Name)
	assert.True(t, envelope.Data.Price.Equal(decimal.RequireFromString("2.5")))
}

func TestProductDetailErrors(t *testing.T) {
	tests := []struct {
		name string
		id   string
		err  error
		want int
	}{
		{name: "unknown", id: "7", want: http.StatusNotFound},
		{name: "not numeric", id: "tea", want: http.StatusBadRequest},
		{name: "catalog down", id: "42", err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("timeout"), "catalog unavailable"), want: http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newStubCatalog()
			svc.err = tc.err
			resp := httptest.NewRecorder()
			ProductDetail(svc, nil).ServeHTTP(resp, productRequest(tc.id))
			assert.Equal(t, tc.want, resp.Code)
		})
	}
}

func TestProductListParsesPagination(t *testing.T) {
	svc := newStubCatalog()
	resp := httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=5&cursor=abc", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, pagination.Params{Limit: 5, Cursor: "abc"}, svc.lastParams)

	resp = httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
