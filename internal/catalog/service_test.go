package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/gmihail/shop/pkg/db/models"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/gmihail/shop/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubProductRepo struct {
	rows        map[int64]models.Product
	err         error
	findByIDs   [][]int64
	findByIDHit int
	listLimits  []int
}

func (s *stubProductRepo) FindByID(_ context.Context, id int64) (*models.Product, error) {
	s.findByIDHit++
	if s.err != nil {
		return nil, s.err
	}
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (s *stubProductRepo) FindByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	s.findByIDs = append(s.findByIDs, ids)
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Product
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubProductRepo) List(_ context.Context, afterID int64, limit int) ([]models.Product, error) {
	s.listLimits = append(s.listLimits, limit)
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Product
	for id := afterID + 1; len(out) < limit; id++ {
		row, ok := s.rows[id]
		if !ok {
			break
		}
		out = append(out, row)
	}
	return out, nil
}

func newStubRepo() *stubProductRepo {
	return &stubProductRepo{rows: map[int64]models.Product{
		1: {ID: 1, Name: "Tea", Price: decimal.RequireFromString("4.50")},
		2: {ID: 2, Name: "", Price: decimal.RequireFromString("1.00")},
	}}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	t.Parallel()
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error without repository")
	}
}

func TestGetByIDsDeduplicatesBeforeQuery(t *testing.T) {
	t.Parallel()
	repo := newStubRepo()
	svc, _ := NewService(repo)

	products, err := svc.GetByIDs(context.Background(), []int64{1, 1, 2, 0, -3, 9, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.findByIDs) != 1 {
		t.Fatalf("expected one batch query, got %d", len(repo.findByIDs))
	}
	if got := repo.findByIDs[0]; len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 9 {
		t.Fatalf("unexpected ids sent to store %v", got)
	}
	if len(products) != 2 {
		t.Fatalf("missing ids must be absent, got %d products", len(products))
	}
}

func TestGetByIDsEmptyInputSkipsStore(t *testing.T) {
	t.Parallel()
	repo := newStubRepo()
	svc, _ := NewService(repo)

	products, err := svc.GetByIDs(context.Background(), nil)
	if err != nil || len(products) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", products, err)
	}
	if len(repo.findByIDs) != 0 {
		t.Fatalf("store should not be queried")
	}
}

func TestGetByIDDefaultsName(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(newStubRepo())

	p, err := svc.GetByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != DefaultProductName {
		t.Fatalf("expected default name, got %q", p.Name)
	}
}

func TestGetByIDErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := NewService(newStubRepo())
	if _, err := svc.GetByID(ctx, 404); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	repo := newStubRepo()
	svc, _ = NewService(repo)
	if _, err := svc.GetByID(ctx, 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.findByIDHit != 0 {
		t.Fatalf("invalid id must not reach the store")
	}

	broken := newStubRepo()
	broken.err = errors.New("connection refused")
	svc, _ = NewService(broken)
	_, err := svc.GetByID(ctx, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if typed := pkgerrors.As(err); typed.Message() != msgCatalogUnavailable {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	if _, err := svc.GetByIDs(ctx, []int64{1}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error from batch, got %v", err)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(newStubRepo())
	if _, err := svc.List(context.Background(), pagination.Params{Cursor: "!!"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListFetchesOneExtraRowForNextCursor(t *testing.T) {
	t.Parallel()
	repo := newStubRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()

	page, err := svc.List(ctx, pagination.Params{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Products) != 1 || page.NextCursor == "" {
		t.Fatalf("expected one product and a next cursor, got %+v", page)
	}

	page, err = svc.List(ctx, pagination.Params{Limit: 1, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(page.Products) != 1 || page.NextCursor != "" {
		t.Fatalf("expected last page without cursor, got %+v", page)
	}

	if _, err := svc.List(ctx, pagination.Params{Limit: 500}); err != nil {
		t.Fatalf("list capped: %v", err)
	}
	want := []int{2, 2, pagination.MaxLimit + 1}
	for i, got := range repo.listLimits {
		if got != want[i] {
			t.Fatalf("call %d requested %d rows, want %d", i, got, want[i])
		}
	}
}
