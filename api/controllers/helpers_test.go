package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/efarmaplus/storefront/api/middleware"
	"github.com/efarmaplus/storefront/internal/cart"
	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/pkg/auth"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

const testSession = "sess-1"

type fakeCatalog struct {
	items  []catalog.Product
	getErr error
	allErr error
}

func (f fakeCatalog) GetAll(context.Context) ([]catalog.Product, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.items, nil
}

func (f fakeCatalog) Get(_ context.Context, id int64) (catalog.Product, error) {
	if f.getErr != nil {
		return catalog.Product{}, f.getErr
	}
	for _, p := range f.items {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type fakeCategories struct {
	names []string
	err   error
}

func (f fakeCategories) Categories(context.Context) ([]catalog.Lookup, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]catalog.Lookup, 0, len(f.names))
	for i, n := range f.names {
		out = append(out, catalog.Lookup{ID: int64(i + 1), Name: n})
	}
	return out, nil
}

func product(id int64, name, category string, price int64, stock int) catalog.Product {
	return catalog.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
	}
}

func testCatalog() fakeCatalog {
	return fakeCatalog{items: []catalog.Product{
		product(1, "Paracetamol 500mg", "Analgésicos", 12990, 10),
		product(2, "Vitamina C 1000mg", "Vitaminas", 15990, 3),
		product(3, "Ibuprofeno 400mg", "Analgésicos", 10990, 0),
	}}
}

func newCarts() *cart.Factory {
	return cart.NewFactory(cart.NewMemoryStore(), "efp", nil, nil)
}

// withIdentity attaches the session id and, for a non-empty role, signed-in claims.
func withIdentity(r *http.Request, role string) *http.Request {
	ctx := middleware.WithSessionID(r.Context(), testSession)
	if role != "" {
		ctx = middleware.WithClaims(ctx, &auth.AccessTokenClaims{UserID: 7, Email: "ana@gmail.com", Name: "Ana", Role: role})
	}
	return r.WithContext(ctx)
}

func formRequest(method, target string, values url.Values) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}
