package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/pkg/logger"
)

func storefrontRouter(products fakeCatalog, cats CategorySource) chi.Router {
	r := chi.NewRouter()
	carts := newCarts()
	r.Get("/", Home(products, carts, logger.Nop()))
	r.Get("/products", ProductList(products, cats, carts, logger.Nop()))
	r.Get("/products/{productID}", ProductDetail(products, carts, logger.Nop()))
	return r
}

func TestHomeShowsFeaturedProducts(t *testing.T) {
	var items []catalog.Product
	for i := 1; i <= 8; i++ {
		items = append(items, product(int64(i), fmt.Sprintf("Producto %d", i), "Vitaminas", 10990, 5))
	}
	router := storefrontRouter(fakeCatalog{items: items}, nil)

	resp := serve(router, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), ""))
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "Bienvenido a eFarmaPlus")
	assert.Contains(t, body, "Productos Destacados")
	assert.Contains(t, body, "Producto 6")
	assert.NotContains(t, body, "Producto 7")
	assert.Contains(t, body, "$10.990")
	assert.Contains(t, body, "Iniciar sesión")
}

func TestHomeSurvivesCatalogFailure(t *testing.T) {
	router := storefrontRouter(fakeCatalog{allErr: errors.New("boom")}, nil)

	resp := serve(router, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), ""))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), loadProductsFail)
}

func TestProductListFiltersAndSearches(t *testing.T) {
	cases := []struct {
		name      string
		target    string
		heading   string
		count     string
		contains  []string
		excluding []string
	}{
		{
			name:     "all",
			target:   "/products",
			heading:  "Todos los Productos",
			count:    "3 productos",
			contains: []string{"Paracetamol", "Vitamina C", "Ibuprofeno"},
		},
		{
			name:      "category",
			target:    "/products?category=vitaminas",
			heading:   "vitaminas",
			count:     "1 producto",
			contains:  []string{"Vitamina C"},
			excluding: []string{"Paracetamol"},
		},
		{
			name:      "search wins the heading",
			target:    "/products?category=Analg%C3%A9sicos&q=ibup",
			heading:   "Resultados para &#34;ibup&#34;",
			count:     "1 producto",
			contains:  []string{"Ibuprofeno"},
			excluding: []string{"Paracetamol"},
		},
		{
			name:    "no match",
			target:  "/products?q=zzz",
			heading: "Resultados para &#34;zzz&#34;",
			count:   "0 productos",
		},
	}

	router := storefrontRouter(testCatalog(), fakeCategories{names: []string{"Analgésicos", "Vitaminas"}})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := serve(router, withIdentity(httptest.NewRequest(http.MethodGet, tc.target, nil), ""))
			require.Equal(t, http.StatusOK, resp.Code)
			body := resp.Body.String()
			assert.Contains(t, body, "<h1>"+tc.heading+"</h1>")
			assert.Contains(t, body, tc.count)
			for _, s := range tc.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tc.excluding {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestProductListCategoryFallback(t *testing.T) {
	router := storefrontRouter(testCatalog(), fakeCategories{err: errors.New("down")})

	resp := serve(router, withIdentity(httptest.NewRequest(http.MethodGet, "/products", nil), ""))
	body := resp.Body.String()
	assert.Contains(t, body, `class="filter-button active" href="/products?category=Todas"`)
	assert.Contains(t, body, ">Analgésicos</a>")
	assert.Contains(t, body, ">Vitaminas</a>")
}

func TestProductDetail(t *testing.T) {
	router := storefrontRouter(testCatalog(), nil)

	resp := serve(router, withIdentity(httptest.NewRequest(http.MethodGet, "/products/2", nil), ""))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "En stock (3 unidades)")
	assert.Contains(t, resp.Body.String(), `max="3"`)

	resp = serve(router, withIdentity(httptest.NewRequest(http.MethodGet, "/products/3", nil), ""))
	assert.Contains(t, resp.Body.String(), "Agotado")

	resp = serve(router, withIdentity(httptest.NewRequest(http.MethodGet, "/products/99", nil), ""))
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/products", resp.Header().Get("Location"))
}

func TestProductDetailBackendFailure(t *testing.T) {
	products := testCatalog()
	products.getErr = errors.New("timeout")
	router := storefrontRouter(products, nil)

	resp := serve(router, withIdentity(httptest.NewRequest(http.MethodGet, "/products/1", nil), ""))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
