package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/efarmaplus/storefront/api/responses"
	"github.com/efarmaplus/storefront/api/validators"
	"github.com/efarmaplus/storefront/api/views"
	"github.com/efarmaplus/storefront/internal/catalog"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
)

const (
	maxSearchLen     = 80
	loadProductsFail = "No se pudieron cargar los productos"
)

// ProductCatalog is the read side of the product collection.
type ProductCatalog interface {
	GetAll(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

// CategorySource lists the backend categories for the filter sidebar.
type CategorySource interface {
	Categories(ctx context.Context) ([]catalog.Lookup, error)
}

func Home(products ProductCatalog, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := views.HomeView{Categories: views.HomeCategories, ReturnURL: "/"}
		items, err := products.GetAll(r.Context())
		if err != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "storefront.products_unavailable")
			view.Error = loadProductsFail
		}
		view.Featured = views.NewProductCards(catalog.Featured(items))

		body, ok := renderBody(w, r, logg)(views.HomeBody(view))
		if !ok {
			return
		}
		writePage(w, r, logg, http.StatusOK, views.Page{Title: "Inicio", CartCount: cartCount(r, carts), Body: body})
	}
}

// ProductList filters by ?category and searches by ?q. The heading shows the
// search first, then the category.
func ProductList(products ProductCatalog, categories CategorySource, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		category := validators.SanitizeString(r.URL.Query().Get("category"), maxSearchLen)
		if category == "" {
			category = catalog.AllCategories
		}
		query := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen)

		view := views.ProductListView{Query: query, ReturnURL: r.URL.RequestURI()}
		if !strings.EqualFold(category, catalog.AllCategories) {
			view.Category = category
		}

		items, err := products.GetAll(ctx)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "storefront.products_unavailable")
			view.Error = loadProductsFail
		}
		matched := catalog.Search(catalog.FilterByCategory(items, category), query)
		view.Products = views.NewProductCards(matched)
		view.Count = views.ProductCount(len(matched))
		view.Categories = categoryLinks(ctx, categories, items, category, logg)

		switch {
		case query != "":
			view.Heading = `Resultados para "` + query + `"`
		case view.Category == "":
			view.Heading = "Todos los Productos"
		default:
			view.Heading = category
		}

		body, ok := renderBody(w, r, logg)(views.ProductListBody(view))
		if !ok {
			return
		}
		writePage(w, r, logg, http.StatusOK, views.Page{Title: "Productos", CartCount: cartCount(r, carts), Body: body})
	}
}

// categoryLinks prefers the backend list and falls back to the categories
// present in the loaded products.
func categoryLinks(ctx context.Context, source CategorySource, products []catalog.Product, active string, logg *logger.Logger) []views.CategoryLink {
	var names []string
	if source != nil {
		lookups, err := source.Categories(ctx)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "storefront.categories_unavailable")
		} else {
			names = append(names, catalog.AllCategories)
			for _, l := range lookups {
				names = append(names, l.Name)
			}
		}
	}
	if names == nil {
		names = catalog.Categories(products)
	}
	links := make([]views.CategoryLink, 0, len(names))
	for _, n := range names {
		links = append(links, views.CategoryLink{Name: n, Active: strings.EqualFold(n, active)})
	}
	return links
}

// ProductDetail shows one product. Unknown products send the browser back to
// the listing.
func ProductDetail(products ProductCatalog, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseID(r, "productID")
		if err != nil {
			responses.Redirect(w, r, "/products")
			return
		}
		product, err := products.Get(r.Context(), id)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				responses.Redirect(w, r, "/products")
				return
			}
			responses.WriteHTMLError(r.Context(), logg, w, err)
			return
		}

		view := views.ProductDetailView{Product: views.NewProductCard(product), Quantity: 1}
		body, ok := renderBody(w, r, logg)(views.ProductDetailBody(view))
		if !ok {
			return
		}
		writePage(w, r, logg, http.StatusOK, views.Page{Title: product.Name, CartCount: cartCount(r, carts), Body: body})
	}
}
