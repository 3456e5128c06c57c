package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efarmaplus/storefront/api/middleware"
	"github.com/efarmaplus/storefront/api/responses"
	"github.com/efarmaplus/storefront/api/validators"
	"github.com/efarmaplus/storefront/api/views"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
)

const (
	maxAddQuantity = 999
	checkoutDone   = "ok"
)

func CartPage(carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine := sessionCart(r, carts)
		view := views.NewCartView(engine, middleware.ClaimsFromContext(r.Context()) != nil)
		if r.URL.Query().Get("checkout") == checkoutDone {
			view.Notice = views.CheckoutSuccess
		}
		body, ok := renderBody(w, r, logg)(views.CartBody(view))
		if !ok {
			return
		}
		writePage(w, r, logg, http.StatusOK, views.Page{Title: "Carrito", CartCount: view.TotalItems, Body: body})
	}
}

// CartAdd snapshots the product into the cart. A quantity above one behaves
// like adding the product that many times, capped at the stock on hand.
func CartAdd(products ProductCatalog, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			responses.WriteHTMLError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form"))
			return
		}
		target := validators.SafeReturn(r.PostFormValue("return"), "/cart")

		id, err := validators.ParseFormID(r, "productId")
		if err != nil {
			responses.WriteHTMLError(ctx, logg, w, err)
			return
		}
		quantity, err := validators.ParseFormInt(r, "quantity", 1, 1, maxAddQuantity)
		if err != nil {
			responses.WriteHTMLError(ctx, logg, w, err)
			return
		}

		product, err := products.Get(ctx, id)
		if err != nil {
			responses.WriteHTMLError(ctx, logg, w, err)
			return
		}
		if product.Stock <= 0 {
			logg.Info(logg.WithField(ctx, "product_id", product.ID), "cart.add_out_of_stock")
			responses.Redirect(w, r, target)
			return
		}
		if quantity > product.Stock {
			quantity = product.Stock
		}

		engine := sessionCart(r, carts)
		item := product.CartItem()
		engine.Add(ctx, item)
		if quantity > 1 {
			if line, ok := engine.Line(item.ID); ok {
				engine.UpdateQuantity(ctx, item.ID, line.Quantity+quantity-1)
			}
		}
		responses.Redirect(w, r, target)
	}
}

// CartStep moves a line's quantity by delta; reaching zero removes it.
func CartStep(carts CartFactory, delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine := sessionCart(r, carts)
		itemID := chi.URLParam(r, "itemID")
		if line, ok := engine.Line(itemID); ok {
			engine.UpdateQuantity(r.Context(), itemID, line.Quantity+delta)
		}
		responses.Redirect(w, r, "/cart")
	}
}

func CartRemove(carts CartFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionCart(r, carts).Remove(r.Context(), chi.URLParam(r, "itemID"))
		responses.Redirect(w, r, "/cart")
	}
}

func CartClear(carts CartFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionCart(r, carts).Clear(r.Context())
		responses.Redirect(w, r, "/cart")
	}
}

// CartCheckout completes the purchase for a signed-in shopper by emptying
// the cart. Payment is simulated.
func CartCheckout(carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		engine := sessionCart(r, carts)
		if engine.TotalItems() == 0 {
			responses.Redirect(w, r, "/cart")
			return
		}
		ctx = logg.WithFields(ctx, map[string]any{
			"items": engine.TotalItems(),
			"total": engine.TotalPrice().String(),
		})
		if claims := middleware.ClaimsFromContext(ctx); claims != nil {
			ctx = logg.WithField(ctx, "user_id", claims.UserID)
		}
		engine.Clear(ctx)
		logg.Info(ctx, "cart.checkout_completed")
		responses.Redirect(w, r, "/cart?checkout="+checkoutDone)
	}
}
