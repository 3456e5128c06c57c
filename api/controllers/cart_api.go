package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efarmaplus/storefront/api/responses"
	"github.com/efarmaplus/storefront/api/validators"
	"github.com/efarmaplus/storefront/internal/cart"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type cartLineResponse struct {
	cart.Line
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Items      []cartLineResponse `json:"items"`
	TotalItems int                `json:"totalItems"`
	TotalPrice decimal.Decimal    `json:"totalPrice"`
}

func newCartResponse(e *cart.Engine) cartResponse {
	lines := e.Lines()
	resp := cartResponse{
		Items:      make([]cartLineResponse, 0, len(lines)),
		TotalItems: e.TotalItems(),
		TotalPrice: e.TotalPrice(),
	}
	for _, l := range lines {
		resp.Items = append(resp.Items, cartLineResponse{Line: l, EffectivePrice: l.EffectiveUnitPrice(), Subtotal: l.Subtotal()})
	}
	return resp
}

type addCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1,max=999"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

func CartFetch(carts CartFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(sessionCart(r, carts)))
	}
}

// CartAddItem adds a product snapshot, capping the requested quantity at the
// stock on hand like the form flow. Unlike the form flow, API callers get an
// explicit error for products that are out of stock.
func CartAddItem(products ProductCatalog, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		product, err := products.Get(ctx, req.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if product.Stock <= 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "product out of stock").WithDetails(map[string]any{"productId": product.ID}))
			return
		}
		if req.Quantity > product.Stock {
			req.Quantity = product.Stock
		}

		engine := sessionCart(r, carts)
		item := product.CartItem()
		engine.Add(ctx, item)
		if req.Quantity > 1 {
			if line, ok := engine.Line(item.ID); ok {
				engine.UpdateQuantity(ctx, item.ID, line.Quantity+req.Quantity-1)
			}
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(engine))
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		engine := sessionCart(r, carts)
		itemID := chi.URLParam(r, "itemID")
		if _, ok := engine.Line(itemID); !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found"))
			return
		}
		engine.UpdateQuantity(ctx, itemID, *req.Quantity)
		responses.WriteSuccess(w, newCartResponse(engine))
	}
}

func CartDeleteItem(carts CartFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine := sessionCart(r, carts)
		engine.Remove(r.Context(), chi.URLParam(r, "itemID"))
		responses.WriteSuccess(w, newCartResponse(engine))
	}
}

func CartDelete(carts CartFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine := sessionCart(r, carts)
		engine.Clear(r.Context())
		responses.WriteSuccess(w, newCartResponse(engine))
	}
}
