package controllers

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/efarmaplus/storefront/api/middleware"
	"github.com/efarmaplus/storefront/api/responses"
	"github.com/efarmaplus/storefront/api/views"
	"github.com/efarmaplus/storefront/internal/cart"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
)

// CartFactory hands out the cart engine bound to a browser session.
type CartFactory interface {
	ForSession(ctx context.Context, sessionID string) *cart.Engine
}

func currentUser(ctx context.Context) *views.User {
	claims := middleware.ClaimsFromContext(ctx)
	if claims == nil {
		return nil
	}
	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	return &views.User{Name: name, IsAdmin: claims.IsAdmin()}
}

func sessionCart(r *http.Request, carts CartFactory) *cart.Engine {
	return carts.ForSession(r.Context(), middleware.SessionIDFromContext(r.Context()))
}

func cartCount(r *http.Request, carts CartFactory) int {
	if carts == nil {
		return 0
	}
	return sessionCart(r, carts).TotalItems()
}

// writePage wraps body in the layout. The header fields are filled from the
// request unless the caller already set them.
func writePage(w http.ResponseWriter, r *http.Request, logg *logger.Logger, status int, page views.Page) {
	if page.User == nil {
		page.User = currentUser(r.Context())
	}
	if page.ReturnURL == "" {
		page.ReturnURL = r.URL.RequestURI()
	}
	var buf bytes.Buffer
	if err := views.Render(&buf, page); err != nil {
		responses.WriteHTMLError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render page"))
		return
	}
	responses.WriteHTML(w, status, buf.Bytes())
}

// renderBody adapts a view call, writing template failures as internal
// errors: body, ok := renderBody(w, r, logg)(views.HomeBody(v)).
func renderBody(w http.ResponseWriter, r *http.Request, logg *logger.Logger) func(template.HTML, error) (template.HTML, bool) {
	return func(body template.HTML, err error) (template.HTML, bool) {
		if err != nil {
			responses.WriteHTMLError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render view"))
			return "", false
		}
		return body, true
	}
}
