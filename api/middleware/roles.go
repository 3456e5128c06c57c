package middleware

import (
	"net/http"
	"net/url"

	"github.com/efarmaplus/storefront/api/responses"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
)

// RequireAuth sends anonymous browsers to loginPath and answers API clients with 401.
func RequireAuth(loginPath string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ClaimsFromContext(r.Context()) == nil {
				denyAnonymous(w, r, loginPath, logg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole additionally checks the role flag. Browsers with the wrong role
// go back to the storefront home.
func RequireRole(role, loginPath string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				denyAnonymous(w, r, loginPath, logg)
				return
			}
			if claims.Role != role {
				if responses.WantsJSON(r) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
					return
				}
				responses.Redirect(w, r, "/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyAnonymous(w http.ResponseWriter, r *http.Request, loginPath string, logg *logger.Logger) {
	if responses.WantsJSON(r) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return
	}
	responses.Redirect(w, r, loginPath+"?next="+url.QueryEscape(r.URL.RequestURI()))
}
