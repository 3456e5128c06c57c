package controllers

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/efarmaplus/storefront/api/middleware"
	"github.com/efarmaplus/storefront/api/responses"
	"github.com/efarmaplus/storefront/api/validators"
	"github.com/efarmaplus/storefront/api/views"
	"github.com/efarmaplus/storefront/internal/admin"
	"github.com/efarmaplus/storefront/internal/modal"
	"github.com/efarmaplus/storefront/internal/table"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
)

// AdminBase prefixes every admin URL.
const AdminBase = "/admin"

// AdminPages resolves the per-session admin state.
type AdminPages interface {
	Page(sessionID, name string) (admin.Page, bool)
	Document(sessionID string) *modal.Document
}

type StatsSource interface {
	Stats(ctx context.Context) (admin.Stats, error)
}

// OrderStatusChanger is implemented by pages that can move an order through
// its lifecycle.
type OrderStatusChanger interface {
	ChangeStatus(ctx context.Context, orderID, statusID int64) error
}

func AdminDashboard(stats StatsSource, pages AdminPages, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		st, err := stats.Stats(ctx)
		errMsg := ""
		if err != nil {
			logg.Error(ctx, "admin.stats_failed", err)
			errMsg = "Error al cargar estadísticas"
		}
		var buf bytes.Buffer
		if err := admin.RenderDashboard(&buf, st, AdminBase, errMsg); err != nil {
			responses.WriteHTMLError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render dashboard"))
			return
		}
		writeAdminPage(w, r, pages, carts, logg, "Panel de Administración", buf.String())
	}
}

// AdminResource renders one resource screen, loading it on first visit or
// when ?refresh is present.
func AdminResource(pages AdminPages, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, base, ok := resolvePage(w, r, pages, logg)
		if !ok {
			return
		}
		ctx := logg.WithResource(r.Context(), page.Name())
		if _, refresh := r.URL.Query()["refresh"]; refresh || !page.Loaded() {
			// failures surface as an alert on the page
			_ = page.Load(ctx)
		}
		var buf bytes.Buffer
		if err := page.Render(&buf, base); err != nil {
			responses.WriteHTMLError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render admin screen"))
			return
		}
		writeAdminPage(w, r, pages, carts, logg, "Administración", buf.String())
	}
}

func AdminCreate(pages AdminPages, logg *logger.Logger) http.HandlerFunc {
	return adminAction(pages, logg, func(ctx context.Context, page admin.Page, _ *http.Request) error {
		return page.OpenCreate(ctx)
	})
}

// AdminRowClick handles a click on a row: GET on the row body opens the
// detail view, POST with an action runs edit or delete.
func AdminRowClick(pages AdminPages, logg *logger.Logger) http.HandlerFunc {
	click := adminAction(pages, logg, func(ctx context.Context, page admin.Page, r *http.Request) error {
		return page.Click(ctx, chi.URLParam(r, "rowID"), table.Action(chi.URLParam(r, "action")))
	})
	return func(w http.ResponseWriter, r *http.Request) {
		switch table.Action(chi.URLParam(r, "action")) {
		case table.ActionNone, table.ActionEdit, table.ActionDelete:
			click(w, r)
		default:
			responses.WriteHTMLError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown row action"))
		}
	}
}

func AdminSubmit(pages AdminPages, logg *logger.Logger) http.HandlerFunc {
	return adminAction(pages, logg, func(ctx context.Context, page admin.Page, r *http.Request) error {
		return page.Submit(ctx, r)
	})
}

func AdminCancel(pages AdminPages, logg *logger.Logger) http.HandlerFunc {
	return adminAction(pages, logg, func(_ context.Context, page admin.Page, _ *http.Request) error {
		page.Cancel()
		return nil
	})
}

func AdminDismiss(pages AdminPages, logg *logger.Logger) http.HandlerFunc {
	return adminAction(pages, logg, func(_ context.Context, page admin.Page, _ *http.Request) error {
		page.Dismiss()
		return nil
	})
}

func AdminChangeStatus(pages AdminPages, logg *logger.Logger) http.HandlerFunc {
	return adminAction(pages, logg, func(ctx context.Context, page admin.Page, r *http.Request) error {
		changer, ok := page.(OrderStatusChanger)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeUnsupported, "resource has no status")
		}
		orderID, err := validators.ParseID(r, "orderID")
		if err != nil {
			return err
		}
		statusID, err := validators.ParseID(r, "statusID")
		if err != nil {
			return err
		}
		return changer.ChangeStatus(ctx, orderID, statusID)
	})
}

// AdminKey forwards a key press to the session document, which delivers it to
// every open modal.
func AdminKey(pages AdminPages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.PostFormValue("return")
		if !strings.HasPrefix(target, AdminBase) {
			target = AdminBase
		}
		target = validators.SafeReturn(target, AdminBase)
		if key := r.PostFormValue("key"); key != "" {
			pages.Document(middleware.SessionIDFromContext(r.Context())).PressKey(key)
		}
		responses.Redirect(w, r, target)
	}
}

// adminAction runs fn against the addressed page and returns the browser to
// the screen. Outcomes the user should see are already queued as alerts, so
// errors here are only logged.
func adminAction(pages AdminPages, logg *logger.Logger, fn func(ctx context.Context, page admin.Page, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, base, ok := resolvePage(w, r, pages, logg)
		if !ok {
			return
		}
		ctx := logg.WithResource(r.Context(), page.Name())
		if err := fn(ctx, page, r); err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "admin.action_rejected")
		}
		responses.Redirect(w, r, base)
	}
}

func resolvePage(w http.ResponseWriter, r *http.Request, pages AdminPages, logg *logger.Logger) (admin.Page, string, bool) {
	name := chi.URLParam(r, "resource")
	page, ok := pages.Page(middleware.SessionIDFromContext(r.Context()), name)
	if !ok {
		responses.WriteHTMLError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown admin resource"))
		return nil, "", false
	}
	return page, AdminBase + "/" + name, true
}

// writeAdminPage mirrors the document's scroll lock onto the layout and, while
// a modal holds it, wires the Escape key back to the server.
func writeAdminPage(w http.ResponseWriter, r *http.Request, pages AdminPages, carts CartFactory, logg *logger.Logger, title, body string) {
	doc := pages.Document(middleware.SessionIDFromContext(r.Context()))
	page := views.Page{
		Title:     title,
		CartCount: cartCount(r, carts),
		Overflow:  doc.BodyOverflow(),
		Body:      template.HTML(body),
	}
	if doc.ScrollLocked() {
		page.KeyURL = AdminBase + "/key"
	}
	writePage(w, r, logg, http.StatusOK, page)
}
