package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efarmaplus/storefront/internal/admin"
	"github.com/efarmaplus/storefront/internal/modal"
	"github.com/efarmaplus/storefront/internal/table"
	"github.com/efarmaplus/storefront/pkg/auth"
	"github.com/efarmaplus/storefront/pkg/logger"
)

type fakePage struct {
	name      string
	loaded    bool
	loads     int
	clicks    []string
	submitted int
	cancelled int
	dismissed int
	created   int
	err       error
}

func (p *fakePage) Name() string { return p.name }
func (p *fakePage) Loaded() bool { return p.loaded }
func (p *fakePage) Load(context.Context) error {
	p.loads++
	p.loaded = true
	return nil
}
func (p *fakePage) OpenCreate(context.Context) error { p.created++; return p.err }
func (p *fakePage) Click(_ context.Context, rowID string, action table.Action) error {
	p.clicks = append(p.clicks, rowID+":"+string(action))
	return p.err
}
func (p *fakePage) Submit(context.Context, *http.Request) error { p.submitted++; return p.err }
func (p *fakePage) Cancel()                                     { p.cancelled++ }
func (p *fakePage) Dismiss()                                    { p.dismissed++ }
func (p *fakePage) Busy() bool                                  { return false }
func (p *fakePage) ModalOpen() bool                             { return false }
func (p *fakePage) Render(w io.Writer, base string) error {
	_, err := fmt.Fprintf(w, `<div class="screen" data-base="%s">%s</div>`, base, p.name)
	return err
}
func (p *fakePage) Teardown() {}

type statusPage struct {
	*fakePage
	changed [][2]int64
}

func (p *statusPage) ChangeStatus(_ context.Context, orderID, statusID int64) error {
	p.changed = append(p.changed, [2]int64{orderID, statusID})
	return nil
}

type fakePages struct {
	pages map[string]admin.Page
	doc   *modal.Document
}

func (f *fakePages) Page(_ string, name string) (admin.Page, bool) {
	p, ok := f.pages[name]
	return p, ok
}

func (f *fakePages) Document(string) *modal.Document { return f.doc }

type fakeStats struct {
	stats admin.Stats
	err   error
}

func (f fakeStats) Stats(context.Context) (admin.Stats, error) { return f.stats, f.err }

func adminRouter(pages AdminPages, stats StatsSource) chi.Router {
	logg := logger.Nop()
	r := chi.NewRouter()
	r.Route(AdminBase, func(r chi.Router) {
		r.Get("/", AdminDashboard(stats, pages, nil, logg))
		r.Post("/key", AdminKey(pages))
		r.Route("/{resource}", func(r chi.Router) {
			r.Get("/", AdminResource(pages, nil, logg))
			r.Post("/new", AdminCreate(pages, logg))
			r.Get("/rows/{rowID}", AdminRowClick(pages, logg))
			r.Post("/rows/{rowID}/{action}", AdminRowClick(pages, logg))
			r.Post("/form", AdminSubmit(pages, logg))
			r.Post("/form/cancel", AdminCancel(pages, logg))
			r.Post("/modal/dismiss", AdminDismiss(pages, logg))
			r.Post("/status/{orderID}/{statusID}", AdminChangeStatus(pages, logg))
		})
	})
	return r
}

func newFakePages() (*fakePages, *fakePage, *statusPage) {
	products := &fakePage{name: "products"}
	orders := &statusPage{fakePage: &fakePage{name: "orders"}}
	return &fakePages{
		pages: map[string]admin.Page{"products": products, "orders": orders},
		doc:   modal.NewDocument(),
	}, products, orders
}

func adminGet(router http.Handler, target string) *httptest.ResponseRecorder {
	return serve(router, withIdentity(httptest.NewRequest(http.MethodGet, target, nil), auth.RoleAdmin))
}

func adminPost(router http.Handler, target string, values url.Values) *httptest.ResponseRecorder {
	return serve(router, withIdentity(formRequest(http.MethodPost, target, values), auth.RoleAdmin))
}

func TestAdminDashboard(t *testing.T) {
	pages, _, _ := newFakePages()
	router := adminRouter(pages, fakeStats{stats: admin.Stats{Products: 12, Users: 3, Orders: 4, Revenue: decimal.NewFromInt(45980)}})

	resp := adminGet(router, "/admin/")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "$45.980")
	assert.Contains(t, body, "Panel Admin")
	assert.Contains(t, body, `style="overflow: auto"`)

	router = adminRouter(pages, fakeStats{err: errors.New("down")})
	resp = adminGet(router, "/admin/")
	assert.Contains(t, resp.Body.String(), "Error al cargar estadísticas")
}

func TestAdminResourceLoadsOnce(t *testing.T) {
	pages, products, _ := newFakePages()
	router := adminRouter(pages, fakeStats{})

	resp := adminGet(router, "/admin/products")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `data-base="/admin/products"`)
	adminGet(router, "/admin/products")
	assert.Equal(t, 1, products.loads)

	adminGet(router, "/admin/products?refresh")
	assert.Equal(t, 2, products.loads)

	resp = adminGet(router, "/admin/coupons")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminActionsRedirectToScreen(t *testing.T) {
	pages, products, _ := newFakePages()
	router := adminRouter(pages, fakeStats{})

	cases := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/admin/products/new"},
		{http.MethodGet, "/admin/products/rows/7"},
		{http.MethodPost, "/admin/products/rows/7/edit"},
		{http.MethodPost, "/admin/products/rows/7/delete"},
		{http.MethodPost, "/admin/products/form"},
		{http.MethodPost, "/admin/products/form/cancel"},
		{http.MethodPost, "/admin/products/modal/dismiss"},
	}
	for _, tc := range cases {
		resp := serve(router, withIdentity(formRequest(tc.method, tc.target, nil), auth.RoleAdmin))
		assert.Equal(t, http.StatusSeeOther, resp.Code, tc.target)
		assert.Equal(t, "/admin/products", resp.Header().Get("Location"), tc.target)
	}

	assert.Equal(t, 1, products.created)
	assert.Equal(t, []string{"7:", "7:edit", "7:delete"}, products.clicks)
	assert.Equal(t, 1, products.submitted)
	assert.Equal(t, 1, products.cancelled)
	assert.Equal(t, 1, products.dismissed)
}

func TestAdminActionErrorsStillRedirect(t *testing.T) {
	pages, products, _ := newFakePages()
	products.err = errors.New("backend down")
	router := adminRouter(pages, fakeStats{})

	resp := adminPost(router, "/admin/products/form", nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)

	resp = adminPost(router, "/admin/products/rows/7/archive", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Empty(t, products.clicks)
}

func TestAdminChangeStatus(t *testing.T) {
	pages, _, orders := newFakePages()
	router := adminRouter(pages, fakeStats{})

	resp := adminPost(router, "/admin/orders/status/15/3", nil)
	assert.Equal(t, "/admin/orders", resp.Header().Get("Location"))
	assert.Equal(t, [][2]int64{{15, 3}}, orders.changed)

	resp = adminPost(router, "/admin/products/status/15/3", nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)

	adminPost(router, "/admin/orders/status/abc/3", nil)
	assert.Len(t, orders.changed, 1)
}

func TestAdminKeyForwardsToDocument(t *testing.T) {
	pages, _, _ := newFakePages()
	router := adminRouter(pages, fakeStats{})

	var pressed []string
	lease := pages.doc.Acquire(func(key string) { pressed = append(pressed, key) })
	defer lease.Release()

	resp := adminGet(router, "/admin/products")
	body := resp.Body.String()
	assert.Contains(t, body, `style="overflow: hidden"`)
	assert.Contains(t, body, `action="/admin/key"`)

	resp = adminPost(router, "/admin/key", url.Values{"key": {modal.KeyEscape}, "return": {"/admin/products"}})
	assert.Equal(t, "/admin/products", resp.Header().Get("Location"))
	assert.Equal(t, []string{modal.KeyEscape}, pressed)

	resp = adminPost(router, "/admin/key", url.Values{"key": {modal.KeyEscape}, "return": {"/cart"}})
	assert.Equal(t, AdminBase, resp.Header().Get("Location"))
}
