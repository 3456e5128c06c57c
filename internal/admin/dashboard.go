package admin

import (
	"context"
	"html/template"
	"io"
	"strconv"
	"sync"

	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Stats are the dashboard counters.
type Stats struct {
	Products int
	Users    int
	Orders   int
	Revenue  decimal.Decimal
}

// Dashboard aggregates counts across the three collections.
type Dashboard struct {
	products catalog.Resource[catalog.Product]
	users    catalog.Resource[catalog.User]
	orders   catalog.Resource[catalog.Order]
}

func NewDashboard(products catalog.Resource[catalog.Product], users catalog.Resource[catalog.User], orders catalog.Resource[catalog.Order]) *Dashboard {
	return &Dashboard{products: products, users: users, orders: orders}
}

// Stats loads the three collections concurrently. Counts from collections
// that loaded are kept when another fails.
func (d *Dashboard) Stats(ctx context.Context) (Stats, error) {
	var (
		wg               sync.WaitGroup
		products         []catalog.Product
		users            []catalog.User
		orders           []catalog.Order
		pErr, uErr, oErr error
	)
	wg.Add(3)
	go func() { defer wg.Done(); products, pErr = d.products.GetAll(ctx) }()
	go func() { defer wg.Done(); users, uErr = d.users.GetAll(ctx) }()
	go func() { defer wg.Done(); orders, oErr = d.orders.GetAll(ctx) }()
	wg.Wait()

	return Stats{
		Products: len(products),
		Users:    len(users),
		Orders:   len(orders),
		Revenue:  catalog.Revenue(orders),
	}, multierr.Combine(pErr, uErr, oErr)
}

type statCard struct {
	Title string
	Value string
	Icon  string
	Color string
	Link  string
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<div class="admin-page">
<div class="admin-header">
<h1>Panel de Administración</h1>
<p>Bienvenido al panel de control de eFarma</p>
</div>
{{- if .Error}}
<div class="alert alert-error" role="alert">{{.Error}}</div>
{{- end}}
<div class="stats-grid">
{{- range .Cards}}
{{if .Link}}<a class="stat-card" href="{{.Link}}" style="border-left: 4px solid {{.Color}}">{{else}}<div class="stat-card" style="border-left: 4px solid {{.Color}}">{{end}}
<div class="stat-icon">{{.Icon}}</div>
<div class="stat-info"><h3>{{.Title}}</h3><p class="stat-value">{{.Value}}</p></div>
{{if .Link}}</a>{{else}}</div>{{end}}
{{- end}}
</div>
</div>
`))

// RenderDashboard writes the stat cards. A non-empty errMsg is shown above them.
func RenderDashboard(w io.Writer, st Stats, base, errMsg string) error {
	cards := []statCard{
		{Title: "Productos", Value: itoa(st.Products), Icon: "📦", Color: "#10b981", Link: base + "/products"},
		{Title: "Usuarios", Value: itoa(st.Users), Icon: "👥", Color: "#3b82f6", Link: base + "/users"},
		{Title: "Pedidos", Value: itoa(st.Orders), Icon: "📋", Color: "#f59e0b", Link: base + "/orders"},
		{Title: "Ingresos", Value: money.Format(st.Revenue), Icon: "💰", Color: "#8b5cf6"},
	}
	return dashboardTemplate.Execute(w, struct {
		Cards []statCard
		Error string
	}{Cards: cards, Error: errMsg})
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
