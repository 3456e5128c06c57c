package admin

import (
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/internal/modal"
	"github.com/efarmaplus/storefront/internal/table"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/money"
)

const statusField = "status"

type statusLookups interface {
	Statuses(ctx context.Context) []catalog.Lookup
}

// OrderService is the order collection plus its status transition.
type OrderService interface {
	catalog.Resource[catalog.Order]
	UpdateStatus(ctx context.Context, id int64, statusID int64) (catalog.Order, error)
}

var statusBadges = map[string]string{
	"Pendiente":  "⏳ Pendiente",
	"Procesando": "📦 Procesando",
	"En camino":  "🚚 En camino",
	"Entregado":  "✅ Entregado",
	"Cancelado":  "❌ Cancelado",
}

// StatusBadge decorates a status name for display.
func StatusBadge(status string) string {
	if badge, ok := statusBadges[status]; ok {
		return badge
	}
	return "📋 " + status
}

// FormatDate renders a backend timestamp as an es-CL date.
func FormatDate(raw string) string {
	if raw == "" {
		return "N/A"
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2-1-2006")
		}
	}
	return raw
}

// OrdersConfig is the read-only order list with a detail modal.
func OrdersConfig(lookups statusLookups) Config[catalog.Order] {
	return Config[catalog.Order]{
		Name:    "orders",
		Title:   "Gestión de Pedidos",
		Noun:    "Pedido",
		Columns: []string{"Pedido", "Cliente", "Fecha", "Total", "Productos", "Estado"},
		Size:    modal.SizeMedium,
		ID:      func(o catalog.Order) int64 { return o.ID },
		Row: func(o catalog.Order) table.Row {
			return table.Row{o.ID, o.CustomerName, FormatDate(o.CreatedAt), money.Format(o.Total), 0, StatusBadge(o.Status)}
		},
		Options: func(ctx context.Context) (Options, error) {
			return Options{statusField: lookupOptions(lookups.Statuses(ctx))}, nil
		},
		Summary: func(orders []catalog.Order) string {
			return fmt.Sprintf("Total: %d pedidos · Ingresos: %s", len(orders), money.Format(catalog.Revenue(orders)))
		},
		Detail:      orderDetail,
		DetailTitle: func(o catalog.Order) string { return fmt.Sprintf("Pedido #%d", o.ID) },
	}
}

type statusButton struct {
	Label string
	URL   string
}

type orderDetailView struct {
	Customer string
	Email    string
	Date     string
	Total    string
	Payment  string
	Shipping string
	Address  string
	Status   string
	Buttons  []statusButton
}

var orderDetailTemplate = template.Must(template.New("order").Parse(`<div class="order-details">
<div class="detail-row"><strong>Cliente:</strong><span>{{.Customer}}</span></div>
<div class="detail-row"><strong>Email:</strong><span>{{.Email}}</span></div>
<div class="detail-row"><strong>Fecha:</strong><span>{{.Date}}</span></div>
<div class="detail-row"><strong>Total:</strong><span>{{.Total}}</span></div>
<div class="detail-row"><strong>Método de Pago:</strong><span>{{.Payment}}</span></div>
<div class="detail-row"><strong>Método de Envío:</strong><span>{{.Shipping}}</span></div>
<div class="detail-row"><strong>Dirección:</strong><span>{{.Address}}</span></div>
<div class="detail-row"><strong>Estado actual:</strong><span class="current-status">{{.Status}}</span></div>
<div class="status-actions">
<h3>Cambiar Estado:</h3>
<div class="status-buttons">
{{- range .Buttons}}
<form method="post" action="{{.URL}}"><button type="submit">{{.Label}}</button></form>
{{- end}}
</div>
</div>
</div>`))

func orderDetail(o catalog.Order, opts Options, base string) (template.HTML, error) {
	view := orderDetailView{
		Customer: orDefault(o.CustomerName, "N/A"),
		Email:    orDefault(o.CustomerEmail, "N/A"),
		Date:     FormatDate(o.CreatedAt),
		Total:    money.Format(o.Total),
		Payment:  o.PaymentMethod,
		Shipping: o.ShippingMethod,
		Address:  orDefault(o.ShippingAddress, "No especificada"),
		Status:   StatusBadge(o.Status),
	}
	for _, st := range opts[statusField] {
		view.Buttons = append(view.Buttons, statusButton{
			Label: StatusBadge(st.Label),
			URL:   fmt.Sprintf("%s/status/%d/%s", base, o.ID, st.Value),
		})
	}
	var b strings.Builder
	if err := orderDetailTemplate.Execute(&b, view); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// OrdersScreen adds status changes to the order list.
type OrdersScreen struct {
	*Screen[catalog.Order]
	orders OrderService
}

func NewOrdersScreen(orders OrderService, lookups statusLookups, doc *modal.Document, deps Deps) *OrdersScreen {
	return &OrdersScreen{
		Screen: NewScreen(OrdersConfig(lookups), orders, doc, deps),
		orders: orders,
	}
}

// ChangeStatus moves an order to the given status and closes the detail
// modal. Unknown statuses are ignored.
func (s *OrdersScreen) ChangeStatus(ctx context.Context, orderID int64, statusID int64) error {
	s.mu.Lock()
	name, known := s.options.Label(statusField, strconv.FormatInt(statusID, 10))
	exists := false
	for _, o := range s.items {
		exists = exists || o.ID == orderID
	}
	s.mu.Unlock()
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !known {
		return nil
	}
	if !s.setBusy(true) {
		return ErrBusy
	}
	defer s.setBusy(false)

	if _, err := s.orders.UpdateStatus(ctx, orderID, statusID); err != nil {
		s.flash(FlashError, "Error al cambiar estado: "+publicMessage(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == orderID {
			s.items[i].Status = name
			s.items[i].StatusID = statusID
		}
	}
	s.flashLocked(FlashSuccess, fmt.Sprintf("Estado del pedido #%d actualizado a: %s", orderID, name))
	s.closeLocked()
	return nil
}
