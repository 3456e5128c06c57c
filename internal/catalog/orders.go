package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	defaultOrderStatus = "Pendiente"
	unspecified        = "No especificado"
)

// Order is a sale recorded by the backend.
type Order struct {
	ID              int64
	CustomerID      int64
	CustomerName    string
	CustomerEmail   string
	CreatedAt       string
	Total           decimal.Decimal
	Status          string
	StatusID        int64
	PaymentMethod   string
	PaymentID       int64
	ShippingMethod  string
	ShippingID      int64
	ShippingAddress string
}

type customerWire struct {
	ID       int64  `json:"id,omitempty"`
	Contacto string `json:"contacto,omitempty"`
	Correo   string `json:"correo,omitempty"`
}

type orderWire struct {
	ID             int64         `json:"id,omitempty"`
	Usuario        *customerWire `json:"usuario"`
	FechaCreacion  string        `json:"fechaCreacion,omitempty"`
	Total          number        `json:"total"`
	Estado         *ref          `json:"estado"`
	MetodoPago     *ref          `json:"metodoPago"`
	MetodoEnvio    *ref          `json:"metodoEnvio"`
	DireccionEnvio string        `json:"direccionEnvio"`
}

func orderFromWire(w orderWire) Order {
	o := Order{
		ID:              w.ID,
		CustomerName:    "Cliente",
		CreatedAt:       w.FechaCreacion,
		Total:           w.Total.Decimal,
		Status:          w.Estado.name(defaultOrderStatus),
		StatusID:        w.Estado.id(),
		PaymentMethod:   w.MetodoPago.name(unspecified),
		PaymentID:       w.MetodoPago.id(),
		ShippingMethod:  w.MetodoEnvio.name(unspecified),
		ShippingID:      w.MetodoEnvio.id(),
		ShippingAddress: w.DireccionEnvio,
	}
	if w.Usuario != nil {
		o.CustomerID = w.Usuario.ID
		o.CustomerEmail = w.Usuario.Correo
		if w.Usuario.Contacto != "" {
			o.CustomerName = w.Usuario.Contacto
		}
	}
	return o
}

func orderToWire(o Order) orderWire {
	w := orderWire{
		Total:          number{o.Total},
		Estado:         refTo(o.StatusID),
		MetodoPago:     refTo(o.PaymentID),
		MetodoEnvio:    refTo(o.ShippingID),
		DireccionEnvio: o.ShippingAddress,
	}
	if o.CustomerID > 0 {
		w.Usuario = &customerWire{ID: o.CustomerID}
	}
	return w
}

// Orders is the /ventas collection.
type Orders struct {
	*Service[Order, orderWire]
	client *Client
}

func NewOrders(client *Client) *Orders {
	return &Orders{
		Service: NewService(client, "/ventas", orderFromWire, orderToWire),
		client:  client,
	}
}

// UpdateStatus patches the order's estado. The current record is fetched and
// sent back whole so the backend keeps every other attribute.
func (o *Orders) UpdateStatus(ctx context.Context, id int64, statusID int64) (Order, error) {
	path := fmt.Sprintf("/ventas/%d", id)

	var current map[string]any
	if err := o.client.Get(ctx, path, &current); err != nil {
		return Order{}, err
	}
	if current == nil {
		current = map[string]any{}
	}
	current["estado"] = map[string]any{"id": statusID}

	var updated orderWire
	if err := o.client.Patch(ctx, path, current, &updated); err != nil {
		return Order{}, err
	}
	return orderFromWire(updated), nil
}

// Revenue sums order totals.
func Revenue(orders []Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(o.Total)
	}
	return sum
}
