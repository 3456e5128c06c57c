package catalog

import "context"

// Lookup is an id/name pair used to fill select options.
type Lookup struct {
	ID   int64
	Name string
}

var (
	defaultRoles = []Lookup{
		{ID: 1, Name: RoleUser},
		{ID: 2, Name: RoleAdmin},
	}
	defaultStatuses = []Lookup{
		{ID: 1, Name: "Pendiente"},
		{ID: 2, Name: "Procesando"},
		{ID: 3, Name: "En camino"},
		{ID: 4, Name: "Entregado"},
	}
)

// Lookups reads the small reference collections of the backend.
type Lookups struct {
	client *Client
}

func NewLookups(client *Client) *Lookups {
	return &Lookups{client: client}
}

func (l *Lookups) Categories(ctx context.Context) ([]Lookup, error) {
	return l.list(ctx, "/categorias")
}

func (l *Lookups) Laboratories(ctx context.Context) ([]Lookup, error) {
	return l.list(ctx, "/marcas")
}

func (l *Lookups) PaymentMethods(ctx context.Context) ([]Lookup, error) {
	return l.list(ctx, "/metodos-pago")
}

func (l *Lookups) ShippingMethods(ctx context.Context) ([]Lookup, error) {
	return l.list(ctx, "/metodos-envio")
}

// Roles falls back to the two built-in roles when the backend fails.
func (l *Lookups) Roles(ctx context.Context) []Lookup {
	return l.withFallback(ctx, "/roles", defaultRoles)
}

// Statuses falls back to the standard order lifecycle when the backend fails.
func (l *Lookups) Statuses(ctx context.Context) []Lookup {
	return l.withFallback(ctx, "/estados", defaultStatuses)
}

func (l *Lookups) withFallback(ctx context.Context, path string, fallback []Lookup) []Lookup {
	items, err := l.list(ctx, path)
	if err != nil {
		l.client.logg.Warn(l.client.logg.WithFields(ctx, map[string]any{"path": path, "error": err.Error()}), "lookup failed, using defaults")
		out := make([]Lookup, len(fallback))
		copy(out, fallback)
		return out
	}
	return items
}

func (l *Lookups) list(ctx context.Context, path string) ([]Lookup, error) {
	var wire []ref
	if err := l.client.Get(ctx, path, &wire); err != nil {
		return nil, err
	}
	out := make([]Lookup, 0, len(wire))
	for _, w := range wire {
		r := w
		out = append(out, Lookup{ID: r.ID, Name: r.name("")})
	}
	return out, nil
}
