package views

import (
	"html/template"

	"github.com/efarmaplus/storefront/internal/cart"
	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/pkg/money"
)

// CheckoutSuccess is shown once after a completed purchase.
const CheckoutSuccess = "¡Compra realizada con éxito! 🎉 Tu pedido será enviado pronto."

type CartLineView struct {
	ID        string
	Name      string
	Image     string
	Category  string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

type CartView struct {
	Lines      []CartLineView
	TotalItems int
	Total      string
	LoggedIn   bool
	Notice     string
}

// NewCartView snapshots the engine for rendering.
func NewCartView(e *cart.Engine, loggedIn bool) CartView {
	lines := e.Lines()
	v := CartView{
		Lines:      make([]CartLineView, 0, len(lines)),
		TotalItems: e.TotalItems(),
		Total:      money.Format(e.TotalPrice()),
		LoggedIn:   loggedIn,
	}
	for _, l := range lines {
		image := l.ImageURL
		if image == "" {
			image = catalog.PlaceholderImage
		}
		v.Lines = append(v.Lines, CartLineView{
			ID:        l.ID,
			Name:      l.Name,
			Image:     image,
			Category:  l.Category,
			Quantity:  l.Quantity,
			UnitPrice: money.Format(l.EffectiveUnitPrice()),
			Subtotal:  money.Format(l.Subtotal()),
		})
	}
	return v
}

var cartTmpl = template.Must(template.New("cart").Parse(`{{if .Notice}}<p class="alert alert-success">{{.Notice}}</p>{{end}}
{{if not .Lines}}<div class="cart-empty">
<h2>Tu carrito está vacío</h2>
<p>Agrega productos para comenzar tu compra</p>
<a class="btn btn-primary" href="/products">Ver Productos</a>
</div>{{else}}<div class="cart-page">
<h1>Carrito de Compras</h1>
<div class="cart-content">
<div class="cart-items">
{{range .Lines}}<div class="cart-item">
<img src="{{.Image}}" alt="{{.Name}}" class="cart-item-image">
<div class="cart-item-info"><h3>{{.Name}}</h3><p class="cart-item-category">{{.Category}}</p></div>
<div class="cart-item-quantity">
<form method="post" action="/cart/items/{{.ID}}/decrement" class="inline-form"><button type="submit">-</button></form>
<span>{{.Quantity}}</span>
<form method="post" action="/cart/items/{{.ID}}/increment" class="inline-form"><button type="submit">+</button></form>
</div>
<div class="cart-item-price"><span class="item-unit-price">{{.UnitPrice}} c/u</span><span class="item-total-price">{{.Subtotal}}</span></div>
<form method="post" action="/cart/items/{{.ID}}/remove" class="inline-form"><button type="submit" class="cart-item-remove">✕</button></form>
</div>
{{end}}</div>
<div class="cart-summary">
<h3>Resumen del Pedido</h3>
<div class="summary-row"><span>Productos:</span><span>{{.TotalItems}}</span></div>
<div class="summary-row"><span>Subtotal:</span><span>{{.Total}}</span></div>
<div class="summary-row"><span>Envío:</span><span>Gratis</span></div>
<div class="summary-row summary-total"><span>Total:</span><span>{{.Total}}</span></div>
<div class="summary-actions">
{{if .LoggedIn}}<form method="post" action="/cart/checkout"><button type="submit" class="btn btn-primary">Finalizar Compra</button></form>
{{else}}<a class="btn btn-primary" href="/login?next=/cart">Proceder al Pago</a>
{{end}}<a class="btn btn-outline" href="/products">Seguir Comprando</a>
<form method="post" action="/cart/clear"><button type="submit" class="clear-cart">Vaciar Carrito</button></form>
</div>
</div>
</div>
</div>{{end}}
`))

func CartBody(v CartView) (template.HTML, error) { return Fragment(cartTmpl, v) }
