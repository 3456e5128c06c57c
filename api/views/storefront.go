package views

import (
	"html/template"
	"strconv"

	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/pkg/money"
)

// ProductCard is the display form of a catalog product.
type ProductCard struct {
	ID            int64
	Name          string
	Description   string
	Image         string
	Category      string
	Laboratory    string
	Price         string
	OriginalPrice string
	Discount      string
	Stock         int
	Prescription  bool
}

func NewProductCard(p catalog.Product) ProductCard {
	card := ProductCard{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Image:        p.ImageURL,
		Category:     p.Category,
		Laboratory:   p.Laboratory,
		Price:        money.Format(p.CartItem().EffectiveUnitPrice()),
		Stock:        p.Stock,
		Prescription: p.RequiresPrescription,
	}
	if card.Image == "" {
		card.Image = catalog.PlaceholderImage
	}
	if p.DiscountPercent.IsPositive() {
		card.OriginalPrice = money.Format(p.Price)
		card.Discount = money.Percent(p.DiscountPercent)
	}
	return card
}

func NewProductCards(products []catalog.Product) []ProductCard {
	out := make([]ProductCard, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductCard(p))
	}
	return out
}

// CategoryLink is a category filter entry.
type CategoryLink struct {
	Name   string
	Icon   string
	Active bool
}

// HomeCategories are the fixed shortcuts on the landing page.
var HomeCategories = []CategoryLink{
	{Name: "Medicamentos", Icon: "💊"},
	{Name: "Vitaminas", Icon: "🧪"},
	{Name: "Cuidado Personal", Icon: "🧴"},
	{Name: "Dermatología", Icon: "✨"},
}

type HomeView struct {
	Categories []CategoryLink
	Featured   []ProductCard
	ReturnURL  string
	Error      string
}

type ProductListView struct {
	Heading    string
	Count      string
	Query      string
	Category   string
	Categories []CategoryLink
	Products   []ProductCard
	ReturnURL  string
	Error      string
}

type ProductDetailView struct {
	Product   ProductCard
	Quantity  int
	ReturnURL string
}

// ProductCount renders "1 producto" or "N productos".
func ProductCount(n int) string {
	if n == 1 {
		return "1 producto"
	}
	return strconv.Itoa(n) + " productos"
}

// cardTemplate expects a cardAction.
const cardTemplate = `{{define "card"}}<article class="product-card">
{{with .Card}}{{if .Discount}}<div class="discount-badge">-{{.Discount}}</div>{{end}}
<a class="product-image" href="/products/{{.ID}}"><img src="{{.Image}}" alt="{{.Name}}"></a>
<div class="product-info">
<p class="product-category">{{.Category}}</p>
<h3 class="product-name"><a href="/products/{{.ID}}">{{.Name}}</a></h3>
<div class="product-pricing">{{if .OriginalPrice}}<span class="price-original">{{.OriginalPrice}}</span>{{end}}<span class="price-main">{{.Price}}</span></div>{{end}}
<form method="post" action="/cart/add">
<input type="hidden" name="productId" value="{{.Card.ID}}">
<input type="hidden" name="return" value="{{.Return}}">
<button type="submit" class="btn btn-primary"{{if le .Card.Stock 0}} disabled{{end}}>Agregar al Carrito</button>
</form>
</div>
</article>{{end}}`

type cardAction struct {
	Card   ProductCard
	Return string
}

var viewFuncs = template.FuncMap{
	"pair": func(c ProductCard, ret string) cardAction { return cardAction{Card: c, Return: ret} },
}

var homeTmpl = template.Must(template.New("home").Funcs(viewFuncs).Parse(cardTemplate + `<section class="hero">
<h1>Bienvenido a eFarmaPlus</h1>
<p>Tu farmacia online de confianza. Productos de calidad para tu salud y bienestar.</p>
<a class="btn btn-primary" href="/products">Ver Productos</a>
</section>
<section class="categories">
<h2>Categorías</h2>
<div class="category-grid">
{{range .Categories}}<a class="category-card" href="/products?category={{.Name}}"><span class="category-icon">{{.Icon}}</span><h3>{{.Name}}</h3></a>
{{end}}</div>
</section>
<section class="featured">
<h2>Productos Destacados</h2>
{{if .Error}}<p class="alert alert-error">{{.Error}}</p>{{end}}
<div class="product-grid">
{{$ret := .ReturnURL}}{{range .Featured}}{{template "card" (pair . $ret)}}
{{end}}</div>
<a class="btn btn-outline" href="/products">Ver Todos los Productos</a>
</section>
`))

var listTmpl = template.Must(template.New("list").Funcs(viewFuncs).Parse(cardTemplate + `<div class="products-page">
<aside class="filters-sidebar">
<h3>Categorías</h3>
<div class="category-filters">
{{range .Categories}}<a class="filter-button{{if .Active}} active{{end}}" href="/products?category={{.Name}}">{{.Name}}</a>
{{end}}</div>
</aside>
<section class="products-main">
<form method="get" action="/products" class="search-form">
{{if .Category}}<input type="hidden" name="category" value="{{.Category}}">{{end}}
<input type="search" name="q" value="{{.Query}}" placeholder="Buscar productos">
<button type="submit">Buscar</button>
</form>
<div class="products-header">
<h1>{{.Heading}}</h1>
<p class="products-count">{{.Count}}</p>
</div>
{{if .Error}}<p class="alert alert-error">{{.Error}}</p>{{end}}
<div class="product-grid">
{{$ret := .ReturnURL}}{{range .Products}}{{template "card" (pair . $ret)}}
{{else}}<p class="empty">No se encontraron productos</p>
{{end}}</div>
</section>
</div>
`))

var detailTmpl = template.Must(template.New("detail").Parse(`<div class="product-detail">
<a class="back-button" href="/products">← Volver</a>
<div class="product-detail-content">
<div class="product-detail-image">
<img src="{{.Product.Image}}" alt="{{.Product.Name}}">
{{if .Product.Discount}}<span class="discount-badge">-{{.Product.Discount}}</span>{{end}}
</div>
<div class="product-detail-info">
<span class="product-category">{{.Product.Category}}</span>
<h1 class="product-title">{{.Product.Name}}</h1>
{{if .Product.Laboratory}}<p class="product-laboratory">{{.Product.Laboratory}}</p>{{end}}
<div class="product-price">{{if .Product.OriginalPrice}}<span class="price-original">{{.Product.OriginalPrice}}</span>{{end}}<span class="price-final">{{.Product.Price}}</span></div>
<p class="product-description">{{.Product.Description}}</p>
{{if .Product.Prescription}}<p class="prescription">Requiere receta médica</p>{{end}}
<div class="product-stock">{{if gt .Product.Stock 0}}<span class="in-stock">En stock ({{.Product.Stock}} unidades)</span>{{else}}<span class="out-of-stock">Agotado</span>{{end}}</div>
<form method="post" action="/cart/add" class="quantity-selector">
<input type="hidden" name="productId" value="{{.Product.ID}}">
<input type="hidden" name="return" value="/cart">
<label for="quantity">Cantidad:</label>
<input type="number" id="quantity" name="quantity" value="{{.Quantity}}" min="1"{{if gt .Product.Stock 0}} max="{{.Product.Stock}}"{{end}}>
<button type="submit" class="btn btn-primary"{{if le .Product.Stock 0}} disabled{{end}}>Agregar al Carrito</button>
</form>
</div>
</div>
</div>
`))

func HomeBody(v HomeView) (template.HTML, error)                   { return Fragment(homeTmpl, v) }
func ProductListBody(v ProductListView) (template.HTML, error)     { return Fragment(listTmpl, v) }
func ProductDetailBody(v ProductDetailView) (template.HTML, error) { return Fragment(detailTmpl, v) }
