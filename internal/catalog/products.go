package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/efarmaplus/storefront/internal/cart"
	"github.com/shopspring/decimal"
)

const (
	PlaceholderImage  = "https://via.placeholder.com/300"
	UncategorizedName = "Sin categoría"
	AllCategories     = "Todas"
	featuredCount     = 6
)

// Product is a catalog item as the storefront and admin see it.
type Product struct {
	ID                   int64
	Name                 string
	Description          string
	Price                decimal.Decimal
	Stock                int
	Category             string
	CategoryID           int64
	Laboratory           string
	LaboratoryID         int64
	DiscountPercent      decimal.Decimal
	ImageURL             string
	RequiresPrescription bool
}

// CartItem snapshots the product for the cart.
func (p Product) CartItem() cart.Item {
	return cart.Item{
		ID:              strconv.FormatInt(p.ID, 10),
		Name:            p.Name,
		ImageURL:        p.ImageURL,
		Category:        p.Category,
		Laboratory:      p.Laboratory,
		Stock:           p.Stock,
		UnitPrice:       p.Price,
		DiscountPercent: p.DiscountPercent,
	}
}

// number marshals a decimal as a bare JSON number.
type number struct{ decimal.Decimal }

func (n number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

type imageWire struct {
	URL      string `json:"url"`
	Producto *ref   `json:"producto,omitempty"`
}

type productWire struct {
	ID             int64       `json:"id,omitempty"`
	Nombre         string      `json:"nombre"`
	Descripcion    string      `json:"descripcion"`
	Precio         number      `json:"precio"`
	Stock          int         `json:"stock"`
	RequiereReceta bool        `json:"requiereReceta"`
	Categoria      *ref        `json:"categoria"`
	Laboratorio    *ref        `json:"laboratorio"`
	Imagenes       []imageWire `json:"imagenes"`
}

func productFromWire(w productWire) Product {
	image := PlaceholderImage
	if len(w.Imagenes) > 0 && w.Imagenes[0].URL != "" {
		image = w.Imagenes[0].URL
	}
	return Product{
		ID:                   w.ID,
		Name:                 w.Nombre,
		Description:          w.Descripcion,
		Price:                w.Precio.Decimal,
		Stock:                w.Stock,
		Category:             w.Categoria.name(UncategorizedName),
		CategoryID:           w.Categoria.id(),
		Laboratory:           w.Laboratorio.name(""),
		LaboratoryID:         w.Laboratorio.id(),
		DiscountPercent:      decimal.Zero,
		ImageURL:             image,
		RequiresPrescription: w.RequiereReceta,
	}
}

func productToWire(p Product) productWire {
	return productWire{
		Nombre:         p.Name,
		Descripcion:    p.Description,
		Precio:         number{p.Price},
		Stock:          p.Stock,
		RequiereReceta: p.RequiresPrescription,
		Categoria:      refTo(p.CategoryID),
		Laboratorio:    refTo(p.LaboratoryID),
		Imagenes:       []imageWire{},
	}
}

// Products is the /productos collection. A non-empty ImageURL on Create or
// Update is attached through /imagenes after the product is saved.
type Products struct {
	*Service[Product, productWire]
	client *Client
}

func NewProducts(client *Client) *Products {
	return &Products{
		Service: NewService(client, "/productos", productFromWire, productToWire),
		client:  client,
	}
}

func (p *Products) Create(ctx context.Context, v Product) (Product, error) {
	created, err := p.Service.Create(ctx, v)
	if err != nil {
		return Product{}, err
	}
	if v.ImageURL != "" && v.ImageURL != PlaceholderImage {
		if p.AttachImage(ctx, created.ID, v.ImageURL) {
			created.ImageURL = v.ImageURL
		}
	}
	return created, nil
}

func (p *Products) Update(ctx context.Context, id int64, v Product) (Product, error) {
	updated, err := p.Service.Update(ctx, id, v)
	if err != nil {
		return Product{}, err
	}
	if v.ImageURL != "" && v.ImageURL != PlaceholderImage && v.ImageURL != updated.ImageURL {
		if p.AttachImage(ctx, id, v.ImageURL) {
			updated.ImageURL = v.ImageURL
		}
	}
	return updated, nil
}

// AttachImage associates an uploaded image with a product. Failures are
// logged and reported as false so the product save still stands.
func (p *Products) AttachImage(ctx context.Context, productID int64, url string) bool {
	body := imageWire{URL: url, Producto: &ref{ID: productID}}
	if err := p.client.Post(ctx, "/imagenes", body, nil); err != nil {
		p.client.logg.Error(p.client.logg.WithField(ctx, "product_id", productID), "attach product image", err)
		return false
	}
	return true
}

// FilterByCategory keeps the products in the named category. The
// AllCategories name keeps everything.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" || strings.EqualFold(category, AllCategories) {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Search matches term against name, description and category.
func Search(products []Product, term string) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns the first products shown on the home page.
func Featured(products []Product) []Product {
	if len(products) > featuredCount {
		return products[:featuredCount]
	}
	return products
}

// Categories lists the distinct category names in display order.
func Categories(products []Product) []string {
	seen := map[string]bool{}
	out := []string{AllCategories}
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
