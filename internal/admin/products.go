package admin

import (
	"context"
	"strconv"
	"strings"

	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/internal/form"
	"github.com/efarmaplus/storefront/internal/media"
	"github.com/efarmaplus/storefront/internal/modal"
	"github.com/efarmaplus/storefront/internal/table"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type productLookups interface {
	Categories(ctx context.Context) ([]catalog.Lookup, error)
	Laboratories(ctx context.Context) ([]catalog.Lookup, error)
}

// ProductsConfig is the product management screen.
func ProductsConfig(lookups productLookups) Config[catalog.Product] {
	return Config[catalog.Product]{
		Name:    "products",
		Title:   "Gestión de Productos",
		Noun:    "Producto",
		Columns: []string{"ID", "Nombre", "Categoría", "Precio", "Stock"},
		Size:    modal.SizeLarge,
		ID:      func(p catalog.Product) int64 { return p.ID },
		Row: func(p catalog.Product) table.Row {
			return table.Row{p.ID, p.Name, p.Category, money.Format(p.Price), p.Stock}
		},
		Options: func(ctx context.Context) (Options, error) {
			cats, catErr := lookups.Categories(ctx)
			labs, labErr := lookups.Laboratories(ctx)
			return Options{
				"categoryId":   lookupOptions(cats),
				"laboratoryId": lookupOptions(labs),
			}, multierr.Combine(catErr, labErr)
		},
		Fields:     productFields,
		Values:     productValues,
		FromValues: productFromValues,
		Upload: &Upload[catalog.Product]{
			Field: "image",
			Kind:  media.KindProduct,
			Apply: func(p *catalog.Product, url string) { p.ImageURL = url },
		},
	}
}

func productFields(opts Options) []form.Field {
	return []form.Field{
		form.Text{Base: form.Base{Name: "name", Label: "Nombre del Producto", Required: true, Placeholder: "Ej: Paracetamol 500mg"}},
		form.Select{Base: form.Base{Name: "categoryId", Label: "Categoría", Required: true}, Options: opts["categoryId"]},
		form.Select{Base: form.Base{Name: "laboratoryId", Label: "Laboratorio/Marca"}, Options: opts["laboratoryId"]},
		form.Number{Base: form.Base{Name: "price", Label: "Precio", Required: true, Min: form.Bound(0), Placeholder: "0"}},
		form.Number{Base: form.Base{Name: "stock", Label: "Stock", Required: true, Min: form.Bound(0), Placeholder: "0"}},
		form.Textarea{Base: form.Base{Name: "description", Label: "Descripción", Placeholder: "Descripción del producto..."}, Rows: 4},
		form.File{Base: form.Base{Name: "image", Label: "Imagen del Producto"}, Accept: "image/*"},
	}
}

func productValues(p catalog.Product) form.Values {
	return form.Values{
		"name":         p.Name,
		"categoryId":   idString(p.CategoryID),
		"laboratoryId": idString(p.LaboratoryID),
		"price":        p.Price.String(),
		"stock":        strconv.Itoa(p.Stock),
		"description":  p.Description,
		"imagePreview": p.ImageURL,
	}
}

func productFromValues(v form.Values, p catalog.Product) (catalog.Product, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(v.String("price")))
	if err != nil {
		return p, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "precio inválido")
	}
	stock, err := strconv.Atoi(strings.TrimSpace(v.String("stock")))
	if err != nil {
		return p, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "stock inválido")
	}
	categoryID, err := parseID(v.String("categoryId"))
	if err != nil || categoryID == 0 {
		return p, pkgerrors.New(pkgerrors.CodeValidation, "La categoría es obligatoria")
	}
	laboratoryID, err := parseID(v.String("laboratoryId"))
	if err != nil {
		return p, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "laboratorio inválido")
	}

	p.Name = strings.TrimSpace(v.String("name"))
	p.Price = price
	p.Stock = stock
	p.CategoryID = categoryID
	p.LaboratoryID = laboratoryID
	p.Description = v.String("description")
	return p, nil
}

func idString(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
