package cart

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Item is the catalog snapshot added to a cart.
type Item struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ImageURL        string          `json:"image,omitempty"`
	Category        string          `json:"category,omitempty"`
	Laboratory      string          `json:"laboratory,omitempty"`
	Stock           int             `json:"stock"`
	UnitPrice       decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount"`
}

// Line is one distinct item in the cart with its quantity.
type Line struct {
	Item
	Quantity int `json:"quantity"`
}

// EffectiveUnitPrice applies the discount percentage when it lies in
// (0, 100]; any other discount is ignored. The value is not rounded.
func (i Item) EffectiveUnitPrice() decimal.Decimal {
	if !i.discountInRange() || !i.DiscountPercent.IsPositive() {
		return i.UnitPrice
	}
	factor := decimal.NewFromInt(1).Sub(i.DiscountPercent.Div(hundred))
	return i.UnitPrice.Mul(factor)
}

// Subtotal is the effective unit price times the quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (i Item) discountInRange() bool {
	return !i.DiscountPercent.IsNegative() && i.DiscountPercent.LessThanOrEqual(hundred)
}

func (l Line) valid() bool {
	return l.ID != "" && l.Quantity >= 1 && !l.UnitPrice.IsNegative() && l.discountInRange()
}
