package variant

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is a purchasable SKU-level instance of a product.
//
// Price.SellingPrice and InStock are derived. Use Reprice and SetStock to
// change their inputs so the derived fields never drift.
type Variant struct {
	ID          uuid.UUID    `json:"id"`
	SKU         string       `json:"sku"`
	Combination Combination  `json:"combination"`
	Stock       int          `json:"stock"`
	Price       Price        `json:"price"`
	Discount    DiscountRule `json:"discount"`
	InStock     bool         `json:"in_stock"`
}

func NewDraft(sku string, combination Combination) Variant {
	return Variant{
		SKU:         sku,
		Combination: combination,
		Stock:       0,
		Price:       Price{MRP: decimal.Zero, SellingPrice: decimal.Zero},
		Discount:    DiscountRule{Type: DiscountPercent, Value: decimal.Zero},
		InStock:     false,
	}
}

// Persisted reports whether a backend identity has been assigned.
func (v Variant) Persisted() bool {
	return v.ID != uuid.Nil
}

// Reprice sets the MRP and discount and recomputes the selling price.
func (v *Variant) Reprice(mrp decimal.Decimal, discount DiscountRule) PriceResult {
	result := ResolvePrice(mrp, discount)
	v.Price = Price{MRP: mrp, SellingPrice: result.SellingPrice}
	v.Discount = discount
	return result
}

func (v *Variant) SetStock(stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	v.Stock = stock
	v.InStock = stock > 0
	return nil
}

// Normalize recomputes the derived fields from the stored inputs. Records
// read back from storage or decoded from requests go through it.
func (v *Variant) Normalize() {
	v.Price.SellingPrice = ResolvePrice(v.Price.MRP, v.Discount).SellingPrice
	v.InStock = v.Stock > 0
}

func FindBySKU(variants []Variant, sku string) (int, bool) {
	for i := range variants {
		if variants[i].SKU == sku {
			return i, true
		}
	}
	return -1, false
}
