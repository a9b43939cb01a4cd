package variant

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// PriceScale is the number of decimal places a selling price is reported with.
const PriceScale = 2

var (
	hundred = decimal.NewFromInt(100)
	// maxAmount is the first value a stored amount (NUMERIC(14,2)) cannot hold.
	maxAmount = decimal.New(1, 12)
)

type DiscountRule struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

func PercentOff(value decimal.Decimal) DiscountRule {
	return DiscountRule{Type: DiscountPercent, Value: value}
}

func AmountOff(value decimal.Decimal) DiscountRule {
	return DiscountRule{Type: DiscountFixed, Value: value}
}

// Validate is meant for input boundaries. ResolvePrice accepts any rule and
// clamps instead.
func (d DiscountRule) Validate() error {
	switch d.Type {
	case DiscountPercent, DiscountFixed:
	default:
		return fmt.Errorf("%w: unknown discount type %q", ErrInvalidDiscount, d.Type)
	}
	if err := ValidateAmount(d.Value); err != nil {
		return fmt.Errorf("%w: discount value %v", ErrInvalidDiscount, err)
	}
	if d.Type == DiscountPercent && d.Value.GreaterThan(hundred) {
		return fmt.Errorf("%w: percent discount cannot exceed 100", ErrInvalidDiscount)
	}
	return nil
}

// ValidateAmount rejects amounts that cannot be stored exactly: negative
// values, more than PriceScale decimal places, or 1e12 and above.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case amount.IsNegative():
		return fmt.Errorf("%w: must be zero or positive", ErrInvalidAmount)
	case !amount.Equal(amount.Round(PriceScale)):
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, PriceScale)
	case amount.GreaterThanOrEqual(maxAmount):
		return fmt.Errorf("%w: must be below %s", ErrInvalidAmount, maxAmount.String())
	}
	return nil
}

type Price struct {
	MRP          decimal.Decimal `json:"mrp"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

type PriceResult struct {
	SellingPrice    decimal.Decimal `json:"selling_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	// Clamped is set when the discount exceeded the MRP and the selling
	// price was floored at zero.
	Clamped bool `json:"clamped"`
}

// ResolvePrice computes the selling price for an MRP and a discount rule.
// Unknown discount types are treated as no discount.
func ResolvePrice(mrp decimal.Decimal, discount DiscountRule) PriceResult {
	var (
		selling decimal.Decimal
		percent decimal.Decimal
	)

	switch discount.Type {
	case DiscountPercent:
		selling = mrp.Sub(mrp.Mul(discount.Value).Div(hundred))
		percent = discount.Value
	case DiscountFixed:
		selling = mrp.Sub(discount.Value)
	default:
		selling = mrp
	}

	clamped := false
	if selling.IsNegative() {
		selling = decimal.Zero
		clamped = true
	}
	selling = selling.Round(PriceScale)

	if discount.Type == DiscountFixed {
		percent = decimal.Zero
		if mrp.IsPositive() {
			percent = mrp.Sub(selling).Div(mrp).Mul(hundred).Round(0)
		}
	}

	return PriceResult{
		SellingPrice:    selling,
		DiscountPercent: percent,
		Clamped:         clamped,
	}
}

// FormatPrice renders a price the way it is shown to shoppers.
func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(PriceScale)
}
