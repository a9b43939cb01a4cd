package variant

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolvePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mrp         string
		discount    DiscountRule
		wantSelling string
		wantPercent string
		wantClamped bool
	}{
		{
			name:        "percent discount",
			mrp:         "1000",
			discount:    PercentOff(dec("20")),
			wantSelling: "800",
			wantPercent: "20",
		},
		{
			name:        "percent passes value through",
			mrp:         "999.99",
			discount:    PercentOff(dec("12.5")),
			wantSelling: "874.99",
			wantPercent: "12.5",
		},
		{
			name:        "zero percent",
			mrp:         "5000",
			discount:    PercentOff(decimal.Zero),
			wantSelling: "5000",
			wantPercent: "0",
		},
		{
			name:        "percent above hundred clamps",
			mrp:         "1000",
			discount:    PercentOff(dec("150")),
			wantSelling: "0",
			wantPercent: "150",
			wantClamped: true,
		},
		{
			name:        "fixed discount",
			mrp:         "1000",
			discount:    AmountOff(dec("250")),
			wantSelling: "750",
			wantPercent: "25",
		},
		{
			name:        "fixed percent is rounded",
			mrp:         "300",
			discount:    AmountOff(dec("100")),
			wantSelling: "200",
			wantPercent: "33",
		},
		{
			name:        "fixed percent rounds half up",
			mrp:         "200",
			discount:    AmountOff(dec("1")),
			wantSelling: "199",
			wantPercent: "1",
		},
		{
			name:        "fixed above mrp clamps",
			mrp:         "1000",
			discount:    AmountOff(dec("1500")),
			wantSelling: "0",
			wantPercent: "100",
			wantClamped: true,
		},
		{
			name:        "zero mrp does not divide",
			mrp:         "0",
			discount:    AmountOff(dec("50")),
			wantSelling: "0",
			wantPercent: "0",
			wantClamped: true,
		},
		{
			name:        "unknown type is no discount",
			mrp:         "100",
			discount:    DiscountRule{Type: "BOGO", Value: dec("10")},
			wantSelling: "100",
			wantPercent: "0",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ResolvePrice(dec(tc.mrp), tc.discount)
			if !got.SellingPrice.Equal(dec(tc.wantSelling)) {
				t.Fatalf("selling price = %s, want %s", got.SellingPrice, tc.wantSelling)
			}
			if !got.DiscountPercent.Equal(dec(tc.wantPercent)) {
				t.Fatalf("discount percent = %s, want %s", got.DiscountPercent, tc.wantPercent)
			}
			if got.Clamped != tc.wantClamped {
				t.Fatalf("clamped = %v, want %v", got.Clamped, tc.wantClamped)
			}
			if got.SellingPrice.IsNegative() {
				t.Fatalf("selling price must never be negative, got %s", got.SellingPrice)
			}
		})
	}
}

func TestResolvePrice_Idempotent(t *testing.T) {
	t.Parallel()

	discount := PercentOff(dec("7.5"))
	first := ResolvePrice(dec("1234.56"), discount)
	second := ResolvePrice(dec("1234.56"), discount)
	if !first.SellingPrice.Equal(second.SellingPrice) || !first.DiscountPercent.Equal(second.DiscountPercent) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestResolvePrice_RepeatedEditsDoNotDrift(t *testing.T) {
	t.Parallel()

	v := NewDraft("YEL-14K", nil)
	for i := 0; i < 100; i++ {
		v.Reprice(dec("0.1").Mul(decimal.NewFromInt(int64(i+1))), PercentOff(dec("10")))
	}
	if got := FormatPrice(v.Price.SellingPrice); got != "9.00" {
		t.Fatalf("expected 9.00 after repeated edits, got %s", got)
	}
}

func TestDiscountRule_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rule    DiscountRule
		wantErr bool
	}{
		{name: "percent within range", rule: PercentOff(dec("100"))},
		{name: "fixed above hundred", rule: AmountOff(dec("2500"))},
		{name: "percent above hundred", rule: PercentOff(dec("100.01")), wantErr: true},
		{name: "negative value", rule: AmountOff(dec("-1")), wantErr: true},
		{name: "unknown type", rule: DiscountRule{Type: "BOGO"}, wantErr: true},
		{name: "percent with three decimals", rule: PercentOff(dec("12.345")), wantErr: true},
		{name: "percent with trailing zero", rule: PercentOff(dec("12.340"))},
		{name: "fixed too large to store", rule: AmountOff(dec("1000000000000")), wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.rule.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidDiscount) {
					t.Fatalf("expected ErrInvalidDiscount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "zero", amount: "0"},
		{name: "two decimals", amount: "1999.99"},
		{name: "largest storable", amount: "999999999999.99"},
		{name: "negative", amount: "-0.01", wantErr: true},
		{name: "three decimals", amount: "1000.005", wantErr: true},
		{name: "too large", amount: "1000000000000", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateAmount(dec(tc.amount))
			if tc.wantErr != errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("ValidateAmount(%s) = %v, wantErr %v", tc.amount, err, tc.wantErr)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	if got := FormatPrice(dec("4500")); got != "4500.00" {
		t.Fatalf("expected 4500.00, got %s", got)
	}
}
