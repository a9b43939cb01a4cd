package db

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/gemcart/internal/variant"
)

func TestRowToVariant(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	v, err := rowToVariant(variantRow{
		ID:            id,
		SKU:           "YEL-14K",
		Combination:   []byte(`[{"attribute_id":1,"value_id":101},{"attribute_id":2,"value_id":201}]`),
		Stock:         2,
		MRP:           "5000.00",
		DiscountType:  "PERCENT",
		DiscountValue: "10.00",
	})
	if err != nil {
		t.Fatalf("rowToVariant: %v", err)
	}

	if v.ID != id || v.SKU != "YEL-14K" || !v.InStock {
		t.Fatalf("unexpected variant %+v", v)
	}
	if len(v.Combination) != 2 || v.Combination[1] != (variant.Pick{AttributeID: 2, ValueID: 201}) {
		t.Fatalf("unexpected combination %+v", v.Combination)
	}
	if !v.Price.SellingPrice.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("expected selling price recomputed to 4500, got %s", v.Price.SellingPrice)
	}
}

func TestRowToVariant_InvalidData(t *testing.T) {
	t.Parallel()

	base := variantRow{Combination: []byte(`[]`), MRP: "1", DiscountType: "FIXED", DiscountValue: "0"}

	badJSON := base
	badJSON.Combination = []byte(`{`)
	if _, err := rowToVariant(badJSON); err == nil {
		t.Fatalf("expected combination decode error")
	}

	badMRP := base
	badMRP.MRP = "abc"
	if _, err := rowToVariant(badMRP); err == nil {
		t.Fatalf("expected mrp parse error")
	}
}

func TestIntToInt32(t *testing.T) {
	t.Parallel()

	if _, err := intToInt32(math.MaxInt32+1, "stock"); err == nil {
		t.Fatalf("expected range error")
	}
	if got, err := intToInt32(12, "stock"); err != nil || got != 12 {
		t.Fatalf("intToInt32() = %d, %v", got, err)
	}
}

func TestAssignVariantIDs(t *testing.T) {
	t.Parallel()

	goldID, silverID, foreignID := uuid.New(), uuid.New(), uuid.New()
	stored := []storedVariant{{ID: goldID, SKU: "WHI"}, {ID: silverID, SKU: "WHI-2"}}

	renamed := variant.NewDraft("WG-01", nil)
	renamed.ID = goldID
	bySKU := variant.NewDraft("WHI-2", nil)
	reusesRenamedSKU := variant.NewDraft("WHI", nil)
	foreign := variant.NewDraft("ROS", nil)
	foreign.ID = foreignID

	fresh := []uuid.UUID{uuid.New(), uuid.New()}
	next := 0
	newID := func() uuid.UUID {
		id := fresh[next]
		next++
		return id
	}

	incoming := []variant.Variant{renamed, bySKU, reusesRenamedSKU, foreign}
	out := assignVariantIDs(stored, incoming, newID)

	want := []uuid.UUID{goldID, silverID, fresh[0], fresh[1]}
	for i, v := range out {
		if v.ID != want[i] {
			t.Fatalf("%s: expected id %s, got %s", v.SKU, want[i], v.ID)
		}
	}
	if out[0].SKU != "WG-01" {
		t.Fatalf("expected kept id to carry the new sku, got %s", out[0].SKU)
	}
	if incoming[1].ID != uuid.Nil || incoming[3].ID != foreignID {
		t.Fatalf("input must not be modified")
	}
}

func TestAssignVariantIDs_DuplicateIDClaimsOnce(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	first := variant.NewDraft("A", nil)
	first.ID = id
	second := variant.NewDraft("B", nil)
	second.ID = id

	out := assignVariantIDs([]storedVariant{{ID: id, SKU: "A"}}, []variant.Variant{first, second}, uuid.New)
	if out[0].ID != id || out[1].ID == id || out[1].ID == uuid.Nil {
		t.Fatalf("expected one row per id, got %s and %s", out[0].ID, out[1].ID)
	}
}
