package handlers

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gitshopapp/gemcart/internal/variant"
)

func (h *Handlers) Attributes(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.catalog.Catalog(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, catalog)
}

type discountRequest struct {
	Type  variant.DiscountType `json:"type" validate:"required,oneof=PERCENT FIXED"`
	Value decimal.Decimal      `json:"value"`
}

func (d discountRequest) rule() variant.DiscountRule {
	return variant.DiscountRule{Type: d.Type, Value: d.Value}
}

type resolvePriceRequest struct {
	MRP      decimal.Decimal `json:"mrp"`
	Discount discountRequest `json:"discount"`
}

type resolvePriceResponse struct {
	MRP             string `json:"mrp"`
	SellingPrice    string `json:"selling_price"`
	DiscountPercent string `json:"discount_percent"`
	Clamped         bool   `json:"clamped"`
}

// ResolvePrice previews the selling price for an MRP and discount without
// touching any stored variant.
func (h *Handlers) ResolvePrice(w http.ResponseWriter, r *http.Request) {
	var req resolvePriceRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := variant.ValidateAmount(req.MRP); err != nil {
		h.writeError(w, r, fmt.Errorf("mrp: %w", err))
		return
	}
	rule := req.Discount.rule()
	if err := rule.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	result := variant.ResolvePrice(req.MRP, rule)
	h.writeJSON(w, r, http.StatusOK, resolvePriceResponse{
		MRP:             variant.FormatPrice(req.MRP),
		SellingPrice:    variant.FormatPrice(result.SellingPrice),
		DiscountPercent: result.DiscountPercent.String(),
		Clamped:         result.Clamped,
	})
}
