package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/gemcart/internal/variant"
)

type variantsResponse struct {
	Variants []variant.Variant `json:"variants"`
}

func (h *Handlers) ListVariants(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.publishedProduct(w, r)
	if !ok {
		return
	}

	variants, err := h.variants.ListVariants(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if variants == nil {
		variants = []variant.Variant{}
	}
	h.writeJSON(w, r, http.StatusOK, variantsResponse{Variants: variants})
}

func (h *Handlers) DefaultSelection(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.publishedProduct(w, r)
	if !ok {
		return
	}

	result, err := h.variants.DefaultSelection(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

type selectionRequest struct {
	Selection variant.Selection `json:"selection"`
}

// ResolveSelection answers a shopper's picks with the matching variant, the
// axes still missing, and the values left available on each axis.
func (h *Handlers) ResolveSelection(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.publishedProduct(w, r)
	if !ok {
		return
	}

	var req selectionRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.variants.Resolve(r.Context(), productID, req.Selection)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

type buildVariantsRequest struct {
	Sets []variant.AttributeSet `json:"sets" validate:"dive,dive"`
}

func (h *Handlers) BuildVariants(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.sellerProduct(w, r)
	if !ok {
		return
	}

	var req buildVariantsRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.variants.BuildVariants(r.Context(), productID, req.Sets)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

type saveVariantsRequest struct {
	Variants []variant.Variant `json:"variants" validate:"required,min=1"`
}

func (h *Handlers) SaveVariants(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.sellerProduct(w, r)
	if !ok {
		return
	}

	var req saveVariantsRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	saved, err := h.variants.SaveVariants(r.Context(), productID, req.Variants)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, variantsResponse{Variants: saved})
}

type pricingRequest struct {
	MRP      decimal.Decimal `json:"mrp"`
	Discount discountRequest `json:"discount"`
}

func (h *Handlers) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.sellerProduct(w, r)
	if !ok {
		return
	}

	var req pricingRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	update, err := h.variants.UpdatePricing(r.Context(), productID, skuFromRequest(r), req.MRP, req.Discount.rule())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, update)
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"required,min=0"`
}

func (h *Handlers) UpdateStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.sellerProduct(w, r)
	if !ok {
		return
	}

	var req stockRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.variants.UpdateStock(r.Context(), productID, skuFromRequest(r), *req.Stock)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, updated)
}

// publishedProduct resolves the product in the path for shoppers. Products
// still in the wizard are not found. It writes the error response itself.
func (h *Handlers) publishedProduct(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	productID, err := productIDFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return uuid.Nil, false
	}
	if _, err := h.wizard.PublishedProduct(r.Context(), productID); err != nil {
		h.writeError(w, r, err)
		return uuid.Nil, false
	}
	return productID, true
}

// sellerProduct resolves the product in the path and checks the calling
// seller owns it and may still edit its variants. It writes the error
// response itself.
func (h *Handlers) sellerProduct(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sellerID, ok := sellerFromContext(r.Context())
	if !ok {
		h.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return uuid.Nil, false
	}

	productID, err := productIDFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return uuid.Nil, false
	}

	if _, err := h.wizard.EditableProduct(r.Context(), sellerID, productID); err != nil {
		h.writeError(w, r, err)
		return uuid.Nil, false
	}
	return productID, true
}

func skuFromRequest(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["sku"])
}
