package handlers

import (
	"net/http"

	"github.com/gitshopapp/gemcart/internal/services"
)

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := sellerFromContext(r.Context())
	if !ok {
		h.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req services.CreateProductInput
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.wizard.CreateProduct(r.Context(), sellerID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, product)
}

// AdvanceProduct moves the product to the next wizard step. A failed
// precondition is reported as 422 with the precondition name.
func (h *Handlers) AdvanceProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := sellerFromContext(r.Context())
	if !ok {
		h.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	productID, err := productIDFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.wizard.Advance(r.Context(), sellerID, productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, product)
}
