package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brocantic/marketplace/internal/auth"
	"github.com/brocantic/marketplace/internal/cart"
)

type CartHandler struct {
	Carts *cart.Service
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.get)
	r.Get("/cart/vendors", h.byVendor)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{id}", h.updateItem)
	r.Delete("/cart/items/{id}", h.removeItem)
	r.Delete("/cart/items", h.clear)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	order, items, err := h.Carts.Items(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": order, "items": items})
}

func (h *CartHandler) byVendor(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	groups, err := h.Carts.ItemsByVendor(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing product_id")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	item, err := h.Carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	item, err := h.Carts.UpdateItemQuantity(r.Context(), userID, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	if err := h.Carts.RemoveItem(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	if err := h.Carts.Clear(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
