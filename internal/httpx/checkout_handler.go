package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brocantic/marketplace/internal/auth"
	"github.com/brocantic/marketplace/internal/checkout"
	"github.com/brocantic/marketplace/internal/orders"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
	Orders   *orders.Repo
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders", h.myOrders)
	r.Get("/orders/waiting", h.waiting)
	r.Get("/orders/{id}", h.details)
	r.Get("/orders/{id}/suborders", h.subOrders)
}

type checkoutRequest struct {
	ShippingAddress checkout.Address `json:"shipping_address"`
	BillingAddress  checkout.Address `json:"billing_address"`
	PaymentMethod   string           `json:"payment_method"`
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var fieldErrs []string
	fieldErrs = append(fieldErrs, checkout.ValidateAddress(req.ShippingAddress)...)
	fieldErrs = append(fieldErrs, checkout.ValidateAddress(req.BillingAddress)...)
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fieldErrs})
		return
	}

	receipt, err := h.Checkout.CreateOrdersFromCart(r.Context(), userID,
		req.ShippingAddress, req.BillingAddress, req.PaymentMethod)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *CheckoutHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	page, perPage := pageParams(r)
	items, total, err := h.Orders.MyOrders(r.Context(), userID, page, perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePaged(w, items, page, perPage, total)
}

func (h *CheckoutHandler) details(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	det, err := h.Orders.Details(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, det)
}

func (h *CheckoutHandler) subOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	parent, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if parent.UserID != userID {
		writeDomainError(w, orders.ErrNotFound)
		return
	}
	subs, err := h.Orders.SubOrders(r.Context(), parent.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *CheckoutHandler) waiting(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	waiting, err := h.Orders.Waiting(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, waiting)
}
