package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/brocantic/marketplace/internal/cart"
	"github.com/brocantic/marketplace/internal/checkout"
	"github.com/brocantic/marketplace/internal/fulfillment"
	"github.com/brocantic/marketplace/internal/messaging"
	"github.com/brocantic/marketplace/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps service errors onto HTTP codes at the one boundary
// where they become responses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrNotCartItem),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, fulfillment.ErrUnknownStatus),
		errors.Is(err, messaging.ErrEmptyContent),
		errors.Is(err, messaging.ErrSelfMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		writeError(w, http.StatusPaymentRequired, "payment failed, please retry")
	case errors.Is(err, fulfillment.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, fulfillment.ErrBadTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pageParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

func totalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

type pagedResponse struct {
	Items      any `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func writePaged(w http.ResponseWriter, items any, page, perPage, total int) {
	writeJSON(w, http.StatusOK, pagedResponse{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages(total, perPage),
	})
}
