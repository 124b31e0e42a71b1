package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/brocantic/marketplace/internal/auth"
	"github.com/brocantic/marketplace/internal/fulfillment"
	"github.com/brocantic/marketplace/internal/orders"
	"github.com/brocantic/marketplace/internal/redisx"
)

type FulfillmentHandler struct {
	Svc   *fulfillment.Service
	Redis *redis.Client
}

func (h *FulfillmentHandler) Register(r chi.Router) {
	r.Get("/seller/orders", h.sellerOrders)
	r.Get("/seller/orders/pending", h.pending)
	r.Get("/seller/orders/ready", h.ready)
	r.Get("/seller/stats", h.stats)
	r.Post("/seller/items/{id}/status", h.updateStatus)
	r.Post("/seller/orders/{id}/ready", h.markReady)
	r.Post("/seller/orders/{id}/sent", h.markSent)
	r.Post("/orders/items/{id}/delivered", h.confirmDelivered)
}

func (h *FulfillmentHandler) sellerOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	page, perPage := pageParams(r)
	bundles, total, err := h.Svc.SellerOrders(r.Context(), userID, page, perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePaged(w, bundles, page, perPage, total)
}

func (h *FulfillmentHandler) pending(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	bundles, err := h.Svc.PendingOrders(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundles)
}

func (h *FulfillmentHandler) ready(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	bundles, err := h.Svc.ReadyToSendOrders(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundles)
}

// stats serves the dashboard numbers from a short-lived Redis cache, falling
// back to the aggregate queries on a miss.
func (h *FulfillmentHandler) stats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	key := fmt.Sprintf(redisx.KeySellerStats, userID)
	ctx := r.Context()

	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	stats, err := h.Svc.Stats(ctx, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if h.Redis != nil {
		b, _ := json.Marshal(stats)
		_ = h.Redis.Set(ctx, key, b, redisx.TTLSellerStats).Err()
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *FulfillmentHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req struct {
		Status orders.ItemStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Svc.UpdateItemStatus(r.Context(), userID, chi.URLParam(r, "id"), req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateStats(r, userID)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

func (h *FulfillmentHandler) markReady(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	moved, err := h.Svc.MarkOrderReadyToSend(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateStats(r, userID)
	writeJSON(w, http.StatusOK, map[string]int{"updated": moved})
}

func (h *FulfillmentHandler) markSent(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	moved, err := h.Svc.MarkOrderSent(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateStats(r, userID)
	writeJSON(w, http.StatusOK, map[string]int{"updated": moved})
}

func (h *FulfillmentHandler) confirmDelivered(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	if err := h.Svc.UpdateItemStatus(r.Context(), userID, chi.URLParam(r, "id"), orders.StatusDelivered); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(orders.StatusDelivered)})
}

func (h *FulfillmentHandler) invalidateStats(r *http.Request, sellerID string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeySellerStats, sellerID)).Err()
}
