package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/brocantic/marketplace/internal/auth"
	"github.com/brocantic/marketplace/internal/messaging"
	"github.com/brocantic/marketplace/internal/redisx"
)

type MessagingHandler struct {
	Svc   *messaging.Service
	Redis *redis.Client
}

func (h *MessagingHandler) Register(r chi.Router) {
	r.Post("/messages", h.send)
	r.Get("/messages/conversations", h.conversations)
	r.Get("/messages/with/{userID}/about/{productID}", h.conversation)
	r.Post("/messages/read", h.markRead)
	r.Get("/messages/unread", h.unread)
}

func (h *MessagingHandler) send(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req struct {
		ReceiverID string `json:"receiver_id"`
		ProductID  string `json:"product_id"`
		Content    string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	msg, err := h.Svc.Send(r.Context(), userID, req.ReceiverID, req.ProductID, req.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessagingHandler) conversations(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	convs, err := h.Svc.Conversations(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *MessagingHandler) conversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	otherID := chi.URLParam(r, "userID")
	productID := chi.URLParam(r, "productID")
	page, perPage := pageParams(r)
	msgs, total, err := h.Svc.Conversation(r.Context(), userID, otherID, productID, page, perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePaged(w, msgs, page, perPage, total)
}

// markRead flips the unread flags in one thread and pulls the Redis unread
// counter down by the same amount so the badge stays honest.
func (h *MessagingHandler) markRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req struct {
		OtherID   string `json:"other_id"`
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	n, err := h.Svc.MarkRead(r.Context(), userID, req.OtherID, req.ProductID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if n > 0 && h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyUnread, userID)
		if v, err := h.Redis.DecrBy(r.Context(), key, int64(n)).Result(); err == nil && v < 0 {
			_ = h.Redis.Set(r.Context(), key, 0, 0).Err()
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"read": n})
}

// unread answers from the Redis counter when it exists and falls back to a
// count query, priming the counter on the way out.
func (h *MessagingHandler) unread(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	key := fmt.Sprintf(redisx.KeyUnread, userID)

	if h.Redis != nil {
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil {
			if n, convErr := strconv.Atoi(s); convErr == nil {
				writeJSON(w, http.StatusOK, map[string]int{"unread": n})
				return
			}
		}
	}

	n, err := h.Svc.UnreadCount(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(r.Context(), key, n, 0).Err()
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}
