package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brocantic/marketplace/internal/auth"
	"github.com/brocantic/marketplace/internal/catalog"
)

type CatalogHandler struct {
	Repo *catalog.Repo
}

// RegisterPublic mounts the read-only browsing routes.
func (h *CatalogHandler) RegisterPublic(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/search", h.search)
	r.Get("/products/{id}", h.get)
	r.Get("/categories", h.categories)
	r.Get("/categories/{slug}", h.categoryBySlug)
}

// RegisterProtected mounts the seller-side catalog management routes.
func (h *CatalogHandler) RegisterProtected(r chi.Router) {
	r.Get("/products/mine", h.mine)
	r.Post("/products", h.create)
	r.Patch("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	var (
		items []catalog.Product
		total int
		err   error
	)
	switch {
	case r.URL.Query().Get("category") != "":
		items, total, err = h.Repo.ByCategory(r.Context(), r.URL.Query().Get("category"), page, perPage)
	case r.URL.Query().Get("seller") != "":
		items, total, err = h.Repo.BySeller(r.Context(), r.URL.Query().Get("seller"), page, perPage)
	default:
		items, total, err = h.Repo.List(r.Context(), page, perPage)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePaged(w, items, page, perPage, total)
}

func (h *CatalogHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}
	page, perPage := pageParams(r)
	items, total, err := h.Repo.Search(r.Context(), q, page, perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePaged(w, items, page, perPage, total)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	// Detail fetches count as a view.
	p, err := h.Repo.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) mine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	page, perPage := pageParams(r)
	items, total, err := h.Repo.BySeller(r.Context(), userID, page, perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePaged(w, items, page, perPage, total)
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Title == "" || in.CategoryID == "" || in.PriceCents < 0 {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	p, err := h.Repo.Create(r.Context(), userID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.Repo.Update(r.Context(), chi.URLParam(r, "id"), userID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	if err := h.Repo.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Repo.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *CatalogHandler) categoryBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.CategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
