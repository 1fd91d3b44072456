package symptom

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	categories []Category
}

func NewHandler() *Handler {
	return &Handler{categories: Catalog()}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/symptoms", h.List)
	r.Get("/symptoms/{categoryID}", h.Get)
}

// List returns the catalog, optionally filtered by the q parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories := Search(h.categories, r.URL.Query().Get("q"))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	category, ok := Find(h.categories, chi.URLParam(r, "categoryID"))
	if !ok {
		http.Error(w, "unknown symptom category", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(category)
}
