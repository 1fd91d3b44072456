package report

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/certificate/purposes", h.ListPurposes)
}

func (h *Handler) ListPurposes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Purposes())
}
