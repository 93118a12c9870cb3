package locality

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GaryBary/noosa26/internal/model/locality"
	"github.com/GaryBary/noosa26/pkg/utils"
)

// Handler serves the region catalog for the front-end filter chips.
type Handler struct {
	localities locality.Store
}

// New creates the locality handler.
func New(localities locality.Store) *Handler {
	return &Handler{localities: localities}
}

// RegisterRoutes mounts the locality routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/localities", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.localities.List())
}
