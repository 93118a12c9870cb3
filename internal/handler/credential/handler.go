package credential

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GaryBary/noosa26/internal/service/credential"
	"github.com/GaryBary/noosa26/pkg/utils"
)

// Handler exposes the key bootstrap to the front-end: a status probe at
// startup and a connect action for the pre-connected screen.
type Handler struct {
	manager *credential.Manager
}

// New creates the credential handler.
func New(manager *credential.Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes mounts the credential routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/credential", func(cr chi.Router) {
		cr.Get("/status", h.handleStatus)
		cr.Post("/connect", h.handleConnect)
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.manager.Status(r.Context()))
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Connect(r.Context()); err != nil {
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.manager.Status(r.Context()))
}
