package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GaryBary/noosa26/internal/analysis/grounding"
	"github.com/GaryBary/noosa26/internal/model/chat"
	"github.com/GaryBary/noosa26/internal/model/locality"
	"github.com/GaryBary/noosa26/internal/service/ai"
	chatservice "github.com/GaryBary/noosa26/internal/service/chat"
	sessionservice "github.com/GaryBary/noosa26/internal/service/session"
	"github.com/GaryBary/noosa26/pkg/utils"
)

// suggestedQuestions seed the empty-session UI.
var suggestedQuestions = []string{
	"Sunshine Beach Surf",
	"Point Break Reports",
	"Massage & Wellness",
	"Hastings St. Dining",
}

// Handler serves the conversation endpoints.
type Handler struct {
	store      *chatservice.Service
	controller *sessionservice.Controller
	localities locality.Store
}

// New creates the chat handler.
func New(store *chatservice.Service, controller *sessionservice.Controller, localities locality.Store) *Handler {
	return &Handler{store: store, controller: controller, localities: localities}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/messages", h.handleTranscript)
	r.Post("/session/{sessionID}/messages", h.handleSubmit)
	r.Post("/session/{sessionID}/reset", h.handleReset)
	r.Put("/session/{sessionID}/locality", h.handleSetLocality)
	r.Put("/session/{sessionID}/voice", h.handleSetVoice)
	r.Get("/suggestions", h.handleSuggestions)
}

// MessageView decorates a stored message with its render-time citation
// selection.
type MessageView struct {
	chat.Message
	Citations []chat.GroundingChunk `json:"citations,omitempty"`
}

func toView(msg chat.Message) MessageView {
	view := MessageView{Message: msg}
	if msg.Role == chat.RoleModel && msg.Grounding != nil {
		view.Citations = grounding.Filter(msg.Grounding.GroundingChunks, msg.Text)
	}
	return view
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	messages, err := h.store.History(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"session":  session,
		"messages": views(messages),
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.store.History(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, views(messages))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	modelMsg, err := h.controller.Submit(r.Context(), sessionID, payload.Text)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, toView(modelMsg))
}

// respondSubmitError maps controller failures onto status codes. Auth-
// class failures get 401 so the front-end runs its credential
// reacquisition flow.
func (h *Handler) respondSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionservice.ErrBlankInput):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sessionservice.ErrBusy), errors.Is(err, sessionservice.ErrRecording):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case ai.IsCredentialError(err):
		utils.RespondError(w, http.StatusUnauthorized, "credential required")
	default:
		utils.RespondError(w, http.StatusBadGateway, "generation failed")
	}
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.store.Reset(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	messages, _ := h.store.History(r.Context(), sessionID)
	utils.RespondJSON(w, http.StatusOK, views(messages))
}

func (h *Handler) handleSetLocality(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Locality string `json:"locality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loc, ok := h.localities.FindByName(payload.Locality)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "unknown locality")
		return
	}

	if err := h.store.SetLocality(r.Context(), sessionID, loc.Name); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"locality": loc.Name})
}

func (h *Handler) handleSetVoice(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.SetVoiceResponse(r.Context(), sessionID, payload.Enabled); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"enabled": payload.Enabled})
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, suggestedQuestions)
}

func views(messages []chat.Message) []MessageView {
	out := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		out = append(out, toView(msg))
	}
	return out
}
