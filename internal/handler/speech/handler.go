package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	speechservice "github.com/GaryBary/noosa26/internal/service/speech"
	"github.com/GaryBary/noosa26/pkg/utils"
)

// SpeechService abstracts the voice capabilities for testing.
type SpeechService interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) string
	Synthesize(ctx context.Context, text string) []byte
}

// Controller is the slice of the session controller the voice channel
// needs.
type Controller interface {
	StartRecording(sessionID string) error
	StopRecording(ctx context.Context, sessionID string, audio []byte, mimeType string) (string, error)
	PendingInput(sessionID string) string
}

// Handler serves the voice endpoints. Transcription and synthesis are
// enhancements: they degrade to empty results, never to turn failures.
type Handler struct {
	speechSvc  SpeechService
	controller Controller
}

// New creates the speech handler.
func New(speechSvc SpeechService, controller Controller) *Handler {
	return &Handler{speechSvc: speechSvc, controller: controller}
}

// RegisterRoutes mounts the speech routes, including the websocket voice
// channel when audio push is wired.
func (h *Handler) RegisterRoutes(r chi.Router, audio AudioSource) {
	r.Route("/speech", func(sr chi.Router) {
		sr.Post("/transcribe", h.handleTranscribe)
		sr.Post("/synthesize", h.handleSynthesize)

		ws := newWebSocketHandler(h.speechSvc, h.controller, audio)
		sr.Get("/ws/{sessionID}", ws.handleWebSocket)
	})
}

// handleTranscribe accepts a multipart capture and returns its
// transcript. An empty transcript is a valid response.
func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	text := h.speechSvc.Transcribe(r.Context(), audio, mimeType)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"text": text})
}

// handleSynthesize renders text to speech. A null audio field means the
// capability is unavailable; the caller simply skips playback.
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio := h.speechSvc.Synthesize(r.Context(), payload.Text)
	var encoded *string
	if len(audio) > 0 {
		s := base64.StdEncoding.EncodeToString(audio)
		encoded = &s
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"audio":      encoded,
		"sampleRate": speechservice.SampleRate,
	})
}
