package stream

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/GaryBary/noosa26/internal/analysis/grounding"
	"github.com/GaryBary/noosa26/internal/model/chat"
	"github.com/GaryBary/noosa26/internal/service/ai"
	sessionservice "github.com/GaryBary/noosa26/internal/service/session"
	"github.com/GaryBary/noosa26/pkg/utils"
)

// Handler streams a turn over Server-Sent Events: a start event, a
// heartbeat while the generation request is in flight, then the final
// message. Generation itself is single-shot; the stream exists so the UI
// can show progress without polling.
type Handler struct {
	controller *sessionservice.Controller
}

// New creates a stream handler.
func New(controller *sessionservice.Controller) *Handler {
	return &Handler{controller: controller}
}

type messageEvent struct {
	ID        string                `json:"id"`
	Role      chat.Role             `json:"role"`
	Text      string                `json:"text"`
	Citations []chat.GroundingChunk `json:"citations,omitempty"`
}

// HandleStreamRequest runs one turn and streams its lifecycle.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errors.New("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "start", map[string]string{"sessionId": sessionID})

	type result struct {
		msg chat.Message
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		msg, err := h.controller.Submit(ctx, sessionID, userMessage)
		resultCh <- result{msg: msg, err: err}
	}()

	ticker := time.NewTicker(8 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] client gone, session=%s", sessionID)
			return ctx.Err()
		case t := <-ticker.C:
			utils.SendSSEEvent(w, flusher, "heartbeat", map[string]string{
				"message": "awaiting concierge response",
				"time":    t.UTC().Format(time.RFC3339),
			})
		case res := <-resultCh:
			if res.err != nil {
				event := "error"
				if ai.IsCredentialError(res.err) {
					event = "credential_required"
				}
				utils.SendSSEEvent(w, flusher, event, map[string]string{"error": res.err.Error()})
				return res.err
			}

			var citations []chat.GroundingChunk
			if res.msg.Grounding != nil {
				citations = grounding.Filter(res.msg.Grounding.GroundingChunks, res.msg.Text)
			}
			utils.SendSSEEvent(w, flusher, "message", messageEvent{
				ID:        res.msg.ID,
				Role:      res.msg.Role,
				Text:      res.msg.Text,
				Citations: citations,
			})
			return nil
		}
	}
}
