package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	sessionservice "github.com/GaryBary/noosa26/internal/service/session"
)

// AudioSource exposes a session's ordered playback stream for push.
type AudioSource interface {
	Audio(sessionID string) <-chan sessionservice.AudioChunk
}

// webSocketHandler carries the voice channel: the client streams
// microphone chunks up and receives the transcript plus ordered TTS
// audio back on the same connection.
type webSocketHandler struct {
	speechSvc  SpeechService
	controller Controller
	audio      AudioSource
	upgrader   websocket.Upgrader
}

func newWebSocketHandler(speechSvc SpeechService, controller Controller, audio AudioSource) *webSocketHandler {
	return &webSocketHandler{
		speechSvc:  speechSvc,
		controller: controller,
		audio:      audio,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type inboundMessage struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

type outboundMessage struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Pending    string `json:"pending,omitempty"`
	Error      string `json:"error,omitempty"`
	Seq        int    `json:"seq,omitempty"`
	Data       string `json:"data,omitempty"`
	DurationMS int64  `json:"durationMs,omitempty"`
}

func (h *webSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[speech] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[speech] voice channel open, session=%s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writes are funneled through one channel; gorilla connections do
	// not allow concurrent writers.
	outbound := make(chan outboundMessage, 16)
	go h.pushAudio(ctx, sessionID, outbound)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-outbound:
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}
	}()

	var capture []byte
	var mimeType string

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[speech] voice channel closed, session=%s: %v", sessionID, err)
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			outbound <- outboundMessage{Type: "error", Error: "invalid message"}
			continue
		}

		switch msg.Type {
		case "start":
			if err := h.controller.StartRecording(sessionID); err != nil {
				outbound <- outboundMessage{Type: "error", Error: err.Error()}
				continue
			}
			capture = capture[:0]
			mimeType = msg.MIMEType
			outbound <- outboundMessage{Type: "recording"}

		case "chunk":
			data, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				outbound <- outboundMessage{Type: "error", Error: "invalid audio chunk"}
				continue
			}
			capture = append(capture, data...)

		case "stop":
			pending, err := h.controller.StopRecording(ctx, sessionID, capture, mimeType)
			if err != nil {
				outbound <- outboundMessage{Type: "error", Error: err.Error()}
				continue
			}
			outbound <- outboundMessage{Type: "transcript", Text: pending, Pending: pending}
			capture = nil

		default:
			outbound <- outboundMessage{Type: "error", Error: "unknown message type"}
		}
	}
}

// pushAudio forwards the session's playback stream in order, pacing
// delivery to each chunk's scheduled start.
func (h *webSocketHandler) pushAudio(ctx context.Context, sessionID string, outbound chan<- outboundMessage) {
	chunks := h.audio.Audio(sessionID)
	for {
		select {
		case <-ctx.Done():
			return
		case chunk := <-chunks:
			if wait := time.Until(chunk.StartAt); wait > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
			}
			select {
			case <-ctx.Done():
				return
			case outbound <- outboundMessage{
				Type:       "audio",
				Seq:        chunk.Seq,
				Data:       base64.StdEncoding.EncodeToString(chunk.Data),
				DurationMS: chunk.Duration.Milliseconds(),
			}:
			}
		}
	}
}
