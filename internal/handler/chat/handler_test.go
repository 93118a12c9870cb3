package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/GaryBary/noosa26/internal/model/chat"
	"github.com/GaryBary/noosa26/internal/model/locality"
	"github.com/GaryBary/noosa26/internal/service/ai"
	chatservice "github.com/GaryBary/noosa26/internal/service/chat"
	sessionservice "github.com/GaryBary/noosa26/internal/service/session"
)

type stubGateway struct {
	reply ai.Reply
	err   error
}

func (g *stubGateway) Generate(_ context.Context, _ []chatmodel.Message, _ string, _ []byte, _ string) (ai.Reply, error) {
	return g.reply, g.err
}

type stubSpeech struct{}

func (stubSpeech) Transcribe(_ context.Context, _ []byte, _ string) string { return "" }
func (stubSpeech) Synthesize(_ context.Context, _ string) []byte           { return nil }

type stubSink struct{}

func (stubSink) Invalidate(string) {}

func setupRouter(gateway *stubGateway) (*chi.Mux, *chatservice.Service) {
	store := chatservice.NewService()
	localities := locality.NewMemoryStore(locality.Seed())
	controller := sessionservice.NewController(store, gateway, stubSpeech{}, stubSink{})
	handler := New(store, controller, localities)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func createSession(t *testing.T, r *chi.Mux) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var payload struct {
		Session  chatmodel.Session `json:"session"`
		Messages []MessageView     `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Messages) != 1 {
		t.Fatalf("expected welcome message, got %d messages", len(payload.Messages))
	}
	if payload.Session.LocalityFocus != chatmodel.AllLocalities {
		t.Fatalf("expected default locality %q, got %q", chatmodel.AllLocalities, payload.Session.LocalityFocus)
	}
	return payload.Session.ID
}

func TestCreateSessionSeedsWelcome(t *testing.T) {
	r, _ := setupRouter(&stubGateway{})
	createSession(t, r)
}

func TestSubmitReturnsModelReply(t *testing.T) {
	gateway := &stubGateway{reply: ai.Reply{
		Text: "Bistro C is the spot for beachfront dining.",
		Grounding: &chatmodel.GroundingMetadata{
			GroundingChunks: []chatmodel.GroundingChunk{
				{Web: &chatmodel.GroundingSource{URI: "https://bistroc.com.au", Title: "Bistro C"}},
				{Web: &chatmodel.GroundingSource{URI: "https://example.com", Title: "Queensland"}},
			},
		},
	}}
	r, _ := setupRouter(gateway)
	sessionID := createSession(t, r)

	payload, _ := json.Marshal(map[string]string{"text": "where should I eat?"})
	req := httptest.NewRequest(http.MethodPost, "/session/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var view MessageView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.Role != chatmodel.RoleModel {
		t.Fatalf("expected model role, got %q", view.Role)
	}
	if len(view.Citations) != 1 || view.Citations[0].Title() != "Bistro C" {
		t.Fatalf("expected the mentioned citation only, got %+v", view.Citations)
	}
}

func TestSubmitBlankText(t *testing.T) {
	r, _ := setupRouter(&stubGateway{})
	sessionID := createSession(t, r)

	payload := []byte(`{"text": "   "}`)
	req := httptest.NewRequest(http.MethodPost, "/session/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	r, _ := setupRouter(&stubGateway{})

	payload := []byte(`{"text": "hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/session/missing/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSubmitCredentialFailure(t *testing.T) {
	r, _ := setupRouter(&stubGateway{err: ai.ErrMissingCredential})
	sessionID := createSession(t, r)

	payload := []byte(`{"text": "hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/session/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestSetLocality(t *testing.T) {
	r, store := setupRouter(&stubGateway{})
	sessionID := createSession(t, r)

	payload := []byte(`{"locality": "sunshine beach"}`)
	req := httptest.NewRequest(http.MethodPut, "/session/"+sessionID+"/locality", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	session, err := store.GetSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("failed to fetch session: %v", err)
	}
	if session.LocalityFocus != "Sunshine Beach" {
		t.Fatalf("expected canonical locality name, got %q", session.LocalityFocus)
	}
}

func TestSetLocalityUnknown(t *testing.T) {
	r, _ := setupRouter(&stubGateway{})
	sessionID := createSession(t, r)

	payload := []byte(`{"locality": "Byron Bay"}`)
	req := httptest.NewRequest(http.MethodPut, "/session/"+sessionID+"/locality", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestResetKeepsWelcomeOnly(t *testing.T) {
	gateway := &stubGateway{reply: ai.Reply{Text: "A fine choice."}}
	r, _ := setupRouter(gateway)
	sessionID := createSession(t, r)

	payload := []byte(`{"text": "hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/session/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/session/"+sessionID+"/reset", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var messages []MessageView
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(messages) != 1 || messages[0].Role != chatmodel.RoleModel {
		t.Fatalf("expected only the welcome message after reset, got %d", len(messages))
	}
}

func TestSuggestions(t *testing.T) {
	r, _ := setupRouter(&stubGateway{})

	req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var questions []string
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(questions) != len(suggestedQuestions) {
		t.Fatalf("expected %d suggestions, got %d", len(suggestedQuestions), len(questions))
	}
}
