package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GaryBary/noosa26/internal/model/chat"
	"github.com/GaryBary/noosa26/internal/service/ai"
	chatservice "github.com/GaryBary/noosa26/internal/service/chat"
)

type fakeGateway struct {
	mu        sync.Mutex
	reply     ai.Reply
	err       error
	block     chan struct{}
	gotFocus  string
	gotText   string
	callCount int
}

func (g *fakeGateway) Generate(_ context.Context, _ []chat.Message, utterance string, _ []byte, focus string) (ai.Reply, error) {
	g.mu.Lock()
	g.callCount++
	g.gotText = utterance
	g.gotFocus = focus
	block := g.block
	g.mu.Unlock()

	if block != nil {
		<-block
	}
	return g.reply, g.err
}

type fakeSpeech struct {
	transcript string
	audio      []byte
}

func (s *fakeSpeech) Transcribe(_ context.Context, _ []byte, _ string) string { return s.transcript }
func (s *fakeSpeech) Synthesize(_ context.Context, _ string) []byte           { return s.audio }

type fakeSink struct {
	mu      sync.Mutex
	reasons []string
}

func (s *fakeSink) Invalidate(reason string) {
	s.mu.Lock()
	s.reasons = append(s.reasons, reason)
	s.mu.Unlock()
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reasons)
}

func newFixture(gw *fakeGateway, sp Speech) (*Controller, *chatservice.Service, *fakeSink, chat.Session) {
	store := chatservice.NewService()
	sink := &fakeSink{}
	if sp == nil {
		sp = &fakeSpeech{}
	}
	ctrl := NewController(store, gw, sp, sink)
	sess, _ := store.CreateSession(context.Background())
	return ctrl, store, sink, sess
}

func TestSubmitBlankIgnored(t *testing.T) {
	gw := &fakeGateway{}
	ctrl, store, _, sess := newFixture(gw, nil)

	if _, err := ctrl.Submit(context.Background(), sess.ID, "   "); !errors.Is(err, ErrBlankInput) {
		t.Fatalf("expected ErrBlankInput, got %v", err)
	}

	history, _ := store.History(context.Background(), sess.ID)
	if len(history) != 1 {
		t.Fatalf("blank submit must not touch history, got %d messages", len(history))
	}
	if gw.callCount != 0 {
		t.Fatal("blank submit must not reach the gateway")
	}
}

func TestSubmitHappyPath(t *testing.T) {
	gw := &fakeGateway{reply: ai.Reply{
		Text: "Try Bistro C.",
		Grounding: &chat.GroundingMetadata{GroundingChunks: []chat.GroundingChunk{
			{Maps: &chat.GroundingSource{Title: "Bistro C", URI: "https://maps.example/bistro-c"}},
		}},
	}}
	ctrl, store, sink, sess := newFixture(gw, nil)

	store.SetLocality(context.Background(), sess.ID, "Sunshine Beach")

	modelMsg, err := ctrl.Submit(context.Background(), sess.ID, "where to eat")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if modelMsg.Role != chat.RoleModel || modelMsg.Text != "Try Bistro C." {
		t.Fatalf("unexpected model message: %+v", modelMsg)
	}
	if modelMsg.Grounding == nil || len(modelMsg.Grounding.GroundingChunks) != 1 {
		t.Fatal("grounding metadata must ride on the model message")
	}
	if gw.gotFocus != "Sunshine Beach" {
		t.Fatalf("locality focus not forwarded, got %q", gw.gotFocus)
	}

	history, _ := store.History(context.Background(), sess.ID)
	if len(history) != 3 {
		t.Fatalf("expected welcome+user+model, got %d", len(history))
	}
	if history[1].Role != chat.RoleUser || history[1].Text != "where to eat" {
		t.Fatalf("user turn missing or reordered: %+v", history[1])
	}
	if sink.count() != 0 {
		t.Fatal("happy path must not raise the credential signal")
	}
}

func TestSubmitAuthFailureRaisesCredentialSignal(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("%w: remote said 403", ai.ErrAuthRejected)}
	ctrl, store, sink, sess := newFixture(gw, nil)

	_, err := ctrl.Submit(context.Background(), sess.ID, "anything")
	if !errors.Is(err, ai.ErrAuthRejected) {
		t.Fatalf("expected ErrAuthRejected, got %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("credential signal not raised, count=%d", sink.count())
	}

	history, _ := store.History(context.Background(), sess.ID)
	if len(history) != 2 {
		t.Fatalf("failed user turn must stay visible, got %d messages", len(history))
	}
	if history[1].Role != chat.RoleUser {
		t.Fatal("surviving turn must be the user's")
	}
}

func TestSubmitMissingCredentialRaisesCredentialSignal(t *testing.T) {
	gw := &fakeGateway{err: ai.ErrMissingCredential}
	ctrl, _, sink, sess := newFixture(gw, nil)

	if _, err := ctrl.Submit(context.Background(), sess.ID, "anything"); !errors.Is(err, ai.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if sink.count() != 1 {
		t.Fatal("credential signal not raised")
	}
}

func TestSubmitGenericFailureSkipsCredentialSignal(t *testing.T) {
	gw := &fakeGateway{err: errors.New("boom")}
	ctrl, store, sink, sess := newFixture(gw, nil)

	if _, err := ctrl.Submit(context.Background(), sess.ID, "anything"); err == nil {
		t.Fatal("expected error")
	}
	if sink.count() != 0 {
		t.Fatal("generic failure must not raise the credential signal")
	}

	history, _ := store.History(context.Background(), sess.ID)
	if len(history) != 2 {
		t.Fatalf("no model message may be appended on failure, got %d", len(history))
	}
}

func TestSubmitRejectsConcurrentTurn(t *testing.T) {
	gw := &fakeGateway{reply: ai.Reply{Text: "slow answer"}, block: make(chan struct{})}
	ctrl, _, _, sess := newFixture(gw, nil)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background(), sess.ID, "first")
		done <- err
	}()

	// Wait for the first turn to reach the gateway.
	deadline := time.After(2 * time.Second)
	for {
		gw.mu.Lock()
		calls := gw.callCount
		gw.mu.Unlock()
		if calls == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first turn never reached the gateway")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := ctrl.Submit(context.Background(), sess.ID, "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(gw.block)
	if err := <-done; err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
}

func TestSubmitRejectedWhileRecording(t *testing.T) {
	gw := &fakeGateway{reply: ai.Reply{Text: "answer"}}
	ctrl, _, _, sess := newFixture(gw, nil)

	if err := ctrl.StartRecording(sess.ID); err != nil {
		t.Fatalf("StartRecording err: %v", err)
	}
	if _, err := ctrl.Submit(context.Background(), sess.ID, "talk over it"); !errors.Is(err, ErrRecording) {
		t.Fatalf("expected ErrRecording, got %v", err)
	}
}

func TestStopRecordingMergesTranscript(t *testing.T) {
	gw := &fakeGateway{reply: ai.Reply{Text: "answer"}}
	sp := &fakeSpeech{transcript: "gympie terrace"}
	ctrl, store, _, sess := newFixture(gw, sp)

	if err := ctrl.StartRecording(sess.ID); err != nil {
		t.Fatalf("StartRecording err: %v", err)
	}
	pending, err := ctrl.StopRecording(context.Background(), sess.ID, []byte{1, 2}, "audio/webm")
	if err != nil {
		t.Fatalf("StopRecording err: %v", err)
	}
	if pending != "gympie terrace" {
		t.Fatalf("unexpected pending input %q", pending)
	}

	// Second capture appends, space-joined.
	ctrl.StartRecording(sess.ID)
	pending, _ = ctrl.StopRecording(context.Background(), sess.ID, []byte{3, 4}, "audio/webm")
	if pending != "gympie terrace gympie terrace" {
		t.Fatalf("transcripts must merge, got %q", pending)
	}

	// Transcription never auto-submits.
	history, _ := store.History(context.Background(), sess.ID)
	if len(history) != 1 {
		t.Fatalf("transcription must not append messages, got %d", len(history))
	}
}

func TestStopRecordingWithoutCapture(t *testing.T) {
	ctrl, _, _, sess := newFixture(&fakeGateway{}, nil)
	if _, err := ctrl.StopRecording(context.Background(), sess.ID, nil, ""); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}

func TestVoiceResponseQueuesOrderedAudio(t *testing.T) {
	audio := make([]byte, 4800) // 100ms of 24kHz 16-bit mono
	gw := &fakeGateway{reply: ai.Reply{Text: "spoken answer"}}
	sp := &fakeSpeech{audio: audio}
	ctrl, store, _, sess := newFixture(gw, sp)

	store.SetVoiceResponse(context.Background(), sess.ID, true)

	if _, err := ctrl.Submit(context.Background(), sess.ID, "speak to me"); err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	select {
	case chunk := <-ctrl.Audio(sess.ID):
		if chunk.Seq != 0 {
			t.Fatalf("first chunk seq: got %d", chunk.Seq)
		}
		if chunk.Duration != 100*time.Millisecond {
			t.Fatalf("unexpected duration %s", chunk.Duration)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audio chunk delivered")
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	ctrl, _, _, _ := newFixture(&fakeGateway{}, nil)
	if _, err := ctrl.Submit(context.Background(), "missing", "hello"); !errors.Is(err, chatservice.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
