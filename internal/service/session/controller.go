// Package session orchestrates turn-taking for one conversation: it is
// the only writer of the conversation store and the only caller of the
// generation gateway. One generation request may be in flight per session
// at a time; a second submission is rejected rather than queued.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/GaryBary/noosa26/internal/model/chat"
	"github.com/GaryBary/noosa26/internal/service/ai"
	chatservice "github.com/GaryBary/noosa26/internal/service/chat"
)

var (
	ErrBlankInput   = errors.New("input text is blank")
	ErrBusy         = errors.New("a response is already in flight")
	ErrRecording    = errors.New("voice capture in progress")
	ErrNotRecording = errors.New("no voice capture in progress")
)

// Gateway issues one generation request per user turn.
type Gateway interface {
	Generate(ctx context.Context, history []chat.Message, utterance string, audio []byte, localityFocus string) (ai.Reply, error)
}

// Speech provides the optional voice capabilities. Implementations
// swallow their own failures.
type Speech interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) string
	Synthesize(ctx context.Context, text string) []byte
}

// CredentialSink receives the credential-required signal raised on
// auth-class generation failures.
type CredentialSink interface {
	Invalidate(reason string)
}

type phase int

const (
	phaseIdle phase = iota
	phaseAwaiting
)

type voicePhase int

const (
	voiceIdle voicePhase = iota
	voiceRecording
	voiceTranscribing
)

// turnState tracks the per-session state machine.
type turnState struct {
	mu           sync.Mutex
	phase        phase
	voice        voicePhase
	pendingInput string
	playback     *Playback
}

// Controller drives the session state machine.
type Controller struct {
	store   *chatservice.Service
	gateway Gateway
	speech  Speech
	creds   CredentialSink

	mu     sync.Mutex
	states map[string]*turnState
}

// NewController wires the controller to its collaborators.
func NewController(store *chatservice.Service, gateway Gateway, speech Speech, creds CredentialSink) *Controller {
	return &Controller{
		store:   store,
		gateway: gateway,
		speech:  speech,
		creds:   creds,
		states:  make(map[string]*turnState),
	}
}

func (c *Controller) state(sessionID string) *turnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[sessionID]
	if !ok {
		st = &turnState{playback: newPlayback()}
		c.states[sessionID] = st
	}
	return st
}

// Submit runs one user turn: the user message is appended optimistically,
// the gateway is invoked, and on success the model reply is appended and
// returned. Blank input, an in-flight response, and active voice capture
// are all rejected up front. A failed turn stays visible in history; no
// rollback happens. Auth-class failures additionally raise the
// credential-required signal before propagating.
func (c *Controller) Submit(ctx context.Context, sessionID, text string) (chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrBlankInput
	}

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return chat.Message{}, err
	}

	st := c.state(sessionID)
	st.mu.Lock()
	switch {
	case st.phase == phaseAwaiting:
		st.mu.Unlock()
		return chat.Message{}, ErrBusy
	case st.voice == voiceRecording:
		st.mu.Unlock()
		return chat.Message{}, ErrRecording
	}
	st.phase = phaseAwaiting
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		st.phase = phaseIdle
		st.mu.Unlock()
	}()

	history, err := c.store.History(ctx, sessionID)
	if err != nil {
		return chat.Message{}, err
	}

	if _, err := c.store.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Text:      text,
	}); err != nil {
		return chat.Message{}, err
	}

	reply, err := c.gateway.Generate(ctx, history, text, nil, session.LocalityFocus)
	if err != nil {
		if ai.IsCredentialError(err) {
			c.creds.Invalidate(err.Error())
		}
		return chat.Message{}, err
	}

	modelMsg, err := c.store.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleModel,
		Text:      reply.Text,
		Grounding: reply.Grounding,
	})
	if err != nil {
		return chat.Message{}, err
	}

	st.mu.Lock()
	st.pendingInput = ""
	st.mu.Unlock()

	if session.VoiceResponse && reply.Text != "" {
		go c.speakReply(sessionID, reply.Text)
	}

	return modelMsg, nil
}

// speakReply synthesizes the reply and queues it for ordered playback.
// Fire-and-forget: every failure is swallowed here.
func (c *Controller) speakReply(sessionID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	audio := c.speech.Synthesize(ctx, text)
	if len(audio) == 0 {
		return
	}
	chunk := c.state(sessionID).playback.Enqueue(audio, time.Now())
	log.Printf("[session] queued spoken reply for session=%s seq=%d duration=%s", sessionID, chunk.Seq, chunk.Duration)
}

// StartRecording moves the voice sub-state to Recording. It cannot
// overlap an in-flight response or another capture.
func (c *Controller) StartRecording(sessionID string) error {
	st := c.state(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.phase == phaseAwaiting {
		return ErrBusy
	}
	if st.voice != voiceIdle {
		return ErrRecording
	}
	st.voice = voiceRecording
	return nil
}

// StopRecording finalizes a capture: the blob is transcribed and the
// transcript merged into the session's pending input, never auto-
// submitted. The merged pending input is returned for display.
func (c *Controller) StopRecording(ctx context.Context, sessionID string, audio []byte, mimeType string) (string, error) {
	st := c.state(sessionID)
	st.mu.Lock()
	if st.voice != voiceRecording {
		st.mu.Unlock()
		return "", ErrNotRecording
	}
	st.voice = voiceTranscribing
	st.mu.Unlock()

	transcript := c.speech.Transcribe(ctx, audio, mimeType)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.voice = voiceIdle
	if transcript != "" {
		if st.pendingInput != "" {
			st.pendingInput += " " + transcript
		} else {
			st.pendingInput = transcript
		}
	}
	return st.pendingInput, nil
}

// PendingInput returns the session's uncommitted input field.
func (c *Controller) PendingInput(sessionID string) string {
	st := c.state(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.pendingInput
}

// Audio exposes the session's ordered playback stream.
func (c *Controller) Audio(sessionID string) <-chan AudioChunk {
	return c.state(sessionID).playback.Chunks()
}
