package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GaryBary/noosa26/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// WelcomeText opens every session so the transcript is never empty.
const WelcomeText = "Welcome to Noosa Heads. 🌊 I am your personalized concierge for Hastings Street and beyond. Whether you're seeking the perfect break, a coastal massage, or a world-class bistro, I am here to guide you."

// Service is the in-memory conversation store. Histories are append-only;
// the only other mutation is a full session reset.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// NewService bootstraps the in-memory conversation store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

// CreateSession provisions a session seeded with the concierge welcome
// message.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:            uuid.NewString(),
		LocalityFocus: chat.AllLocalities,
		CreatedAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = []chat.Message{welcomeMessage(session.ID)}
	s.mu.Unlock()

	return session, nil
}

// AppendMessage appends a message to the session history and returns the
// stored copy with its assigned ID and timestamp.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// History returns a copy of the stored messages for the session, in
// append order.
func (s *Service) History(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Reset replaces the session history wholesale with a fresh welcome
// message. Locality focus and the voice preference survive the reset.
func (s *Service) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	s.messages[sessionID] = []chat.Message{welcomeMessage(sessionID)}
	return nil
}

// SetLocality updates the session's locality focus.
func (s *Service) SetLocality(_ context.Context, sessionID, locality string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.LocalityFocus = locality
	s.sessions[sessionID] = session
	return nil
}

// SetVoiceResponse toggles spoken replies for the session.
func (s *Service) SetVoiceResponse(_ context.Context, sessionID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.VoiceResponse = enabled
	s.sessions[sessionID] = session
	return nil
}

func welcomeMessage(sessionID string) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleModel,
		Text:      WelcomeText,
		CreatedAt: time.Now().UTC(),
	}
}
