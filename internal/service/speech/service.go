// Package speech wraps the Gemini transcription and text-to-speech
// models. Both capabilities are enhancements: a missing key or a remote
// failure degrades to an empty result and never fails the owning turn.
package speech

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/GaryBary/noosa26/internal/config"
)

// transcribePrompt steers transcription toward local place names.
const transcribePrompt = "Transcribe the audio accurately. Focus on Noosa place names like Hastings Street, Gympie Terrace, or Noosa Woods."

// SampleRate is the PCM sample rate the TTS model emits (16-bit mono).
const SampleRate = 24000

// Service provides transcription and synthesis.
type Service struct {
	cfg config.GeminiConfig

	mu     sync.Mutex
	client *genai.Client
}

// NewService returns a speech service bound to the supplied configuration.
func NewService(cfg config.GeminiConfig) *Service {
	return &Service{cfg: cfg}
}

func (s *Service) ensureClient(ctx context.Context) (*genai.Client, error) {
	if s.cfg.APIKey == "" {
		return nil, fmt.Errorf("speech: no api key configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: create client: %w", err)
	}
	s.client = client
	return client, nil
}

// Transcribe converts a captured audio blob to text. Any failure returns
// the empty string.
func (s *Service) Transcribe(ctx context.Context, audio []byte, mimeType string) string {
	if len(audio) == 0 {
		return ""
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	client, err := s.ensureClient(ctx)
	if err != nil {
		log.Printf("[speech] transcription unavailable: %v", err)
		return ""
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(audio, mimeType),
			genai.NewPartFromText(transcribePrompt),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(reqCtx, s.cfg.TranscribeModel, contents, nil)
	if err != nil {
		log.Printf("[speech] transcription failed: %v", err)
		return ""
	}

	return strings.TrimSpace(resp.Text())
}

// Synthesize renders text as PCM audio (SampleRate, 16-bit mono). Any
// failure returns nil.
func (s *Service) Synthesize(ctx context.Context, text string) []byte {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	client, err := s.ensureClient(ctx)
	if err != nil {
		log.Printf("[speech] synthesis unavailable: %v", err)
		return nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(text)}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(reqCtx, s.cfg.TTSModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.cfg.TTSVoice},
			},
		},
	})
	if err != nil {
		log.Printf("[speech] synthesis failed: %v", err)
		return nil
	}

	return firstInlineAudio(resp)
}

func firstInlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return nil
	}
	for _, part := range content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}
