package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/GaryBary/noosa26/internal/config"
	"github.com/GaryBary/noosa26/internal/model/chat"
)

// minGroundedTextLen is the threshold below which a reply is considered
// too thin to stand alone; citation candidates fill the gap.
const minGroundedTextLen = 25

// Reply is the normalized result of one generation call.
type Reply struct {
	Text      string
	Grounding *chat.GroundingMetadata
}

// Service is the gateway to the Gemini generation API. It is stateless
// between calls; one request is issued per user turn.
type Service struct {
	cfg config.GeminiConfig

	mu     sync.Mutex
	client *genai.Client
}

// NewService returns a gateway bound to the supplied configuration. The
// underlying client is created lazily so a key acquired after startup is
// honored.
func NewService(cfg config.GeminiConfig) *Service {
	return &Service{cfg: cfg}
}

// ensureClient returns the shared client, creating it on first use.
// ErrMissingCredential is raised before any network activity.
func (s *Service) ensureClient(ctx context.Context) (*genai.Client, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrMissingCredential
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
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	s.client = client
	return client, nil
}

// Generate issues one generation request for the user's turn. Auth-class
// failures propagate (ErrMissingCredential, ErrAuthRejected); every other
// remote failure degrades into an apology reply so the turn still
// resolves. This policy is uniform across the service.
func (s *Service) Generate(ctx context.Context, history []chat.Message, utterance string, audio []byte, localityFocus string) (Reply, error) {
	client, err := s.ensureClient(ctx)
	if err != nil {
		return Reply{}, err
	}

	contents := BuildContents(history, utterance, audio, localityFocus)

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := client.Models.GenerateContent(reqCtx, s.cfg.ChatModel, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(s.cfg.Temperature)),
		Tools: []*genai.Tool{
			{GoogleMaps: &genai.GoogleMaps{}},
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		ToolConfig: &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{Latitude: genai.Ptr(s.cfg.Latitude), Longitude: genai.Ptr(s.cfg.Longitude)},
			},
		},
	})
	if err != nil {
		if isAuthFailure(err) {
			return Reply{}, fmt.Errorf("%w: %v", ErrAuthRejected, err)
		}
		log.Printf("[ai] generation failed, degrading to apology: %v", err)
		return Reply{Text: apologyText}, nil
	}

	grounding := extractGrounding(resp)
	text := ComposeReplyText(strings.TrimSpace(resp.Text()), groundingChunks(grounding))

	log.Printf("[ai] generated reply, length=%d, chunks=%d", len(text), len(groundingChunks(grounding)))
	return Reply{Text: text, Grounding: grounding}, nil
}

// ComposeReplyText applies the display fallbacks: a reply below the
// grounded-text threshold is rebuilt from the deduplicated citation
// titles, and anything still under five characters falls back to the
// static concierge suggestion.
func ComposeReplyText(text string, chunks []chat.GroundingChunk) string {
	if len(text) < minGroundedTextLen && len(chunks) > 0 {
		if curated := curatedListing(chunks); curated != "" {
			text = curated
		}
	}

	if len(strings.TrimSpace(text)) < 5 {
		return lastResortText
	}
	return text
}

// curatedListing renders every deduplicated citation as a one-line venue
// entry with Map and Website links.
func curatedListing(chunks []chat.GroundingChunk) string {
	seen := make(map[string]struct{}, len(chunks))
	var lines []string
	for _, c := range chunks {
		title := strings.TrimSpace(c.Title())
		uri := strings.TrimSpace(c.URI())
		if title == "" || uri == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		lines = append(lines, fmt.Sprintf("- **%s**: A premier local destination. [Map](%s) [Website](%s)", title, uri, uri))
	}

	if len(lines) == 0 {
		return ""
	}
	return curatedHeader + "\n\n" + strings.Join(lines, "\n")
}

// extractGrounding normalizes the response's grounding metadata into the
// domain model. Only the first candidate is consulted.
func extractGrounding(resp *genai.GenerateContentResponse) *chat.GroundingMetadata {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	md := resp.Candidates[0].GroundingMetadata
	if md == nil {
		return nil
	}

	out := &chat.GroundingMetadata{WebSearchQueries: md.WebSearchQueries}
	for _, gc := range md.GroundingChunks {
		if gc == nil {
			continue
		}
		var chunk chat.GroundingChunk
		if gc.Web != nil {
			chunk.Web = &chat.GroundingSource{URI: gc.Web.URI, Title: gc.Web.Title}
		}
		if gc.Maps != nil {
			chunk.Maps = &chat.GroundingSource{URI: gc.Maps.URI, Title: gc.Maps.Title, Snippet: gc.Maps.Text}
		}
		if chunk.Web == nil && chunk.Maps == nil {
			continue
		}
		out.GroundingChunks = append(out.GroundingChunks, chunk)
	}

	if len(out.GroundingChunks) == 0 && len(out.WebSearchQueries) == 0 {
		return nil
	}
	return out
}

func groundingChunks(md *chat.GroundingMetadata) []chat.GroundingChunk {
	if md == nil {
		return nil
	}
	return md.GroundingChunks
}

// Close releases the underlying client, if one was ever created.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
}
