// Package grounding selects which citation candidates are worth showing
// alongside a generated reply. The search and maps tools routinely return
// more venues than the reply actually discusses; rendering all of them
// would attach citation cards for places the concierge never recommended.
package grounding

import (
	"strings"
	"unicode"

	"github.com/GaryBary/noosa26/internal/model/chat"
)

// MaxCitations caps how many citation cards a single reply may carry.
const MaxCitations = 4

// genericTerms are titles too generic to be useful citations: the region,
// the state, the country and the search provider itself.
var genericTerms = map[string]struct{}{
	"noosa":         {},
	"queensland":    {},
	"australia":     {},
	"google search": {},
}

// Filter returns the candidates worth rendering next to renderedText, in
// input order, at most MaxCitations entries. A candidate survives when it
// has both a title and a URI, its URI has not been selected earlier in the
// pass, its title is not a generic term, and the reply actually mentions
// it (full title or any title token longer than three characters).
func Filter(candidates []chat.GroundingChunk, renderedText string) []chat.GroundingChunk {
	textLower := strings.ToLower(renderedText)
	seen := make(map[string]struct{}, len(candidates))

	var kept []chat.GroundingChunk
	for _, c := range candidates {
		uri := strings.TrimSpace(c.URI())
		title := strings.TrimSpace(c.Title())
		if uri == "" || title == "" {
			continue
		}
		if _, dup := seen[uri]; dup {
			continue
		}

		titleLower := strings.ToLower(title)
		if !mentioned(textLower, titleLower) {
			continue
		}
		if _, generic := genericTerms[titleLower]; generic {
			continue
		}

		seen[uri] = struct{}{}
		kept = append(kept, c)
		if len(kept) == MaxCitations {
			break
		}
	}
	return kept
}

// mentioned reports whether the reply text references the title, either
// verbatim or through one of its significant tokens.
func mentioned(textLower, titleLower string) bool {
	if strings.Contains(textLower, titleLower) {
		return true
	}
	for _, token := range splitTitle(titleLower) {
		if len(token) > 3 && strings.Contains(textLower, token) {
			return true
		}
	}
	return false
}

// splitTitle tokenizes on whitespace and the punctuation that commonly
// joins venue names.
func splitTitle(title string) []string {
	return strings.FieldsFunc(title, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.' || r == '-'
	})
}
