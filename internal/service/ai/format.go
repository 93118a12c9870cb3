package ai

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/GaryBary/noosa26/internal/model/chat"
)

const audioMIMEType = "audio/webm"

// ApplyLocalityFocus prefixes the utterance with a bracketed context tag
// unless the focus is empty or the "all localities" sentinel, in which
// case the utterance passes through byte-for-byte.
func ApplyLocalityFocus(utterance, focus string) string {
	focus = strings.TrimSpace(focus)
	if focus == "" || focus == chat.AllLocalities {
		return utterance
	}
	return fmt.Sprintf("[Locality Focus: %s] %s", focus, utterance)
}

// BuildContents converts a stored history plus the new utterance into the
// ordered turn list the generation API expects. Prior turns are never
// reordered; leading model turns are trimmed so the first turn sent is a
// user turn, and the new utterance always comes last.
func BuildContents(history []chat.Message, utterance string, audio []byte, localityFocus string) []*genai.Content {
	trimmed := trimToFirstUserTurn(history)

	contents := make([]*genai.Content, 0, len(trimmed)+1)
	for _, msg := range trimmed {
		parts := messageParts(msg)
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  roleFor(msg.Role),
			Parts: parts,
		})
	}

	var current []*genai.Part
	if text := ApplyLocalityFocus(utterance, localityFocus); text != "" {
		current = append(current, genai.NewPartFromText(text))
	}
	if len(audio) > 0 {
		current = append(current, genai.NewPartFromBytes(audio, audioMIMEType))
	}

	return append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: current})
}

// trimToFirstUserTurn drops leading turns until the first user turn, so
// the payload complies with the API's "history starts with user"
// requirement. An all-model history (the seeded welcome alone) trims to
// nothing.
func trimToFirstUserTurn(history []chat.Message) []chat.Message {
	for i, msg := range history {
		if msg.Role == chat.RoleUser {
			return history[i:]
		}
	}
	return nil
}

// messageParts builds the parts list for one prior turn: text first, then
// the inline audio blob, omitting whichever is absent.
func messageParts(msg chat.Message) []*genai.Part {
	var parts []*genai.Part
	if msg.Text != "" {
		parts = append(parts, genai.NewPartFromText(msg.Text))
	}
	if msg.Audio != "" {
		if data, err := base64.StdEncoding.DecodeString(msg.Audio); err == nil && len(data) > 0 {
			parts = append(parts, genai.NewPartFromBytes(data, audioMIMEType))
		}
	}
	return parts
}

func roleFor(role chat.Role) string {
	if role == chat.RoleUser {
		return string(genai.RoleUser)
	}
	return string(genai.RoleModel)
}
