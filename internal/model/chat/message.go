package chat

import "time"

// Role tags one turn of a conversation with its author.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one immutable turn in a session transcript. Audio, when
// present, is the base64-encoded capture or synthesis blob that travelled
// with the turn.
type Message struct {
	ID        string             `json:"id"`
	SessionID string             `json:"sessionId"`
	Role      Role               `json:"role"`
	Text      string             `json:"text"`
	Audio     string             `json:"audio,omitempty"`
	Grounding *GroundingMetadata `json:"groundingMetadata,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}
