package chat

import "time"

// AllLocalities is the sentinel locality focus meaning "no filter": the
// formatter must pass utterances through untouched when it is active.
const AllLocalities = "All Noosa"

// Session captures one transient concierge conversation and its
// presentation preferences.
type Session struct {
	ID            string    `json:"id"`
	LocalityFocus string    `json:"localityFocus"`
	VoiceResponse bool      `json:"voiceResponse"`
	CreatedAt     time.Time `json:"createdAt"`
}
