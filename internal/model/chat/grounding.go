package chat

// GroundingSource is one citation candidate the search or maps tool
// attached to a generated reply.
type GroundingSource struct {
	URI     string `json:"uri"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// GroundingChunk wraps a citation candidate with its origin. Exactly one
// of Web or Maps is expected to be set.
type GroundingChunk struct {
	Web  *GroundingSource `json:"web,omitempty"`
	Maps *GroundingSource `json:"maps,omitempty"`
}

// Title returns the candidate title, preferring the maps source.
func (c GroundingChunk) Title() string {
	if c.Maps != nil && c.Maps.Title != "" {
		return c.Maps.Title
	}
	if c.Web != nil {
		return c.Web.Title
	}
	return ""
}

// URI returns the candidate link, preferring the maps source.
func (c GroundingChunk) URI() string {
	if c.Maps != nil && c.Maps.URI != "" {
		return c.Maps.URI
	}
	if c.Web != nil {
		return c.Web.URI
	}
	return ""
}

// GroundingMetadata carries everything the generation tools reported for
// one reply. It is stored verbatim on the owning message; filtering for
// display happens at render time.
type GroundingMetadata struct {
	GroundingChunks  []GroundingChunk `json:"groundingChunks,omitempty"`
	WebSearchQueries []string         `json:"webSearchQueries,omitempty"`
}
