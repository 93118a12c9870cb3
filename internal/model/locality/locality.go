package locality

// Locality describes one of the Noosa regions the concierge can focus on.
type Locality struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Blurb      string   `json:"blurb"`
	Highlights []string `json:"highlights,omitempty"`
}

// Seed provides the region catalog the front-end renders as filter chips.
// The first entry is the "no filter" sentinel.
func Seed() []Locality {
	return []Locality{
		{
			ID:    "all-noosa",
			Name:  "All Noosa",
			Blurb: "The whole region, from Main Beach to the hinterland.",
		},
		{
			ID:         "hastings-st",
			Name:       "Hastings St",
			Blurb:      "Noosa Heads dining, shopping, Main Beach and the National Park walks.",
			Highlights: []string{"dining", "shopping", "coastal walks", "surfing"},
		},
		{
			ID:         "noosa-junction",
			Name:       "Noosa Junction",
			Blurb:      "Local buzz, cinemas, the transit hub and trendy boutique bars.",
			Highlights: []string{"nightlife", "cinemas", "boutique bars"},
		},
		{
			ID:         "noosaville",
			Name:       "Noosaville",
			Blurb:      "Gympie Terrace, the Noosa River and refined riverfront dining.",
			Highlights: []string{"boating", "water sports", "riverfront dining"},
		},
		{
			ID:         "sunshine-beach",
			Name:       "Sunshine Beach",
			Blurb:      "Elite surf breaks, bohemian village vibes and hilltop stays.",
			Highlights: []string{"surf breaks", "village vibes", "hilltop stays"},
		},
		{
			ID:         "hinterland",
			Name:       "Hinterland",
			Blurb:      "Eumundi Markets, Cooroy and Pomona heritage, hiking and produce.",
			Highlights: []string{"markets", "hiking", "artisan produce"},
		},
	}
}
