package locality

import "strings"

// Store exposes locality retrieval for HTTP handlers.
type Store interface {
	List() []Locality
	FindByName(name string) (Locality, bool)
}

// MemoryStore implements Store with an in-memory slice; the catalog is
// fixed for the life of the process.
type MemoryStore struct {
	items []Locality
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied localities.
func NewMemoryStore(items []Locality) *MemoryStore {
	return &MemoryStore{items: append([]Locality(nil), items...)}
}

// List returns the region catalog.
func (s *MemoryStore) List() []Locality {
	return append([]Locality(nil), s.items...)
}

// FindByName looks up a locality by its display name, case-insensitively.
func (s *MemoryStore) FindByName(name string) (Locality, bool) {
	for _, item := range s.items {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return Locality{}, false
}
