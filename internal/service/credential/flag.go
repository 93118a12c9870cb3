package credential

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

// ConnectionFlag persists the single "previously connected" boolean. It
// lets startup skip a redundant bridge probe and is cleared whenever an
// auth failure occurs.
type ConnectionFlag struct {
	mu   sync.Mutex
	path string
}

type flagState struct {
	Connected bool `json:"connected"`
}

// NewConnectionFlag returns a flag persisted at path.
func NewConnectionFlag(path string) *ConnectionFlag {
	return &ConnectionFlag{path: path}
}

// Load reads the flag; a missing or unreadable state file means false.
func (f *ConnectionFlag) Load() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}
	var state flagState
	if err := json.Unmarshal(data, &state); err != nil {
		return false
	}
	return state.Connected
}

// Set persists the flag. Write failures are logged, not fatal: the flag
// is an optimization, not a requirement.
func (f *ConnectionFlag) Set(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(flagState{Connected: connected})
	if err != nil {
		return
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		log.Printf("[credential] failed to persist connection flag: %v", err)
	}
}

// Clear removes the persisted flag.
func (f *ConnectionFlag) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		log.Printf("[credential] failed to clear connection flag: %v", err)
	}
}
