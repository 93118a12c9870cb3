package credential

import (
	"context"
	"log"
	"time"
)

// Status summarizes the bootstrap state for the front-end.
type Status struct {
	Connected bool   `json:"connected"`
	Source    string `json:"source"`
}

// Manager combines the selected capability with the persisted connection
// flag and is the only credential surface the rest of the service sees.
type Manager struct {
	provider     Provider
	flag         *ConnectionFlag
	probeTimeout time.Duration
}

// NewManager wires a manager around the capability chosen at startup.
func NewManager(provider Provider, flag *ConnectionFlag, probeTimeout time.Duration) *Manager {
	if probeTimeout <= 0 {
		probeTimeout = time.Second
	}
	return &Manager{provider: provider, flag: flag, probeTimeout: probeTimeout}
}

// Status reports whether a credential is believed to be available. The
// persisted flag short-circuits the probe; otherwise the capability is
// asked, bounded by the probe timeout.
func (m *Manager) Status(ctx context.Context) Status {
	if m.flag.Load() {
		return Status{Connected: true, Source: m.provider.Source()}
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	return Status{
		Connected: m.provider.HasCredential(probeCtx),
		Source:    m.provider.Source(),
	}
}

// Connect runs the acquisition flow and, on success, remembers that this
// installation connected.
func (m *Manager) Connect(ctx context.Context) error {
	if err := m.provider.AcquireCredential(ctx); err != nil {
		return err
	}
	m.flag.Set(true)
	return nil
}

// Invalidate is the credential-required signal target: it clears the
// persisted flag so the next startup re-runs the bootstrap.
func (m *Manager) Invalidate(reason string) {
	log.Printf("[credential] invalidated: %s", reason)
	m.flag.Clear()
}
