// Package credential owns the API-key bootstrap: deciding whether a
// usable credential exists, acquiring one, and remembering that a session
// connected before. The capability is selected once at startup instead of
// probing the environment on every call.
package credential

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrNoCredential = errors.New("no credential available")

// Provider is the key bootstrap capability.
type Provider interface {
	// HasCredential reports whether a usable key is present. The check
	// must be bounded by the context deadline.
	HasCredential(ctx context.Context) bool
	// AcquireCredential runs the acquisition flow for this capability.
	AcquireCredential(ctx context.Context) error
	// Source names the capability for status payloads and logs.
	Source() string
}

// LocallyManaged serves environments where the key is supplied directly
// (env var, .env file). Acquisition cannot conjure a key; it only
// validates that one exists.
type LocallyManaged struct {
	apiKey string
}

// NewLocallyManaged returns a locally-managed capability for the key.
func NewLocallyManaged(apiKey string) *LocallyManaged {
	return &LocallyManaged{apiKey: apiKey}
}

func (p *LocallyManaged) HasCredential(_ context.Context) bool {
	return p.apiKey != ""
}

func (p *LocallyManaged) AcquireCredential(_ context.Context) error {
	if p.apiKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrNoCredential)
	}
	return nil
}

func (p *LocallyManaged) Source() string { return "local" }

// HostManaged delegates key selection to a host bridge reachable over
// HTTP (the hosted-platform equivalent of the in-page bridge object).
type HostManaged struct {
	bridgeURL string
	client    *http.Client
}

// NewHostManaged returns a host-managed capability for the bridge URL.
func NewHostManaged(bridgeURL string) *HostManaged {
	return &HostManaged{
		bridgeURL: bridgeURL,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// HasCredential asks the bridge whether a key has been selected. Bridge
// errors and timeouts count as "no credential".
func (p *HostManaged) HasCredential(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.bridgeURL+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// AcquireCredential asks the bridge to run its key-selection flow.
func (p *HostManaged) AcquireCredential(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.bridgeURL+"/select", nil)
	if err != nil {
		return fmt.Errorf("bridge request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: bridge returned %d", ErrNoCredential, resp.StatusCode)
	}
	return nil
}

func (p *HostManaged) Source() string { return "host-bridge" }
