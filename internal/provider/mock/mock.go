// Package mock provides an in-memory payment provider for development and
// testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/trimly/accounts/internal/provider"
)

// Provider is an in-memory payment provider. Sub-accounts start without
// charge capability; EnableCharges flips one to charge-capable, mirroring a
// completed onboarding flow.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]bool
}

// NewProvider creates a new mock payment provider.
func NewProvider() *Provider {
	return &Provider{accounts: make(map[string]bool)}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// CreateAccount creates a sub-account that is not yet charge-capable.
func (p *Provider) CreateAccount(_ context.Context) (*provider.Account, error) {
	id := "acct_mock_" + uuid.New().String()

	p.mu.Lock()
	p.accounts[id] = false
	p.mu.Unlock()

	return &provider.Account{ID: id, ChargesEnabled: false}, nil
}

// GetAccount retrieves a sub-account.
func (p *Provider) GetAccount(_ context.Context, id string) (*provider.Account, error) {
	p.mu.Lock()
	enabled, ok := p.accounts[id]
	p.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("mock provider: no such account %q", id)
	}
	return &provider.Account{ID: id, ChargesEnabled: enabled}, nil
}

// OnboardingLink returns a deterministic onboarding URL.
func (p *Provider) OnboardingLink(_ context.Context, id string) (string, error) {
	p.mu.Lock()
	_, ok := p.accounts[id]
	p.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("mock provider: no such account %q", id)
	}
	return "https://onboarding.mock.local/" + id, nil
}

// CreatePrice registers a price object with a generated id.
func (p *Provider) CreatePrice(_ context.Context, name string, unitAmount int64) (string, error) {
	if name == "" {
		return "", fmt.Errorf("mock provider: price name is required")
	}
	if unitAmount < 0 {
		return "", fmt.Errorf("mock provider: negative unit amount %d", unitAmount)
	}
	return "price_mock_" + uuid.New().String(), nil
}

// EnableCharges marks the sub-account as charge-capable, simulating
// completed provider-side verification.
func (p *Provider) EnableCharges(id string) {
	p.mu.Lock()
	p.accounts[id] = true
	p.mu.Unlock()
}

// EnableChargesForAll marks every sub-account as charge-capable.
func (p *Provider) EnableChargesForAll() {
	p.mu.Lock()
	for id := range p.accounts {
		p.accounts[id] = true
	}
	p.mu.Unlock()
}
