// Package provider defines the payment-provider contract consumed by the
// account service: sub-account creation, charge-capability checks,
// onboarding links, and price objects for sellable services.
package provider

import "context"

// Account is a payment-provider sub-account linked to a marketplace account.
type Account struct {
	ID             string
	ChargesEnabled bool
}

// Provider is the interface for payment-provider integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// CreateAccount creates a new sub-account for a service provider.
	CreateAccount(ctx context.Context) (*Account, error)

	// GetAccount retrieves a sub-account and its charge-capability.
	GetAccount(ctx context.Context, id string) (*Account, error)

	// OnboardingLink returns a URL where the sub-account owner completes
	// identity verification.
	OnboardingLink(ctx context.Context, id string) (string, error)

	// CreatePrice registers a price object for a named service. unitAmount
	// is in minor currency units (cents).
	CreatePrice(ctx context.Context, name string, unitAmount int64) (string, error)
}
