// Package session holds the ephemeral token-to-account bindings produced by
// credential logins. Stores must be safe for concurrent use on disjoint
// tokens and must never expose a partially written session.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Resolve when the token is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store maps opaque session tokens to account emails.
type Store interface {
	// Create issues a new opaque token bound to the given account email.
	Create(ctx context.Context, email string) (string, error)

	// Resolve returns the account email bound to the token, or
	// ErrNotFound when the token is unknown or expired.
	Resolve(ctx context.Context, token string) (string, error)

	// Delete removes the session. Deleting an unknown token is not an
	// error; sign-out is idempotent.
	Delete(ctx context.Context, token string) error
}
