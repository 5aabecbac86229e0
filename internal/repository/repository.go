package repository

import (
	"context"

	"github.com/trimly/accounts/internal/domain"
)

// ArrayField names a multi-valued account attribute that can be mutated
// through the array mutation protocol.
type ArrayField string

const (
	FieldBlockedEmails  ArrayField = "blocked_emails"
	FieldServiceCatalog ArrayField = "service_catalog"
	FieldPaymentHistory ArrayField = "payment_history"
)

// ArrayOp is the operation applied to an array field.
type ArrayOp string

const (
	OpInsert ArrayOp = "insert"
	OpDelete ArrayOp = "delete"
)

// ProfileUpdate enumerates the profile fields an update is allowed to touch.
// Nil pointers leave the stored value unchanged.
type ProfileUpdate struct {
	Location            *string
	FirstName           *string
	LastName            *string
	PhoneNumber         *string
	ProfileImage        *string
	FavoriteBarberEmail *string
	IsServiceProvider   *bool
}

// Credentials is the projection returned by GetCredentials: only the fields
// the authentication paths need.
type Credentials struct {
	Email        string
	PasswordHash string
}

// AccountRepository is the document-store contract for Account records.
// The store, not its callers, guarantees that each method is atomic per
// document; concurrent MutateArray calls on the same account must never
// lose an update.
type AccountRepository interface {
	// Create inserts a new account. Returns a conflict error when an
	// account with the same email already exists.
	Create(ctx context.Context, account *domain.Account) error

	// GetByEmail retrieves the full account document.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// GetCredentials retrieves only the email and password hash.
	GetCredentials(ctx context.Context, email string) (*Credentials, error)

	// UpdateProfile applies a partial profile update and returns the
	// updated account.
	UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*domain.Account, error)

	// SetPassword replaces the stored password hash.
	SetPassword(ctx context.Context, email, passwordHash string) error

	// LinkPaymentAccount records the payment-provider sub-account id.
	// The id is set at most once; linking an already-linked account is
	// a no-op for the stored id.
	LinkPaymentAccount(ctx context.Context, email, paymentAccountID string) error

	// MarkPaymentVerified flips the payment_verified flag to true. The
	// flag is one-way; nothing in this store resets it.
	MarkPaymentVerified(ctx context.Context, email string) error

	// MutateArray atomically inserts a value into, or deletes matching
	// values from, the named array field of the account identified by
	// email. Set-semantics fields (blocked_emails) deduplicate on
	// insert; log-semantics fields append unconditionally.
	MutateArray(ctx context.Context, email string, field ArrayField, op ArrayOp, value any) error
}
