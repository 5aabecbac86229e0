// Package service implements the account/commerce orchestration core. It
// owns no persistent state; accounts live in the document store and sessions
// in the session store. Every account value returned from this package has
// passed through domain.Account.Sanitize.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/provider"
	"github.com/trimly/accounts/internal/repository"
	"github.com/trimly/accounts/internal/session"
	"github.com/trimly/accounts/internal/vault"
	apperrors "github.com/trimly/accounts/pkg/errors"
)

// minPasswordLength is the minimum password length required at signup and
// password reset.
const minPasswordLength = 6

// EventPublisher publishes account domain events. Publishing failures are
// logged, never surfaced to callers.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, account *domain.Account) error
	PublishAccountUpdated(ctx context.Context, account *domain.Account) error
	PublishServiceCreated(ctx context.Context, email string, svc domain.Service) error
	PublishPaymentRecorded(ctx context.Context, email string, record domain.PaymentRecord) error
}

// AccountService implements the business logic for account, session,
// moderation, and service-lifecycle operations.
type AccountService struct {
	repo     repository.AccountRepository
	sessions session.Store
	vault    vault.Vault
	provider provider.Provider
	producer EventPublisher
	logger   *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	repo repository.AccountRepository,
	sessions session.Store,
	v vault.Vault,
	prov provider.Provider,
	producer EventPublisher,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		repo:     repo,
		sessions: sessions,
		vault:    v,
		provider: prov,
		producer: producer,
		logger:   logger,
	}
}

// collaborator converts untyped collaborator failures into a
// CollaboratorError while letting already-typed app errors pass through.
// Nothing untyped may cross the orchestrator boundary.
func collaborator(op string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Collaborator(op, err)
}

func validatePassword(password string) error {
	if password == "" {
		return apperrors.Validation("password is required")
	}
	if len(password) < minPasswordLength {
		return apperrors.Validation("password must be at least 6 characters")
	}
	return nil
}
