package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/repository"
	apperrors "github.com/trimly/accounts/pkg/errors"
)

// ProfileUpdateInput holds the profile fields an account owner may change.
// Nil pointers leave the stored value unchanged.
type ProfileUpdateInput struct {
	Location            *string
	FirstName           *string
	LastName            *string
	PhoneNumber         *string
	ProfileImage        *string
	FavoriteBarberEmail *string
	IsServiceProvider   *bool
}

// RecordPaymentInput holds the parameters for appending a completed
// transaction to a provider's payment history.
type RecordPaymentInput struct {
	ProviderEmail string
	PayerEmail    string
	Amount        float64
	ServiceNames  []string
}

// GetAccount returns the sanitized account for the given email.
func (s *AccountService) GetAccount(ctx context.Context, email string) (*domain.Account, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}

	account, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, collaborator("find account", err)
	}
	return account.Sanitize(), nil
}

// UpdateProfile applies a typed partial update to the account's profile
// fields and returns the sanitized result.
func (s *AccountService) UpdateProfile(ctx context.Context, email string, input ProfileUpdateInput) (*domain.Account, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}

	email = domain.NormalizeEmail(email)

	if input.FavoriteBarberEmail != nil {
		normalized := domain.NormalizeEmail(*input.FavoriteBarberEmail)
		input.FavoriteBarberEmail = &normalized
	}

	account, err := s.repo.UpdateProfile(ctx, email, repository.ProfileUpdate{
		Location:            input.Location,
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		PhoneNumber:         input.PhoneNumber,
		ProfileImage:        input.ProfileImage,
		FavoriteBarberEmail: input.FavoriteBarberEmail,
		IsServiceProvider:   input.IsServiceProvider,
	})
	if err != nil {
		return nil, collaborator("update profile", err)
	}

	if err := s.producer.PublishAccountUpdated(ctx, account); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.updated event",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "profile updated",
		slog.String("email", email),
	)

	return account.Sanitize(), nil
}

// BlockUser adds targetEmail to the account's blocklist. The blocklist has
// set semantics; blocking the same email twice leaves a single entry.
func (s *AccountService) BlockUser(ctx context.Context, email, targetEmail string) error {
	if email == "" || targetEmail == "" {
		return apperrors.Validation("email and target email are required")
	}

	email = domain.NormalizeEmail(email)
	targetEmail = domain.NormalizeEmail(targetEmail)

	err := s.repo.MutateArray(ctx, email, repository.FieldBlockedEmails, repository.OpInsert, targetEmail)
	if err != nil {
		return collaborator("block user", err)
	}

	s.logger.InfoContext(ctx, "user blocked",
		slog.String("email", email),
		slog.String("target", targetEmail),
	)

	return nil
}

// UnblockUser removes targetEmail from the account's blocklist.
func (s *AccountService) UnblockUser(ctx context.Context, email, targetEmail string) error {
	if email == "" || targetEmail == "" {
		return apperrors.Validation("email and target email are required")
	}

	email = domain.NormalizeEmail(email)
	targetEmail = domain.NormalizeEmail(targetEmail)

	err := s.repo.MutateArray(ctx, email, repository.FieldBlockedEmails, repository.OpDelete, targetEmail)
	if err != nil {
		return collaborator("unblock user", err)
	}

	s.logger.InfoContext(ctx, "user unblocked",
		slog.String("email", email),
		slog.String("target", targetEmail),
	)

	return nil
}

// BlockedUsers returns the account's blocklist.
func (s *AccountService) BlockedUsers(ctx context.Context, email string) ([]string, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}

	account, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, collaborator("find account", err)
	}
	return account.BlockedEmails, nil
}

// RecordPayment appends a completed transaction to the provider's payment
// history. History is a log; records are never deleted.
func (s *AccountService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.PaymentRecord, error) {
	if input.ProviderEmail == "" {
		return nil, apperrors.Validation("provider email is required")
	}
	if input.PayerEmail == "" {
		return nil, apperrors.Validation("payer email is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.Validation("amount must be greater than zero")
	}

	providerEmail := domain.NormalizeEmail(input.ProviderEmail)
	payerEmail := domain.NormalizeEmail(input.PayerEmail)

	record := domain.PaymentRecord{
		ID:           newPaymentID(providerEmail, payerEmail),
		Date:         time.Now().UTC(),
		Amount:       input.Amount,
		ServiceNames: input.ServiceNames,
	}

	err := s.repo.MutateArray(ctx, providerEmail, repository.FieldPaymentHistory, repository.OpInsert, record)
	if err != nil {
		return nil, collaborator("record payment", err)
	}

	if err := s.producer.PublishPaymentRecorded(ctx, providerEmail, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.payment_recorded event",
			slog.String("email", providerEmail),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "payment recorded",
		slog.String("email", providerEmail),
		slog.String("payment_id", record.ID),
		slog.Float64("amount", record.Amount),
	)

	return &record, nil
}

// PaymentHistory returns the account's completed-transaction log.
func (s *AccountService) PaymentHistory(ctx context.Context, email string) ([]domain.PaymentRecord, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}

	account, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, collaborator("find account", err)
	}
	return account.PaymentHistory, nil
}

// newPaymentID builds a payment identifier from the two parties, the
// timestamp, and a random fragment. The uuid fragment makes collisions
// between records created in the same nanosecond vanishingly unlikely.
func newPaymentID(providerEmail, payerEmail string) string {
	return fmt.Sprintf("%s:%s:%d:%s",
		providerEmail, payerEmail, time.Now().UnixNano(), uuid.New().String()[:8])
}
