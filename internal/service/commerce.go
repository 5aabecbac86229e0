package service

import (
	"context"
	"log/slog"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/repository"
	apperrors "github.com/trimly/accounts/pkg/errors"
)

// CreateServiceInput holds the parameters for publishing a sellable service.
type CreateServiceInput struct {
	Name     string
	Cost     float64
	Duration int
}

// CreateServiceResult is the outcome of CreateService. When
// VerificationRequired is set the service was NOT created; the caller must
// send the user to OnboardingURL and retry after provider-side verification.
type CreateServiceResult struct {
	PriceID              string `json:"price_id,omitempty"`
	VerificationRequired bool   `json:"verification_required"`
	OnboardingURL        string `json:"onboarding_url,omitempty"`
}

// CreateService publishes a sellable service for the provider account,
// walking the payment linkage state machine as needed:
// Unlinked -> Linked(unverified) -> Verified.
//
// The provider-price creation and the catalog append are independent calls
// with no compensating transaction: if the append fails after the price was
// created, the price object is orphaned at the payment provider. That gap is
// deliberate and must not be papered over with a rollback.
func (s *AccountService) CreateService(ctx context.Context, input CreateServiceInput, email string) (*CreateServiceResult, error) {
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if input.Name == "" {
		return nil, apperrors.Validation("service name is required")
	}
	if input.Cost <= 0 {
		return nil, apperrors.Validation("service cost must be greater than zero")
	}
	if input.Duration <= 0 {
		return nil, apperrors.Validation("service duration must be greater than zero")
	}

	email = domain.NormalizeEmail(email)

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, collaborator("find account", err)
	}

	onboardingURL, ready, err := s.ensureChargeable(ctx, account)
	if err != nil {
		return nil, err
	}
	if !ready {
		s.logger.InfoContext(ctx, "provider verification required",
			slog.String("email", email),
			slog.String("payment_account_id", account.PaymentAccountID),
		)
		return &CreateServiceResult{
			VerificationRequired: true,
			OnboardingURL:        onboardingURL,
		}, nil
	}

	priceID, err := s.provider.CreatePrice(ctx, input.Name, minorUnits(input.Cost))
	if err != nil {
		return nil, collaborator("create price", err)
	}

	svc := domain.Service{
		Name:     input.Name,
		Cost:     input.Cost,
		Duration: input.Duration,
		PriceID:  priceID,
	}

	if err := s.repo.MutateArray(ctx, email, repository.FieldServiceCatalog, repository.OpInsert, svc); err != nil {
		// The price object already exists at the provider; it stays
		// orphaned there rather than being retired here.
		s.logger.ErrorContext(ctx, "catalog append failed after price creation",
			slog.String("email", email),
			slog.String("price_id", priceID),
			slog.String("error", err.Error()),
		)
		return nil, collaborator("append service to catalog", err)
	}

	if err := s.producer.PublishServiceCreated(ctx, email, svc); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.service_created event",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "service created",
		slog.String("email", email),
		slog.String("name", svc.Name),
		slog.String("price_id", priceID),
	)

	return &CreateServiceResult{PriceID: priceID}, nil
}

// DeleteService removes the catalog entry matching priceID. The price object
// at the payment provider is deliberately left in place so past payment
// records keep a resolvable price reference.
func (s *AccountService) DeleteService(ctx context.Context, email, priceID string) error {
	if email == "" {
		return apperrors.Validation("email is required")
	}
	if priceID == "" {
		return apperrors.Validation("price id is required")
	}

	email = domain.NormalizeEmail(email)

	err := s.repo.MutateArray(ctx, email, repository.FieldServiceCatalog, repository.OpDelete,
		map[string]string{"price_id": priceID})
	if err != nil {
		return collaborator("delete service", err)
	}

	s.logger.InfoContext(ctx, "service deleted",
		slog.String("email", email),
		slog.String("price_id", priceID),
	)

	return nil
}

// UpdateService replaces a catalog entry as delete-then-create. The two
// steps are not atomic: if the create fails after the delete succeeded, the
// service is gone and is not restored. Callers that need stronger semantics
// must retry the create.
func (s *AccountService) UpdateService(ctx context.Context, email, priceID string, input CreateServiceInput) (*CreateServiceResult, error) {
	// Validate before deleting so a bad payload cannot destroy the entry.
	if input.Name == "" {
		return nil, apperrors.Validation("service name is required")
	}
	if input.Cost <= 0 {
		return nil, apperrors.Validation("service cost must be greater than zero")
	}
	if input.Duration <= 0 {
		return nil, apperrors.Validation("service duration must be greater than zero")
	}

	if err := s.DeleteService(ctx, email, priceID); err != nil {
		return nil, err
	}

	return s.CreateService(ctx, input, email)
}

// ensureChargeable walks the payment linkage state machine for the account.
// It links a sub-account on first use, then checks charge-capability with
// the provider. ready is false when onboarding is still outstanding, in
// which case onboardingURL is set. The verified flag, once persisted, is
// never reset here.
func (s *AccountService) ensureChargeable(ctx context.Context, account *domain.Account) (onboardingURL string, ready bool, err error) {
	if account.PaymentVerified {
		return "", true, nil
	}

	if !account.IsPaymentLinked() {
		sub, err := s.provider.CreateAccount(ctx)
		if err != nil {
			return "", false, collaborator("create provider account", err)
		}
		if err := s.repo.LinkPaymentAccount(ctx, account.Email, sub.ID); err != nil {
			return "", false, collaborator("link payment account", err)
		}
		account.PaymentAccountID = sub.ID

		s.logger.InfoContext(ctx, "payment account linked",
			slog.String("email", account.Email),
			slog.String("payment_account_id", sub.ID),
		)
	}

	sub, err := s.provider.GetAccount(ctx, account.PaymentAccountID)
	if err != nil {
		return "", false, collaborator("get provider account", err)
	}

	if !sub.ChargesEnabled {
		url, err := s.provider.OnboardingLink(ctx, account.PaymentAccountID)
		if err != nil {
			return "", false, collaborator("get onboarding link", err)
		}
		return url, false, nil
	}

	if err := s.repo.MarkPaymentVerified(ctx, account.Email); err != nil {
		return "", false, collaborator("mark payment verified", err)
	}
	account.PaymentVerified = true

	s.logger.InfoContext(ctx, "payment account verified",
		slog.String("email", account.Email),
		slog.String("payment_account_id", account.PaymentAccountID),
	)

	return "", true, nil
}

// minorUnits converts a major-unit cost to minor currency units. The
// fraction is truncated, not rounded.
func minorUnits(cost float64) int64 {
	return int64(cost * 100)
}
