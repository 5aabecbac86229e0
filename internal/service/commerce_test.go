package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/provider"
	"github.com/trimly/accounts/internal/repository"
	apperrors "github.com/trimly/accounts/pkg/errors"
)

func TestCreateService(t *testing.T) {
	t.Run("verified provider gets a price and a catalog entry", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)

		f.repo.On("GetByEmail", mock.Anything, "barber@example.com").Return(account, nil)
		f.provider.On("CreatePrice", mock.Anything, "Fade", int64(2500)).Return("price_1", nil)
		f.repo.On("MutateArray", mock.Anything, "barber@example.com",
			repository.FieldServiceCatalog, repository.OpInsert,
			domain.Service{Name: "Fade", Cost: 25, Duration: 30, PriceID: "price_1"}).
			Return(nil)

		result, err := f.svc.CreateService(context.Background(),
			CreateServiceInput{Name: "Fade", Cost: 25, Duration: 30}, "Barber@Example.com")

		require.NoError(t, err)
		assert.Equal(t, "price_1", result.PriceID)
		assert.False(t, result.VerificationRequired)
		assert.Empty(t, result.OnboardingURL)
		assert.Equal(t, 1, f.events.created)

		f.provider.AssertNotCalled(t, "CreateAccount", mock.Anything)
		f.provider.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
	})

	t.Run("unlinked account is linked and sent to onboarding", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)
		account.PaymentAccountID = ""
		account.PaymentVerified = false

		f.repo.On("GetByEmail", mock.Anything, "barber@example.com").Return(account, nil)
		f.provider.On("CreateAccount", mock.Anything).
			Return(&provider.Account{ID: "acct_new", ChargesEnabled: false}, nil)
		f.repo.On("LinkPaymentAccount", mock.Anything, "barber@example.com", "acct_new").Return(nil)
		f.provider.On("GetAccount", mock.Anything, "acct_new").
			Return(&provider.Account{ID: "acct_new", ChargesEnabled: false}, nil)
		f.provider.On("OnboardingLink", mock.Anything, "acct_new").
			Return("https://pay.example.com/onboard/acct_new", nil)

		result, err := f.svc.CreateService(context.Background(),
			CreateServiceInput{Name: "Fade", Cost: 25, Duration: 30}, "barber@example.com")

		require.NoError(t, err)
		assert.True(t, result.VerificationRequired)
		assert.Equal(t, "https://pay.example.com/onboard/acct_new", result.OnboardingURL)
		assert.Empty(t, result.PriceID)

		// Nothing was published and no price was created.
		assert.Equal(t, 0, f.events.created)
		f.provider.AssertNotCalled(t, "CreatePrice", mock.Anything, mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "MutateArray",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.repo.AssertExpectations(t)
	})

	t.Run("linked account that became chargeable is marked verified", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)
		account.PaymentVerified = false

		f.repo.On("GetByEmail", mock.Anything, "barber@example.com").Return(account, nil)
		f.provider.On("GetAccount", mock.Anything, "acct_1").
			Return(&provider.Account{ID: "acct_1", ChargesEnabled: true}, nil)
		f.repo.On("MarkPaymentVerified", mock.Anything, "barber@example.com").Return(nil)
		f.provider.On("CreatePrice", mock.Anything, "Fade", int64(2500)).Return("price_1", nil)
		f.repo.On("MutateArray", mock.Anything, "barber@example.com",
			repository.FieldServiceCatalog, repository.OpInsert,
			mock.AnythingOfType("domain.Service")).
			Return(nil)

		result, err := f.svc.CreateService(context.Background(),
			CreateServiceInput{Name: "Fade", Cost: 25, Duration: 30}, "barber@example.com")

		require.NoError(t, err)
		assert.Equal(t, "price_1", result.PriceID)
		f.repo.AssertExpectations(t)
		f.provider.AssertNotCalled(t, "CreateAccount", mock.Anything)
	})

	t.Run("cost fractions are truncated to minor units", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)

		f.repo.On("GetByEmail", mock.Anything, "barber@example.com").Return(account, nil)
		f.provider.On("CreatePrice", mock.Anything, "Trim", int64(1999)).Return("price_2", nil)
		f.repo.On("MutateArray", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil)

		_, err := f.svc.CreateService(context.Background(),
			CreateServiceInput{Name: "Trim", Cost: 19.999, Duration: 15}, "barber@example.com")

		require.NoError(t, err)
		f.provider.AssertExpectations(t)
	})

	t.Run("rejects invalid input before any collaborator call", func(t *testing.T) {
		f := newFixture(t)

		cases := []CreateServiceInput{
			{Name: "", Cost: 25, Duration: 30},
			{Name: "Fade", Cost: 0, Duration: 30},
			{Name: "Fade", Cost: -5, Duration: 30},
			{Name: "Fade", Cost: 25, Duration: 0},
		}
		for _, input := range cases {
			_, err := f.svc.CreateService(context.Background(), input, "barber@example.com")
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		}
		f.repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("catalog append failure leaves the provider price orphaned", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)

		f.repo.On("GetByEmail", mock.Anything, "barber@example.com").Return(account, nil)
		f.provider.On("CreatePrice", mock.Anything, "Fade", int64(2500)).Return("price_1", nil)
		f.repo.On("MutateArray", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(apperrors.Collaborator("document store", assert.AnError))

		_, err := f.svc.CreateService(context.Background(),
			CreateServiceInput{Name: "Fade", Cost: 25, Duration: 30}, "barber@example.com")

		assert.ErrorIs(t, err, apperrors.ErrCollaborator)
		// The price was created; no compensating call retires it.
		f.provider.AssertCalled(t, "CreatePrice", mock.Anything, "Fade", int64(2500))
		assert.Equal(t, 0, f.events.created)
	})
}

func TestDeleteService(t *testing.T) {
	t.Run("removes the catalog entry by price id", func(t *testing.T) {
		f := newFixture(t)

		f.repo.On("MutateArray", mock.Anything, "barber@example.com",
			repository.FieldServiceCatalog, repository.OpDelete,
			map[string]string{"price_id": "price_1"}).
			Return(nil)

		err := f.svc.DeleteService(context.Background(), "barber@example.com", "price_1")

		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("unknown price id is not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.On("MutateArray", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(apperrors.NotFound("matching element in service_catalog", "price_x"))

		err := f.svc.DeleteService(context.Background(), "barber@example.com", "price_x")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("requires a price id", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.DeleteService(context.Background(), "barber@example.com", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestUpdateService(t *testing.T) {
	t.Run("replaces the entry as delete then create", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)

		f.repo.On("MutateArray", mock.Anything, "barber@example.com",
			repository.FieldServiceCatalog, repository.OpDelete,
			map[string]string{"price_id": "price_old"}).
			Return(nil)
		f.repo.On("GetByEmail", mock.Anything, "barber@example.com").Return(account, nil)
		f.provider.On("CreatePrice", mock.Anything, "Fade deluxe", int64(3000)).Return("price_new", nil)
		f.repo.On("MutateArray", mock.Anything, "barber@example.com",
			repository.FieldServiceCatalog, repository.OpInsert,
			domain.Service{Name: "Fade deluxe", Cost: 30, Duration: 45, PriceID: "price_new"}).
			Return(nil)

		result, err := f.svc.UpdateService(context.Background(), "barber@example.com", "price_old",
			CreateServiceInput{Name: "Fade deluxe", Cost: 30, Duration: 45})

		require.NoError(t, err)
		assert.Equal(t, "price_new", result.PriceID)
		f.repo.AssertExpectations(t)
	})

	t.Run("invalid input is rejected before the delete", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.UpdateService(context.Background(), "barber@example.com", "price_old",
			CreateServiceInput{Name: "", Cost: 30, Duration: 45})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		f.repo.AssertNotCalled(t, "MutateArray",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete failure stops the replacement", func(t *testing.T) {
		f := newFixture(t)

		f.repo.On("MutateArray", mock.Anything, mock.Anything, mock.Anything,
			repository.OpDelete, mock.Anything).
			Return(apperrors.NotFound("matching element in service_catalog", "price_old"))

		_, err := f.svc.UpdateService(context.Background(), "barber@example.com", "price_old",
			CreateServiceInput{Name: "Fade", Cost: 30, Duration: 45})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		f.provider.AssertNotCalled(t, "CreatePrice", mock.Anything, mock.Anything, mock.Anything)
	})
}
