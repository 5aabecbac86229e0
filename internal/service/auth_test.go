package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/repository"
	apperrors "github.com/trimly/accounts/pkg/errors"
)

func TestSignup(t *testing.T) {
	t.Run("creates account with hashed password and normalized email", func(t *testing.T) {
		f := newFixture(t)

		var created *domain.Account
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*domain.Account)
			}).
			Return(nil)

		err := f.svc.Signup(context.Background(), SignupInput{
			Email:     "  New.Barber@Example.COM ",
			Password:  "secret1",
			FirstName: "Sam",
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "new.barber@example.com", created.Email)
		assert.NotEqual(t, "secret1", created.PasswordHash)
		assert.True(t, f.vault.Compare("secret1", created.PasswordHash))
		assert.NotNil(t, created.BlockedEmails)
		assert.NotNil(t, created.ServiceCatalog)
		assert.NotNil(t, created.PaymentHistory)
		assert.Equal(t, 1, f.events.registered)
		f.repo.AssertExpectations(t)
	})

	t.Run("rejects short password before touching the store", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Signup(context.Background(), SignupInput{
			Email:    "a@b.com",
			Password: "short",
		})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing email and missing password", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Signup(context.Background(), SignupInput{Password: "secret1"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		err = f.svc.Signup(context.Background(), SignupInput{Email: "a@b.com"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("surfaces duplicate email as conflict", func(t *testing.T) {
		f := newFixture(t)

		f.repo.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.Conflict("account", "email", "a@b.com"))

		err := f.svc.Signup(context.Background(), SignupInput{
			Email:    "a@b.com",
			Password: "secret1",
		})

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestLoginByCredentials(t *testing.T) {
	t.Run("issues a session token and sanitizes the account", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)

		f.repo.On("GetByEmail", mock.Anything, "barber@example.com").Return(account, nil)

		result, err := f.svc.Login(context.Background(), LoginInput{
			Email:    "Barber@Example.com",
			Password: "secret1",
		})

		require.NoError(t, err)
		assert.Equal(t, MethodByCredentials, result.Method)
		assert.NotEmpty(t, result.SessionToken)
		assert.Empty(t, result.Account.PasswordHash)

		// The issued token must resolve back to the same account.
		email, err := f.sessions.Resolve(context.Background(), result.SessionToken)
		require.NoError(t, err)
		assert.Equal(t, "barber@example.com", email)
	})

	t.Run("wrong password is an auth failure", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)

		f.repo.On("GetByEmail", mock.Anything, "barber@example.com").Return(account, nil)

		_, err := f.svc.Login(context.Background(), LoginInput{
			Email:    "barber@example.com",
			Password: "not-it",
		})

		assert.ErrorIs(t, err, apperrors.ErrAuth)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, apperrors.NotFound("account", "ghost@example.com"))

		_, err := f.svc.Login(context.Background(), LoginInput{
			Email:    "ghost@example.com",
			Password: "secret1",
		})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestLoginByToken(t *testing.T) {
	t.Run("resolves the session without issuing a new token", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)

		token, err := f.sessions.Create(context.Background(), account.Email)
		require.NoError(t, err)

		f.repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

		result, err := f.svc.Login(context.Background(), LoginInput{Token: token})

		require.NoError(t, err)
		assert.Equal(t, MethodByToken, result.Method)
		assert.Empty(t, result.SessionToken)
		assert.Equal(t, account.Email, result.Account.Email)
		assert.Empty(t, result.Account.PasswordHash)
	})

	t.Run("unknown token is an auth failure", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Login(context.Background(), LoginInput{Token: "nope"})

		assert.ErrorIs(t, err, apperrors.ErrAuth)
	})

	t.Run("providing both proofs is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Login(context.Background(), LoginInput{
			Email:    "a@b.com",
			Password: "secret1",
			Token:    "tok",
		})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("providing neither proof is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com"})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestSignout(t *testing.T) {
	t.Run("invalidates the session and is idempotent", func(t *testing.T) {
		f := newFixture(t)
		account := verifiedProviderAccount(t, f)

		token, err := f.sessions.Create(context.Background(), account.Email)
		require.NoError(t, err)

		require.NoError(t, f.svc.Signout(context.Background(), token))
		require.NoError(t, f.svc.Signout(context.Background(), token), "second signout must succeed")

		_, err = f.svc.Login(context.Background(), LoginInput{Token: token})
		assert.ErrorIs(t, err, apperrors.ErrAuth)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Signout(context.Background(), "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("replaces the stored hash when the old password matches", func(t *testing.T) {
		f := newFixture(t)
		oldHash := f.hashed(t, "secret1")

		f.repo.On("GetCredentials", mock.Anything, "barber@example.com").
			Return(&repository.Credentials{Email: "barber@example.com", PasswordHash: oldHash}, nil)

		var newHash string
		f.repo.On("SetPassword", mock.Anything, "barber@example.com", mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) {
				newHash = args.String(2)
			}).
			Return(nil)

		err := f.svc.ResetPassword(context.Background(), "Barber@Example.com", "secret1", "fresher1")

		require.NoError(t, err)
		assert.True(t, f.vault.Compare("fresher1", newHash))
		assert.False(t, f.vault.Compare("secret1", newHash))
	})

	t.Run("wrong old password leaves the credential untouched", func(t *testing.T) {
		f := newFixture(t)
		oldHash := f.hashed(t, "secret1")

		f.repo.On("GetCredentials", mock.Anything, "barber@example.com").
			Return(&repository.Credentials{Email: "barber@example.com", PasswordHash: oldHash}, nil)

		err := f.svc.ResetPassword(context.Background(), "barber@example.com", "wrong", "fresher1")

		assert.ErrorIs(t, err, apperrors.ErrAuth)
		f.repo.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("new password must meet the minimum length", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.ResetPassword(context.Background(), "barber@example.com", "secret1", "tiny")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCollaboratorWrapping(t *testing.T) {
	f := newFixture(t)

	f.repo.On("GetByEmail", mock.Anything, "barber@example.com").
		Return(nil, errors.New("connection refused"))

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "barber@example.com",
		Password: "secret1",
	})

	assert.ErrorIs(t, err, apperrors.ErrCollaborator)
}
