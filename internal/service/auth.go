package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/session"
	apperrors "github.com/trimly/accounts/pkg/errors"
)

// Login methods reported in LoginResult.
const (
	MethodByCredentials = "byCredentials"
	MethodByToken       = "byToken"
)

// SignupInput holds the parameters for creating a new account.
type SignupInput struct {
	Email             string
	Password          string
	FirstName         string
	LastName          string
	Location          string
	PhoneNumber       string
	IsServiceProvider bool
}

// LoginInput holds the parameters for login. Exactly one proof of identity
// must be supplied: email+password, or a session token.
type LoginInput struct {
	Email    string
	Password string
	Token    string
}

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	SessionToken string          `json:"session_token,omitempty"`
	Account      *domain.Account `json:"account"`
	Method       string          `json:"method"`
}

// Signup creates a new account with a hashed password.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) error {
	if input.Email == "" {
		return apperrors.Validation("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return err
	}

	email := domain.NormalizeEmail(input.Email)

	hash, err := s.vault.Hash(input.Password)
	if err != nil {
		return collaborator("hash password", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Email:             email,
		PasswordHash:      hash,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Location:          input.Location,
		PhoneNumber:       input.PhoneNumber,
		IsServiceProvider: input.IsServiceProvider,
		BlockedEmails:     []string{},
		ServiceCatalog:    []domain.Service{},
		PaymentHistory:    []domain.PaymentRecord{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return collaborator("create account", err)
	}

	if err := s.producer.PublishAccountRegistered(ctx, account); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.registered event",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account created",
		slog.String("email", email),
		slog.Bool("is_service_provider", account.IsServiceProvider),
	)

	return nil
}

// Login authenticates with either credentials or a session token and
// dispatches accordingly. Supplying both proofs, or neither, is invalid.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	hasCredentials := input.Email != "" && input.Password != ""
	hasToken := input.Token != ""

	switch {
	case hasToken && (input.Email != "" || input.Password != ""):
		return nil, apperrors.Validation("supply either email and password or a session token, not both")
	case hasToken:
		return s.loginByToken(ctx, input.Token)
	case hasCredentials:
		return s.loginByCredentials(ctx, input.Email, input.Password)
	default:
		return nil, apperrors.Validation("email and password, or a session token, are required")
	}
}

func (s *AccountService) loginByCredentials(ctx context.Context, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, collaborator("find account", err)
	}

	if !s.vault.Compare(password, account.PasswordHash) {
		return nil, apperrors.Auth("invalid password")
	}

	token, err := s.sessions.Create(ctx, email)
	if err != nil {
		return nil, collaborator("create session", err)
	}

	s.logger.InfoContext(ctx, "login by credentials",
		slog.String("email", email),
	)

	return &LoginResult{
		SessionToken: token,
		Account:      account.Sanitize(),
		Method:       MethodByCredentials,
	}, nil
}

// loginByToken re-authenticates an existing session. The token stays valid;
// no new session is issued.
func (s *AccountService) loginByToken(ctx context.Context, token string) (*LoginResult, error) {
	email, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperrors.Auth("invalid or expired session token")
		}
		return nil, collaborator("resolve session", err)
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, collaborator("find account", err)
	}

	s.logger.InfoContext(ctx, "login by token",
		slog.String("email", email),
	)

	return &LoginResult{
		Account: account.Sanitize(),
		Method:  MethodByToken,
	}, nil
}

// Signout deletes the session. Deleting an unknown token is not an error.
func (s *AccountService) Signout(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.Validation("session token is required")
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return collaborator("delete session", err)
	}

	s.logger.InfoContext(ctx, "signed out")
	return nil
}

// ResetPassword verifies the old password and persists a hash of the new one.
func (s *AccountService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if email == "" {
		return apperrors.Validation("email is required")
	}
	if oldPassword == "" {
		return apperrors.Validation("old password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	email = domain.NormalizeEmail(email)

	creds, err := s.repo.GetCredentials(ctx, email)
	if err != nil {
		return collaborator("find account", err)
	}

	if !s.vault.Compare(oldPassword, creds.PasswordHash) {
		return apperrors.Auth("old password is incorrect")
	}

	hash, err := s.vault.Hash(newPassword)
	if err != nil {
		return collaborator("hash password", err)
	}

	if err := s.repo.SetPassword(ctx, email, hash); err != nil {
		return collaborator("set password", err)
	}

	s.logger.InfoContext(ctx, "password reset",
		slog.String("email", email),
	)

	return nil
}
