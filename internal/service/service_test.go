package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/provider"
	"github.com/trimly/accounts/internal/repository"
	"github.com/trimly/accounts/internal/session"
	"github.com/trimly/accounts/internal/vault"
)

// --- Mock Account Repository ---

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) GetCredentials(ctx context.Context, email string) (*repository.Credentials, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Credentials), args.Error(1)
}

func (m *mockAccountRepository) UpdateProfile(ctx context.Context, email string, update repository.ProfileUpdate) (*domain.Account, error) {
	args := m.Called(ctx, email, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) SetPassword(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

func (m *mockAccountRepository) LinkPaymentAccount(ctx context.Context, email, paymentAccountID string) error {
	args := m.Called(ctx, email, paymentAccountID)
	return args.Error(0)
}

func (m *mockAccountRepository) MarkPaymentVerified(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockAccountRepository) MutateArray(ctx context.Context, email string, field repository.ArrayField, op repository.ArrayOp, value any) error {
	args := m.Called(ctx, email, field, op, value)
	return args.Error(0)
}

// --- Mock Payment Provider ---

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) CreateAccount(ctx context.Context) (*provider.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Account), args.Error(1)
}

func (m *mockProvider) GetAccount(ctx context.Context, id string) (*provider.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Account), args.Error(1)
}

func (m *mockProvider) OnboardingLink(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreatePrice(ctx context.Context, name string, unitAmount int64) (string, error) {
	args := m.Called(ctx, name, unitAmount)
	return args.String(0), args.Error(1)
}

// --- Stub Event Publisher ---

type stubPublisher struct {
	registered int
	updated    int
	created    int
	recorded   int
}

func (p *stubPublisher) PublishAccountRegistered(context.Context, *domain.Account) error {
	p.registered++
	return nil
}

func (p *stubPublisher) PublishAccountUpdated(context.Context, *domain.Account) error {
	p.updated++
	return nil
}

func (p *stubPublisher) PublishServiceCreated(context.Context, string, domain.Service) error {
	p.created++
	return nil
}

func (p *stubPublisher) PublishPaymentRecorded(context.Context, string, domain.PaymentRecord) error {
	p.recorded++
	return nil
}

// --- Fixture ---

type fixture struct {
	svc      *AccountService
	repo     *mockAccountRepository
	provider *mockProvider
	sessions *session.MemoryStore
	vault    *vault.Bcrypt
	events   *stubPublisher
}

// newFixture wires the service with mocked repo/provider and real in-memory
// session store and bcrypt vault (minimum cost, for speed).
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:     new(mockAccountRepository),
		provider: new(mockProvider),
		sessions: session.NewMemoryStore(time.Hour),
		vault:    vault.NewBcrypt(4),
		events:   &stubPublisher{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewAccountService(f.repo, f.sessions, f.vault, f.provider, f.events, logger)
	return f
}

func (f *fixture) hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := f.vault.Hash(password)
	require.NoError(t, err)
	return hash
}

func verifiedProviderAccount(t *testing.T, f *fixture) *domain.Account {
	t.Helper()
	return &domain.Account{
		Email:             "barber@example.com",
		PasswordHash:      f.hashed(t, "secret1"),
		IsServiceProvider: true,
		PaymentAccountID:  "acct_1",
		PaymentVerified:   true,
		BlockedEmails:     []string{},
		ServiceCatalog:    []domain.Service{},
		PaymentHistory:    []domain.PaymentRecord{},
	}
}
