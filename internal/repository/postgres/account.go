package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/repository"
	apperrors "github.com/trimly/accounts/pkg/errors"
)

// DB is the subset of pgxpool.Pool used by the repository. pgxmock satisfies
// it too, which keeps the repository testable without a live database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements repository.AccountRepository on PostgreSQL.
// Multi-valued account attributes live in JSONB columns; every array
// mutation is a single UPDATE statement so atomicity per document comes
// from Postgres row-level locking rather than from this code.
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a new PostgreSQL-backed account repository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `email, password_hash, location, first_name, last_name,
		phone_number, profile_image, favorite_barber_email, is_service_provider,
		payment_account_id, payment_verified, blocked_emails, service_catalog,
		payment_history, created_at, updated_at`

// Create inserts a new account. A duplicate email surfaces as a conflict.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	blocked, catalog, history, err := marshalArrays(a)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (email, password_hash, location, first_name, last_name,
			phone_number, profile_image, favorite_barber_email, is_service_provider,
			payment_account_id, payment_verified, blocked_emails, service_catalog,
			payment_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.db.Exec(ctx, query,
		a.Email,
		a.PasswordHash,
		a.Location,
		a.FirstName,
		a.LastName,
		a.PhoneNumber,
		a.ProfileImage,
		a.FavoriteBarberEmail,
		a.IsServiceProvider,
		a.PaymentAccountID,
		a.PaymentVerified,
		blocked,
		catalog,
		history,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("account", "email", a.Email)
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByEmail retrieves the full account document.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1`

	return r.scanAccount(ctx, query, email)
}

// GetCredentials retrieves only the email and password hash projection.
func (r *AccountRepository) GetCredentials(ctx context.Context, email string) (*repository.Credentials, error) {
	query := `
		SELECT email, password_hash
		FROM accounts
		WHERE email = $1`

	var c repository.Credentials
	err := r.db.QueryRow(ctx, query, email).Scan(&c.Email, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("account", email)
		}
		return nil, fmt.Errorf("query credentials: %w", err)
	}

	return &c, nil
}

// UpdateProfile applies a partial update built from the non-nil fields of
// the update struct. Array columns are deliberately untouched so a profile
// update can never race with a concurrent array mutation.
func (r *AccountRepository) UpdateProfile(ctx context.Context, email string, update repository.ProfileUpdate) (*domain.Account, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	args = append(args, email)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.FirstName != nil {
		add("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		add("last_name", *update.LastName)
	}
	if update.PhoneNumber != nil {
		add("phone_number", *update.PhoneNumber)
	}
	if update.ProfileImage != nil {
		add("profile_image", *update.ProfileImage)
	}
	if update.FavoriteBarberEmail != nil {
		add("favorite_barber_email", *update.FavoriteBarberEmail)
	}
	if update.IsServiceProvider != nil {
		add("is_service_provider", *update.IsServiceProvider)
	}

	if len(sets) == 0 {
		return r.GetByEmail(ctx, email)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE accounts
		SET %s
		WHERE email = $1
		RETURNING `+accountColumns, strings.Join(sets, ", "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		return nil, apperrors.NotFound("account", email)
	}

	return scanAccountRow(rows)
}

// SetPassword replaces the stored password hash.
func (r *AccountRepository) SetPassword(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		WHERE email = $1`

	ct, err := r.db.Exec(ctx, query, email, passwordHash)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", email)
	}
	return nil
}

// LinkPaymentAccount records the payment-provider sub-account id. The id is
// written at most once; a second link attempt leaves the stored id alone.
func (r *AccountRepository) LinkPaymentAccount(ctx context.Context, email, paymentAccountID string) error {
	query := `
		UPDATE accounts
		SET payment_account_id = $2, updated_at = NOW()
		WHERE email = $1 AND payment_account_id = ''`

	ct, err := r.db.Exec(ctx, query, email, paymentAccountID)
	if err != nil {
		return fmt.Errorf("link payment account: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return r.requireAccount(ctx, email)
	}
	return nil
}

// MarkPaymentVerified flips the one-way payment_verified flag.
func (r *AccountRepository) MarkPaymentVerified(ctx context.Context, email string) error {
	query := `
		UPDATE accounts
		SET payment_verified = TRUE, updated_at = NOW()
		WHERE email = $1`

	ct, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return fmt.Errorf("mark payment verified: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", email)
	}
	return nil
}

// MutateArray atomically inserts into or deletes from the named JSONB array
// field. Each branch is a single UPDATE so two concurrent mutations on the
// same account serialize on the row lock and neither is lost.
func (r *AccountRepository) MutateArray(ctx context.Context, email string, field repository.ArrayField, op repository.ArrayOp, value any) error {
	column, setSemantics, err := arrayColumn(field)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal array value: %w", err)
	}

	switch op {
	case repository.OpInsert:
		return r.insertArrayElement(ctx, email, column, setSemantics, payload)
	case repository.OpDelete:
		return r.deleteArrayElement(ctx, email, column, payload)
	default:
		return apperrors.Validation(fmt.Sprintf("unknown array operation %q", op))
	}
}

func (r *AccountRepository) insertArrayElement(ctx context.Context, email, column string, setSemantics bool, payload []byte) error {
	var query string
	if setSemantics {
		// The containment guard makes concurrent duplicate inserts
		// collapse to a single element.
		query = fmt.Sprintf(`
			UPDATE accounts
			SET %s = %s || $2::jsonb, updated_at = NOW()
			WHERE email = $1 AND NOT %s @> $2::jsonb`, column, column, column)
	} else {
		query = fmt.Sprintf(`
			UPDATE accounts
			SET %s = %s || $2::jsonb, updated_at = NOW()
			WHERE email = $1`, column, column)
	}

	ct, err := r.db.Exec(ctx, query, email, string(payload))
	if err != nil {
		return fmt.Errorf("insert into %s: %w", column, err)
	}
	if ct.RowsAffected() == 0 {
		if setSemantics {
			// Zero rows is either a missing account or an
			// already-present element; only the former is an error.
			return r.requireAccount(ctx, email)
		}
		return apperrors.NotFound("account", email)
	}
	return nil
}

func (r *AccountRepository) deleteArrayElement(ctx context.Context, email, column string, payload []byte) error {
	// Elements matching the value by JSONB containment are removed; the
	// WHERE guard turns "nothing matched" into zero rows affected.
	query := fmt.Sprintf(`
		UPDATE accounts
		SET %s = COALESCE(
			(SELECT jsonb_agg(elem)
			 FROM jsonb_array_elements(%s) AS elem
			 WHERE NOT elem @> $2::jsonb),
			'[]'::jsonb), updated_at = NOW()
		WHERE email = $1 AND %s @> jsonb_build_array($2::jsonb)`, column, column, column)

	ct, err := r.db.Exec(ctx, query, email, string(payload))
	if err != nil {
		return fmt.Errorf("delete from %s: %w", column, err)
	}
	if ct.RowsAffected() == 0 {
		if err := r.requireAccount(ctx, email); err != nil {
			return err
		}
		return apperrors.NotFound("matching element in "+column, string(payload))
	}
	return nil
}

// requireAccount returns NotFound when no account exists for email.
func (r *AccountRepository) requireAccount(ctx context.Context, email string) error {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check account exists: %w", err)
	}
	if !exists {
		return apperrors.NotFound("account", email)
	}
	return nil
}

func (r *AccountRepository) scanAccount(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query account: %w", err)
		}
		return nil, apperrors.NotFound("account", fmt.Sprint(args[0]))
	}

	return scanAccountRow(rows)
}

func scanAccountRow(row pgx.Row) (*domain.Account, error) {
	var (
		a       domain.Account
		blocked []byte
		catalog []byte
		history []byte
	)

	err := row.Scan(
		&a.Email,
		&a.PasswordHash,
		&a.Location,
		&a.FirstName,
		&a.LastName,
		&a.PhoneNumber,
		&a.ProfileImage,
		&a.FavoriteBarberEmail,
		&a.IsServiceProvider,
		&a.PaymentAccountID,
		&a.PaymentVerified,
		&blocked,
		&catalog,
		&history,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if err := json.Unmarshal(blocked, &a.BlockedEmails); err != nil {
		return nil, fmt.Errorf("unmarshal blocked_emails: %w", err)
	}
	if err := json.Unmarshal(catalog, &a.ServiceCatalog); err != nil {
		return nil, fmt.Errorf("unmarshal service_catalog: %w", err)
	}
	if err := json.Unmarshal(history, &a.PaymentHistory); err != nil {
		return nil, fmt.Errorf("unmarshal payment_history: %w", err)
	}

	return &a, nil
}

func marshalArrays(a *domain.Account) (blocked, catalog, history []byte, err error) {
	blocked, err = json.Marshal(emptyIfNil(a.BlockedEmails))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal blocked_emails: %w", err)
	}
	catalog, err = json.Marshal(emptyServicesIfNil(a.ServiceCatalog))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal service_catalog: %w", err)
	}
	history, err = json.Marshal(emptyRecordsIfNil(a.PaymentHistory))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal payment_history: %w", err)
	}
	return blocked, catalog, history, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyServicesIfNil(s []domain.Service) []domain.Service {
	if s == nil {
		return []domain.Service{}
	}
	return s
}

func emptyRecordsIfNil(s []domain.PaymentRecord) []domain.PaymentRecord {
	if s == nil {
		return []domain.PaymentRecord{}
	}
	return s
}

func arrayColumn(field repository.ArrayField) (column string, setSemantics bool, err error) {
	switch field {
	case repository.FieldBlockedEmails:
		return "blocked_emails", true, nil
	case repository.FieldServiceCatalog:
		return "service_catalog", false, nil
	case repository.FieldPaymentHistory:
		return "payment_history", false, nil
	default:
		return "", false, apperrors.Validation(fmt.Sprintf("unknown array field %q", field))
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
