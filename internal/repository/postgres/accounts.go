package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

const uniqueViolationCode = "23505"

var accountColumns = []string{
	"id",
	"handle",
	"email",
	"password_hash",
	"nickname",
	"gender",
	"phone_number",
	"active",
	"email_verified",
	"phone_verified",
	"verification_code",
	"code_issued_at",
	"created_at",
	"updated_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewAccountRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	repo := &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     func() time.Time { return time.Now().UTC() },
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	if tx == nil {
		return r
	}
	return &AccountRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
		now:     r.now,
	}
}

// Create inserts a new account row. Duplicate handles and emails surface as
// repository.ErrDuplicateHandle and repository.ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	query := r.builder.Insert("accounts").
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Handle,
			account.Email,
			account.PasswordHash,
			account.Nickname,
			genderValue(account.Gender),
			account.PhoneNumber,
			account.Active,
			account.EmailVerified,
			account.PhoneVerified,
			challengeValue(account.VerificationCode),
			account.CodeIssuedAt,
			account.CreatedAt,
			account.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return mapAccountConstraint(err, "insert account")
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByHandle retrieves an account by its login handle.
func (r *AccountRepository) GetByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"handle": handle}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account by handle sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// Update persists mutable account fields and refreshes updated_at.
func (r *AccountRepository) Update(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Update("accounts").
		Set("email", account.Email).
		Set("password_hash", account.PasswordHash).
		Set("nickname", account.Nickname).
		Set("gender", genderValue(account.Gender)).
		Set("phone_number", account.PhoneNumber).
		Set("active", account.Active).
		Set("email_verified", account.EmailVerified).
		Set("phone_verified", account.PhoneVerified).
		Set("verification_code", challengeValue(account.VerificationCode)).
		Set("code_issued_at", account.CodeIssuedAt).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapAccountConstraint(err, "update account")
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateNickname changes only the display name.
func (r *AccountRepository) UpdateNickname(ctx context.Context, id, nickname string) error {
	stmt, args, err := r.builder.Update("accounts").
		Set("nickname", nickname).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update nickname sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update nickname: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Deactivate marks an account inactive (soft delete).
func (r *AccountRepository) Deactivate(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("accounts").
		Set("active", false).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetChallenge writes the verification code and issue timestamp together.
func (r *AccountRepository) SetChallenge(ctx context.Context, id, code string, issuedAt time.Time) error {
	stmt, args, err := r.builder.Update("accounts").
		Set("verification_code", code).
		Set("code_issued_at", issuedAt).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set challenge sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set challenge: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ConfirmEmail marks the email verified and clears the pending challenge in
// one statement so the code becomes unusable the moment it succeeds.
func (r *AccountRepository) ConfirmEmail(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("accounts").
		Set("email_verified", true).
		Set("verification_code", nil).
		Set("code_issued_at", nil).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build confirm email sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountStaleInactive counts deactivated accounts untouched since the cutoff.
func (r *AccountRepository) CountStaleInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("accounts").
		Where(squirrel.Eq{"active": false}).
		Where(squirrel.LtOrEq{"updated_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count stale accounts sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan stale accounts count: %w", err)
	}

	return count, nil
}

// DeleteStaleInactive permanently removes deactivated accounts untouched
// since the cutoff. Login rows follow via ON DELETE CASCADE.
func (r *AccountRepository) DeleteStaleInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	stmt, args, err := r.builder.Delete("accounts").
		Where(squirrel.Eq{"active": false}).
		Where(squirrel.LtOrEq{"updated_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete stale accounts sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete stale accounts: %w", err)
	}

	return ct.RowsAffected(), nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		gender  sql.NullString
		code    sql.NullString
	)

	if err := row.Scan(
		&account.ID,
		&account.Handle,
		&account.Email,
		&account.PasswordHash,
		&account.Nickname,
		&gender,
		&account.PhoneNumber,
		&account.Active,
		&account.EmailVerified,
		&account.PhoneVerified,
		&code,
		&account.CodeIssuedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if gender.Valid {
		val := gender.String
		account.Gender = &val
	}
	if code.Valid {
		val := code.String
		account.VerificationCode = &val
	}

	return &account, nil
}

func genderValue(gender *string) any {
	if gender == nil || *gender == "" {
		return nil
	}
	return *gender
}

func challengeValue(code *string) any {
	if code == nil || *code == "" {
		return nil
	}
	return *code
}

func mapAccountConstraint(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case "accounts_email_key", "accounts_email_idx":
			return repository.ErrDuplicateEmail
		default:
			return repository.ErrDuplicateHandle
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ port.AccountRepository = (*AccountRepository)(nil)
