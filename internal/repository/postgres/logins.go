package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

var loginColumns = []string{
	"id",
	"account_id",
	"login_at",
	"logout_at",
	"client_ip",
	"client_agent",
	"succeeded",
}

// LoginLedger implements port.LoginLedger using PostgreSQL.
type LoginLedger struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewLoginLedger constructs a ledger backed by any executor that satisfies pgExecutor.
func NewLoginLedger(exec pgExecutor) *LoginLedger {
	repo := &LoginLedger{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a ledger instance operating within the supplied transaction.
func (r *LoginLedger) WithTx(tx pgx.Tx) *LoginLedger {
	if tx == nil {
		return r
	}
	return &LoginLedger{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Append inserts a new audit row.
func (r *LoginLedger) Append(ctx context.Context, record domain.LoginRecord) error {
	query := r.builder.Insert("logins").
		Columns(loginColumns...).
		Values(
			record.ID,
			record.AccountID,
			record.LoginAt,
			record.LogoutAt,
			record.ClientIP,
			record.ClientAgent,
			record.Succeeded,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert login sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert login: %w", err)
	}

	return nil
}

// MostRecentFor returns the latest row for the account by login_at.
func (r *LoginLedger) MostRecentFor(ctx context.Context, accountID string) (*domain.LoginRecord, error) {
	stmt, args, err := r.builder.
		Select(loginColumns...).
		From("logins").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("login_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select login sql: %w", err)
	}

	var record domain.LoginRecord
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&record.ID,
		&record.AccountID,
		&record.LoginAt,
		&record.LogoutAt,
		&record.ClientIP,
		&record.ClientAgent,
		&record.Succeeded,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan login: %w", err)
	}

	return &record, nil
}

// Close stamps logout_at on the row. Already-closed rows are left untouched.
func (r *LoginLedger) Close(ctx context.Context, recordID string, at time.Time) error {
	stmt, args, err := r.builder.Update("logins").
		Set("logout_at", at).
		Where(squirrel.Eq{"id": recordID}).
		Where(squirrel.Eq{"logout_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build close login sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("close login: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.LoginLedger = (*LoginLedger)(nil)
