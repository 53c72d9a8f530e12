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

var plannerColumns = []string{
	"id",
	"account_id",
	"ordering_num",
	"title",
	"deleted",
	"created_at",
	"updated_at",
}

// PlannerRepository implements port.PlannerRepository using PostgreSQL.
type PlannerRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewPlannerRepository wires a PostgreSQL-backed planner repository.
func NewPlannerRepository(exec pgExecutor) *PlannerRepository {
	repo := &PlannerRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     func() time.Time { return time.Now().UTC() },
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new planner row.
func (r *PlannerRepository) Create(ctx context.Context, planner domain.Planner) error {
	query := r.builder.Insert("planners").
		Columns(plannerColumns...).
		Values(
			planner.ID,
			planner.AccountID,
			planner.OrderingNum,
			planner.Title,
			planner.Deleted,
			planner.CreatedAt,
			planner.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert planner sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert planner: %w", err)
	}

	return nil
}

// GetByID retrieves a planner by identifier, soft-deleted rows included.
func (r *PlannerRepository) GetByID(ctx context.Context, id string) (*domain.Planner, error) {
	stmt, args, err := r.builder.
		Select(plannerColumns...).
		From("planners").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select planner sql: %w", err)
	}

	var planner domain.Planner
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&planner.ID,
		&planner.AccountID,
		&planner.OrderingNum,
		&planner.Title,
		&planner.Deleted,
		&planner.CreatedAt,
		&planner.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan planner: %w", err)
	}

	return &planner, nil
}

// ListByAccount returns the account's live planners ordered by ordering_num.
func (r *PlannerRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Planner, error) {
	stmt, args, err := r.builder.
		Select(plannerColumns...).
		From("planners").
		Where(squirrel.Eq{"account_id": accountID}).
		Where(squirrel.Eq{"deleted": false}).
		OrderBy("ordering_num ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list planners sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query planners: %w", err)
	}
	defer rows.Close()

	planners := make([]domain.Planner, 0)
	for rows.Next() {
		var planner domain.Planner
		if err := rows.Scan(
			&planner.ID,
			&planner.AccountID,
			&planner.OrderingNum,
			&planner.Title,
			&planner.Deleted,
			&planner.CreatedAt,
			&planner.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan planner: %w", err)
		}
		planners = append(planners, planner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate planners: %w", err)
	}

	return planners, nil
}

// Update persists the planner's mutable fields and refreshes updated_at.
func (r *PlannerRepository) Update(ctx context.Context, planner domain.Planner) error {
	stmt, args, err := r.builder.Update("planners").
		Set("ordering_num", planner.OrderingNum).
		Set("title", planner.Title).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": planner.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update planner sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update planner: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks a planner deleted.
func (r *PlannerRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("planners").
		Set("deleted", true).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete planner sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete planner: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.PlannerRepository = (*PlannerRepository)(nil)
