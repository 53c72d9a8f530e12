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

var planColumns = []string{
	"id",
	"planner_id",
	"ordering_num",
	"title",
	"start_date",
	"end_date",
	"deleted",
	"created_at",
	"updated_at",
}

// PlanRepository implements port.PlanRepository using PostgreSQL.
type PlanRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewPlanRepository wires a PostgreSQL-backed plan repository.
func NewPlanRepository(exec pgExecutor) *PlanRepository {
	repo := &PlanRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     func() time.Time { return time.Now().UTC() },
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new plan row.
func (r *PlanRepository) Create(ctx context.Context, plan domain.Plan) error {
	query := r.builder.Insert("plans").
		Columns(planColumns...).
		Values(
			plan.ID,
			plan.PlannerID,
			plan.OrderingNum,
			plan.Title,
			plan.StartDate,
			plan.EndDate,
			plan.Deleted,
			plan.CreatedAt,
			plan.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert plan sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	return nil
}

// GetByID retrieves a plan by identifier.
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	stmt, args, err := r.builder.
		Select(planColumns...).
		From("plans").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select plan sql: %w", err)
	}

	var plan domain.Plan
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&plan.ID,
		&plan.PlannerID,
		&plan.OrderingNum,
		&plan.Title,
		&plan.StartDate,
		&plan.EndDate,
		&plan.Deleted,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}

	return &plan, nil
}

// ListByPlanner returns the planner's live plans ordered by ordering_num.
func (r *PlanRepository) ListByPlanner(ctx context.Context, plannerID string) ([]domain.Plan, error) {
	stmt, args, err := r.builder.
		Select(planColumns...).
		From("plans").
		Where(squirrel.Eq{"planner_id": plannerID}).
		Where(squirrel.Eq{"deleted": false}).
		OrderBy("ordering_num ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list plans sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := make([]domain.Plan, 0)
	for rows.Next() {
		var plan domain.Plan
		if err := rows.Scan(
			&plan.ID,
			&plan.PlannerID,
			&plan.OrderingNum,
			&plan.Title,
			&plan.StartDate,
			&plan.EndDate,
			&plan.Deleted,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}

	return plans, nil
}

// Update persists the plan's mutable fields and refreshes updated_at.
func (r *PlanRepository) Update(ctx context.Context, plan domain.Plan) error {
	stmt, args, err := r.builder.Update("plans").
		Set("ordering_num", plan.OrderingNum).
		Set("title", plan.Title).
		Set("start_date", plan.StartDate).
		Set("end_date", plan.EndDate).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": plan.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update plan sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks a plan deleted.
func (r *PlanRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("plans").
		Set("deleted", true).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete plan sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete plan: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.PlanRepository = (*PlanRepository)(nil)
