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

var calendarColumns = []string{
	"id",
	"planner_id",
	"deleted",
	"created_at",
	"updated_at",
}

// CalendarRepository implements port.CalendarRepository using PostgreSQL.
type CalendarRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewCalendarRepository wires a PostgreSQL-backed calendar repository.
func NewCalendarRepository(exec pgExecutor) *CalendarRepository {
	repo := &CalendarRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     func() time.Time { return time.Now().UTC() },
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new calendar row.
func (r *CalendarRepository) Create(ctx context.Context, calendar domain.Calendar) error {
	query := r.builder.Insert("calendars").
		Columns(calendarColumns...).
		Values(
			calendar.ID,
			calendar.PlannerID,
			calendar.Deleted,
			calendar.CreatedAt,
			calendar.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert calendar sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert calendar: %w", err)
	}

	return nil
}

// GetByID retrieves a calendar by identifier.
func (r *CalendarRepository) GetByID(ctx context.Context, id string) (*domain.Calendar, error) {
	stmt, args, err := r.builder.
		Select(calendarColumns...).
		From("calendars").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select calendar sql: %w", err)
	}

	var calendar domain.Calendar
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&calendar.ID,
		&calendar.PlannerID,
		&calendar.Deleted,
		&calendar.CreatedAt,
		&calendar.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan calendar: %w", err)
	}

	return &calendar, nil
}

// ListByPlanner returns the planner's live calendars, newest first.
func (r *CalendarRepository) ListByPlanner(ctx context.Context, plannerID string) ([]domain.Calendar, error) {
	stmt, args, err := r.builder.
		Select(calendarColumns...).
		From("calendars").
		Where(squirrel.Eq{"planner_id": plannerID}).
		Where(squirrel.Eq{"deleted": false}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list calendars sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query calendars: %w", err)
	}
	defer rows.Close()

	calendars := make([]domain.Calendar, 0)
	for rows.Next() {
		var calendar domain.Calendar
		if err := rows.Scan(
			&calendar.ID,
			&calendar.PlannerID,
			&calendar.Deleted,
			&calendar.CreatedAt,
			&calendar.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		calendars = append(calendars, calendar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendars: %w", err)
	}

	return calendars, nil
}

// SoftDelete marks a calendar deleted.
func (r *CalendarRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("calendars").
		Set("deleted", true).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete calendar sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete calendar: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.CalendarRepository = (*CalendarRepository)(nil)
