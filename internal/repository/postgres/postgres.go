package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgExecutor abstracts the pgx surface shared by pools and transactions.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Accounts  *AccountRepository
	Logins    *LoginLedger
	Planners  *PlannerRepository
	Plans     *PlanRepository
	Calendars *CalendarRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts:  NewAccountRepository(pool),
		Logins:    NewLoginLedger(pool),
		Planners:  NewPlannerRepository(pool),
		Plans:     NewPlanRepository(pool),
		Calendars: NewCalendarRepository(pool),
	}
}
