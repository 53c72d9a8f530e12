package port

import (
	"context"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
)

// PlannerRepository persists planners with soft-delete semantics.
type PlannerRepository interface {
	Create(ctx context.Context, planner domain.Planner) error
	GetByID(ctx context.Context, id string) (*domain.Planner, error)
	// ListByAccount returns non-deleted planners ordered by ordering_num.
	ListByAccount(ctx context.Context, accountID string) ([]domain.Planner, error)
	Update(ctx context.Context, planner domain.Planner) error
	SoftDelete(ctx context.Context, id string) error
}

// PlanRepository persists plan rows belonging to a planner.
type PlanRepository interface {
	Create(ctx context.Context, plan domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	ListByPlanner(ctx context.Context, plannerID string) ([]domain.Plan, error)
	Update(ctx context.Context, plan domain.Plan) error
	SoftDelete(ctx context.Context, id string) error
}

// CalendarRepository persists calendar rows belonging to a planner.
type CalendarRepository interface {
	Create(ctx context.Context, calendar domain.Calendar) error
	GetByID(ctx context.Context, id string) (*domain.Calendar, error)
	ListByPlanner(ctx context.Context, plannerID string) ([]domain.Calendar, error)
	SoftDelete(ctx context.Context, id string) error
}
