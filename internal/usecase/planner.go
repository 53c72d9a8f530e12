package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

var (
	// ErrPlannerNotFound indicates the planner does not exist or was deleted.
	ErrPlannerNotFound = errors.New("planner not found")
	// ErrPlanNotFound indicates the plan does not exist or was deleted.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrCalendarNotFound indicates the calendar does not exist or was deleted.
	ErrCalendarNotFound = errors.New("calendar not found")
	// ErrNotOwner indicates the resource belongs to a different account.
	ErrNotOwner = errors.New("resource owned by another account")
	// ErrInvalidTitle indicates an empty title.
	ErrInvalidTitle = errors.New("title is required")
)

// PlannerService provides owner-scoped CRUD over planners, plans, and
// calendars. Every operation resolves ownership before touching rows.
type PlannerService struct {
	planners  port.PlannerRepository
	plans     port.PlanRepository
	calendars port.CalendarRepository
	now       func() time.Time
}

// NewPlannerService constructs a PlannerService instance.
func NewPlannerService(
	planners port.PlannerRepository,
	plans port.PlanRepository,
	calendars port.CalendarRepository,
) *PlannerService {
	return &PlannerService{
		planners:  planners,
		plans:     plans,
		calendars: calendars,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreatePlanner adds a planner owned by the account.
func (s *PlannerService) CreatePlanner(ctx context.Context, accountID, title string, orderingNum int64) (*domain.Planner, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	now := s.now()
	planner := domain.Planner{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		OrderingNum: orderingNum,
		Title:       title,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.planners.Create(ctx, planner); err != nil {
		return nil, fmt.Errorf("create planner: %w", err)
	}

	return &planner, nil
}

// ListPlanners returns the account's live planners in ordering_num order.
func (s *PlannerService) ListPlanners(ctx context.Context, accountID string) ([]domain.Planner, error) {
	planners, err := s.planners.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list planners: %w", err)
	}
	return planners, nil
}

// UpdatePlanner changes the planner's title and ordering.
func (s *PlannerService) UpdatePlanner(ctx context.Context, accountID, plannerID, title string, orderingNum int64) (*domain.Planner, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	planner, err := s.ownedPlanner(ctx, accountID, plannerID)
	if err != nil {
		return nil, err
	}

	planner.Title = title
	planner.OrderingNum = orderingNum

	if err := s.planners.Update(ctx, *planner); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlannerNotFound
		}
		return nil, fmt.Errorf("update planner: %w", err)
	}

	return planner, nil
}

// DeletePlanner soft-deletes the planner.
func (s *PlannerService) DeletePlanner(ctx context.Context, accountID, plannerID string) error {
	planner, err := s.ownedPlanner(ctx, accountID, plannerID)
	if err != nil {
		return err
	}

	if err := s.planners.SoftDelete(ctx, planner.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlannerNotFound
		}
		return fmt.Errorf("delete planner: %w", err)
	}

	return nil
}

// CreatePlan adds a plan to a planner the account owns.
func (s *PlannerService) CreatePlan(ctx context.Context, accountID, plannerID, title string, orderingNum int64, startDate, endDate *time.Time) (*domain.Plan, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	if _, err := s.ownedPlanner(ctx, accountID, plannerID); err != nil {
		return nil, err
	}

	now := s.now()
	plan := domain.Plan{
		ID:          uuid.NewString(),
		PlannerID:   plannerID,
		OrderingNum: orderingNum,
		Title:       title,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	return &plan, nil
}

// ListPlans returns the planner's live plans in ordering_num order.
func (s *PlannerService) ListPlans(ctx context.Context, accountID, plannerID string) ([]domain.Plan, error) {
	if _, err := s.ownedPlanner(ctx, accountID, plannerID); err != nil {
		return nil, err
	}

	plans, err := s.plans.ListByPlanner(ctx, plannerID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// UpdatePlan changes a plan's title, ordering, and date range.
func (s *PlannerService) UpdatePlan(ctx context.Context, accountID, planID, title string, orderingNum int64, startDate, endDate *time.Time) (*domain.Plan, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	plan, err := s.ownedPlan(ctx, accountID, planID)
	if err != nil {
		return nil, err
	}

	plan.Title = title
	plan.OrderingNum = orderingNum
	plan.StartDate = startDate
	plan.EndDate = endDate

	if err := s.plans.Update(ctx, *plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("update plan: %w", err)
	}

	return plan, nil
}

// DeletePlan soft-deletes the plan.
func (s *PlannerService) DeletePlan(ctx context.Context, accountID, planID string) error {
	plan, err := s.ownedPlan(ctx, accountID, planID)
	if err != nil {
		return err
	}

	if err := s.plans.SoftDelete(ctx, plan.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("delete plan: %w", err)
	}

	return nil
}

// CreateCalendar adds a calendar view to a planner the account owns.
func (s *PlannerService) CreateCalendar(ctx context.Context, accountID, plannerID string) (*domain.Calendar, error) {
	if _, err := s.ownedPlanner(ctx, accountID, plannerID); err != nil {
		return nil, err
	}

	now := s.now()
	calendar := domain.Calendar{
		ID:        uuid.NewString(),
		PlannerID: plannerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.calendars.Create(ctx, calendar); err != nil {
		return nil, fmt.Errorf("create calendar: %w", err)
	}

	return &calendar, nil
}

// ListCalendars returns the planner's live calendars.
func (s *PlannerService) ListCalendars(ctx context.Context, accountID, plannerID string) ([]domain.Calendar, error) {
	if _, err := s.ownedPlanner(ctx, accountID, plannerID); err != nil {
		return nil, err
	}

	calendars, err := s.calendars.ListByPlanner(ctx, plannerID)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return calendars, nil
}

// DeleteCalendar soft-deletes the calendar.
func (s *PlannerService) DeleteCalendar(ctx context.Context, accountID, calendarID string) error {
	calendar, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCalendarNotFound
		}
		return fmt.Errorf("lookup calendar: %w", err)
	}
	if calendar.Deleted {
		return ErrCalendarNotFound
	}

	if _, err := s.ownedPlanner(ctx, accountID, calendar.PlannerID); err != nil {
		return err
	}

	if err := s.calendars.SoftDelete(ctx, calendar.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCalendarNotFound
		}
		return fmt.Errorf("delete calendar: %w", err)
	}

	return nil
}

func (s *PlannerService) ownedPlanner(ctx context.Context, accountID, plannerID string) (*domain.Planner, error) {
	planner, err := s.planners.GetByID(ctx, plannerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlannerNotFound
		}
		return nil, fmt.Errorf("lookup planner: %w", err)
	}

	if planner.Deleted {
		return nil, ErrPlannerNotFound
	}
	if planner.AccountID != accountID {
		return nil, ErrNotOwner
	}

	return planner, nil
}

func (s *PlannerService) ownedPlan(ctx context.Context, accountID, planID string) (*domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("lookup plan: %w", err)
	}

	if plan.Deleted {
		return nil, ErrPlanNotFound
	}

	if _, err := s.ownedPlanner(ctx, accountID, plan.PlannerID); err != nil {
		return nil, err
	}

	return plan, nil
}
