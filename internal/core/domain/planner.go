package domain

import "time"

// Planner is the top-level travel planning document owned by an account.
type Planner struct {
	ID          string
	AccountID   string
	OrderingNum int64
	Title       string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Plan is a single scheduled item inside a planner.
type Plan struct {
	ID          string
	PlannerID   string
	OrderingNum int64
	Title       string
	StartDate   *time.Time
	EndDate     *time.Time
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Calendar binds a planner to a calendar view.
type Calendar struct {
	ID        string
	PlannerID string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SoftDelete marks the planner logically removed.
// Returns true when the flag changed.
func (p *Planner) SoftDelete() bool {
	if p.Deleted {
		return false
	}
	p.Deleted = true
	return true
}
