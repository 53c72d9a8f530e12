package port

import (
	"context"
	"time"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
)

// LoginLedger is the append-mostly audit log of login and logout events.
type LoginLedger interface {
	Append(ctx context.Context, record domain.LoginRecord) error
	// MostRecentFor returns the latest record for the account ordered by
	// login_at descending. Logout updates this record; under concurrent
	// logins the "most recent" row is a tie-break, not a session identity.
	MostRecentFor(ctx context.Context, accountID string) (*domain.LoginRecord, error)
	// Close stamps logout_at on the record once.
	Close(ctx context.Context, recordID string, at time.Time) error
}
