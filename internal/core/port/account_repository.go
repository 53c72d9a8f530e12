package port

import (
	"context"
	"time"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
)

// AccountRepository persists user identity and verification state.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Account, error)
	// Update persists mutable fields and refreshes updated_at.
	Update(ctx context.Context, account domain.Account) error
	UpdateNickname(ctx context.Context, id, nickname string) error
	Deactivate(ctx context.Context, id string) error
	// SetChallenge writes verification_code and code_issued_at together.
	SetChallenge(ctx context.Context, id, code string, issuedAt time.Time) error
	// ConfirmEmail sets email_verified and clears the challenge fields in one statement.
	ConfirmEmail(ctx context.Context, id string) error
	// CountStaleInactive and DeleteStaleInactive back the retention sweep:
	// accounts with active=false whose updated_at is at or before the cutoff.
	CountStaleInactive(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteStaleInactive(ctx context.Context, cutoff time.Time) (int64, error)
}
