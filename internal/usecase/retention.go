package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
)

// RetentionService purges stale deactivated accounts. Login rows follow the
// account via foreign key cascade.
type RetentionService struct {
	cfg      *config.AppConfig
	accounts port.AccountRepository
	log      *zap.Logger
	now      func() time.Time
}

// NewRetentionService constructs a RetentionService instance.
func NewRetentionService(cfg *config.AppConfig, accounts port.AccountRepository, log *zap.Logger) *RetentionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RetentionService{
		cfg:      cfg,
		accounts: accounts,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *RetentionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Sweep deletes accounts deactivated for longer than the retention window
// and returns the number of rows removed.
func (s *RetentionService) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.inactiveFor())

	pending, err := s.accounts.CountStaleInactive(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("count stale accounts: %w", err)
	}

	if pending == 0 {
		s.log.Info("retention sweep found nothing to purge",
			zap.Time("cutoff", cutoff))
		return 0, nil
	}

	deleted, err := s.accounts.DeleteStaleInactive(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale accounts: %w", err)
	}

	s.log.Info("retention sweep purged accounts",
		zap.Time("cutoff", cutoff),
		zap.Int64("pending", pending),
		zap.Int64("deleted", deleted))

	return deleted, nil
}

func (s *RetentionService) inactiveFor() time.Duration {
	if s.cfg.Retention.InactiveFor > 0 {
		return s.cfg.Retention.InactiveFor
	}
	return 60 * 24 * time.Hour
}
