package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/infra/logger"
	"github.com/wayfare-dev/wayfare/internal/infra/security"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

var (
	// ErrAlreadyVerified indicates the email was verified earlier.
	ErrAlreadyVerified = errors.New("email already verified")
	// ErrMissingCode indicates the submitted code was empty.
	ErrMissingCode = errors.New("verification code is required")
	// ErrCodeExpired indicates the pending code aged past its window.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeMismatch indicates the submitted code does not match.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrDeliveryFailure indicates the code was generated and stored but the
	// mail could not be sent.
	ErrDeliveryFailure = errors.New("verification mail delivery failed")
)

// VerificationService manages the email verification challenge.
type VerificationService struct {
	cfg      *config.AppConfig
	accounts port.AccountRepository
	mailer   port.Mailer
	log      *zap.Logger
	now      func() time.Time
}

// NewVerificationService constructs a VerificationService instance.
func NewVerificationService(
	cfg *config.AppConfig,
	accounts port.AccountRepository,
	mailer port.Mailer,
	log *zap.Logger,
) *VerificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationService{
		cfg:      cfg,
		accounts: accounts,
		mailer:   mailer,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *VerificationService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// IssueChallenge generates a fresh numeric code, stores it with its issue
// timestamp, and mails it. Reissuing replaces any pending code.
func (s *VerificationService) IssueChallenge(ctx context.Context, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.EmailVerified {
		return ErrAlreadyVerified
	}

	code, err := security.GenerateNumericCode(s.codeLength())
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	issuedAt := s.now()
	if err := s.accounts.SetChallenge(ctx, account.ID, code, issuedAt); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, account.Email, code); err != nil {
		s.log.Error("verification mail delivery failed",
			zap.String("account_id", account.ID),
			zap.String("email", logger.MaskEmail(account.Email)),
			zap.Error(err))
		return ErrDeliveryFailure
	}

	return nil
}

// ConfirmChallenge checks the submitted code against the pending challenge.
// On success the email is marked verified and the code is consumed.
func (s *VerificationService) ConfirmChallenge(ctx context.Context, accountID, code string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.EmailVerified {
		return ErrAlreadyVerified
	}
	// An account with no pending challenge reads the same as one whose
	// challenge aged out: the code on file is no longer usable.
	if account.ChallengeExpired(s.now(), s.codeTTL()) {
		return ErrCodeExpired
	}
	if strings.TrimSpace(code) == "" {
		return ErrMissingCode
	}

	if subtle.ConstantTimeCompare([]byte(*account.VerificationCode), []byte(code)) != 1 {
		return ErrCodeMismatch
	}

	if err := s.accounts.ConfirmEmail(ctx, account.ID); err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}

	return nil
}

func (s *VerificationService) codeLength() int {
	if s.cfg.Verify.CodeLength > 0 {
		return s.cfg.Verify.CodeLength
	}
	return 6
}

func (s *VerificationService) codeTTL() time.Duration {
	if s.cfg.Verify.CodeTTL > 0 {
		return s.cfg.Verify.CodeTTL
	}
	return 5 * time.Minute
}
