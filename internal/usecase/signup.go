package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/infra/logger"
	"github.com/wayfare-dev/wayfare/internal/infra/security"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

var (
	// ErrHandleTaken indicates the handle is already registered.
	ErrHandleTaken = errors.New("handle already taken")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidSignup indicates a malformed signup request.
	ErrInvalidSignup = errors.New("invalid signup request")
)

// SignupInput carries the fields accepted at registration.
type SignupInput struct {
	Handle   string
	Password string
	Nickname string
	Email    string
	Gender   *string
}

// RegistrationService creates new accounts.
type RegistrationService struct {
	accounts  port.AccountRepository
	passwords *security.PasswordValidator
	events    port.EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	accounts port.AccountRepository,
	passwords *security.PasswordValidator,
	events port.EventPublisher,
	log *zap.Logger,
) *RegistrationService {
	if passwords == nil {
		passwords = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		accounts:  accounts,
		passwords: passwords,
		events:    events,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register validates input, hashes the password, and persists the account.
// The returned account never carries the password hash.
func (s *RegistrationService) Register(ctx context.Context, input SignupInput) (*domain.Account, error) {
	handle := strings.TrimSpace(input.Handle)
	email := strings.TrimSpace(input.Email)
	nickname := strings.TrimSpace(input.Nickname)

	if handle == "" {
		return nil, fmt.Errorf("%w: handle is required", ErrInvalidSignup)
	}
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", ErrInvalidSignup)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email is invalid", ErrInvalidSignup)
	}

	if err := s.passwords.Validate(input.Password); err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSignup, policyErr.Message)
		}
		return nil, fmt.Errorf("validate password: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	account := domain.Account{
		ID:           uuid.NewString(),
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
		Gender:       input.Gender,
		PhoneNumber:  domain.DefaultPhoneNumber,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateHandle):
			return nil, ErrHandleTaken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		default:
			return nil, fmt.Errorf("create account: %w", err)
		}
	}

	s.log.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)))

	if s.events != nil {
		event := domain.AccountRegisteredEvent{
			EventID:      uuid.NewString(),
			AccountID:    account.ID,
			Handle:       account.Handle,
			Email:        account.Email,
			RegisteredAt: now,
		}
		if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
			s.log.Warn("publish account registered failed", zap.Error(err))
		}
	}

	account.PasswordHash = ""
	return &account, nil
}
