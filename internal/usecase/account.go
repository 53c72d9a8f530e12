package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

// ErrInvalidNickname indicates an empty or oversized nickname.
var ErrInvalidNickname = errors.New("invalid nickname")

const maxNicknameLength = 30

// AccountService exposes profile-level account operations.
type AccountService struct {
	accounts port.AccountRepository
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(accounts port.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// Get returns the account without its password hash.
func (s *AccountService) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	sanitized := *account
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

// UpdateNickname changes the display name.
func (s *AccountService) UpdateNickname(ctx context.Context, accountID, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || len([]rune(nickname)) > maxNicknameLength {
		return ErrInvalidNickname
	}

	if err := s.accounts.UpdateNickname(ctx, accountID, nickname); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("update nickname: %w", err)
	}

	return nil
}
