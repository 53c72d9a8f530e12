package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

type mockAccountRepository struct {
	createErr      error
	createCalls    int
	createdAccount domain.Account

	getByIDResult *domain.Account
	getByIDErr    error
	getByIDCalls  int

	getByHandleResult *domain.Account
	getByHandleErr    error
	getByHandleCalls  int
	getByHandleLast   string

	deactivateErr   error
	deactivateCalls int
	deactivateID    string

	updateNicknameErr   error
	updateNicknameCalls int
	updateNicknameValue string

	setChallengeErr    error
	setChallengeCalls  int
	setChallengeCode   string
	setChallengeIssued time.Time

	confirmEmailErr   error
	confirmEmailCalls int
	confirmEmailID    string

	countStaleResult int64
	countStaleErr    error
	countStaleCalls  int
	countStaleCutoff time.Time

	deleteStaleResult int64
	deleteStaleErr    error
	deleteStaleCalls  int
	deleteStaleCutoff time.Time
}

func (m *mockAccountRepository) Create(_ context.Context, account domain.Account) error {
	m.createCalls++
	m.createdAccount = account
	return m.createErr
}

func (m *mockAccountRepository) GetByID(_ context.Context, _ string) (*domain.Account, error) {
	m.getByIDCalls++
	if m.getByIDResult != nil {
		copied := *m.getByIDResult
		return &copied, m.getByIDErr
	}
	return nil, m.getByIDErr
}

func (m *mockAccountRepository) GetByHandle(_ context.Context, handle string) (*domain.Account, error) {
	m.getByHandleCalls++
	m.getByHandleLast = handle
	if m.getByHandleResult != nil {
		copied := *m.getByHandleResult
		return &copied, m.getByHandleErr
	}
	return nil, m.getByHandleErr
}

func (m *mockAccountRepository) Update(context.Context, domain.Account) error {
	return errors.New("unexpected call: Update")
}

func (m *mockAccountRepository) UpdateNickname(_ context.Context, _ string, nickname string) error {
	m.updateNicknameCalls++
	m.updateNicknameValue = nickname
	return m.updateNicknameErr
}

func (m *mockAccountRepository) Deactivate(_ context.Context, id string) error {
	m.deactivateCalls++
	m.deactivateID = id
	return m.deactivateErr
}

func (m *mockAccountRepository) SetChallenge(_ context.Context, _ string, code string, issuedAt time.Time) error {
	m.setChallengeCalls++
	m.setChallengeCode = code
	m.setChallengeIssued = issuedAt
	return m.setChallengeErr
}

func (m *mockAccountRepository) ConfirmEmail(_ context.Context, id string) error {
	m.confirmEmailCalls++
	m.confirmEmailID = id
	return m.confirmEmailErr
}

func (m *mockAccountRepository) CountStaleInactive(_ context.Context, cutoff time.Time) (int64, error) {
	m.countStaleCalls++
	m.countStaleCutoff = cutoff
	return m.countStaleResult, m.countStaleErr
}

func (m *mockAccountRepository) DeleteStaleInactive(_ context.Context, cutoff time.Time) (int64, error) {
	m.deleteStaleCalls++
	m.deleteStaleCutoff = cutoff
	return m.deleteStaleResult, m.deleteStaleErr
}

type mockLoginLedger struct {
	appendErr   error
	appendCalls int
	appended    []domain.LoginRecord

	mostRecentResult *domain.LoginRecord
	mostRecentErr    error
	mostRecentCalls  int

	closeErr   error
	closeCalls int
	closedID   string
	closedAt   time.Time
}

func (m *mockLoginLedger) Append(_ context.Context, record domain.LoginRecord) error {
	m.appendCalls++
	m.appended = append(m.appended, record)
	return m.appendErr
}

func (m *mockLoginLedger) MostRecentFor(_ context.Context, _ string) (*domain.LoginRecord, error) {
	m.mostRecentCalls++
	if m.mostRecentResult != nil {
		copied := *m.mostRecentResult
		return &copied, m.mostRecentErr
	}
	if m.mostRecentErr != nil {
		return nil, m.mostRecentErr
	}
	return nil, repository.ErrNotFound
}

func (m *mockLoginLedger) Close(_ context.Context, recordID string, at time.Time) error {
	m.closeCalls++
	m.closedID = recordID
	m.closedAt = at
	return m.closeErr
}

type memoryTokenCache struct {
	mu      sync.Mutex
	entries map[string]string
	setErr  error
	getErr  error
	delErr  error
}

func newMemoryTokenCache() *memoryTokenCache {
	return &memoryTokenCache{entries: make(map[string]string)}
}

func (c *memoryTokenCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryTokenCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *memoryTokenCache) Delete(_ context.Context, key string) error {
	if c.delErr != nil {
		return c.delErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type mockEventPublisher struct {
	registeredCalls  int
	registeredEvent  domain.AccountRegisteredEvent
	startedCalls     int
	startedEvent     domain.SessionStartedEvent
	closedCalls      int
	closedEvent      domain.SessionClosedEvent
	deactivatedCalls int
	deactivatedEvent domain.AccountDeactivatedEvent
	err              error
}

func (m *mockEventPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	m.registeredCalls++
	m.registeredEvent = event
	return m.err
}

func (m *mockEventPublisher) PublishSessionStarted(_ context.Context, event domain.SessionStartedEvent) error {
	m.startedCalls++
	m.startedEvent = event
	return m.err
}

func (m *mockEventPublisher) PublishSessionClosed(_ context.Context, event domain.SessionClosedEvent) error {
	m.closedCalls++
	m.closedEvent = event
	return m.err
}

func (m *mockEventPublisher) PublishAccountDeactivated(_ context.Context, event domain.AccountDeactivatedEvent) error {
	m.deactivatedCalls++
	m.deactivatedEvent = event
	return m.err
}

type mockMailer struct {
	calls     int
	recipient string
	code      string
	err       error
}

func (m *mockMailer) SendVerificationCode(_ context.Context, recipient, code string) error {
	m.calls++
	m.recipient = recipient
	m.code = code
	return m.err
}
