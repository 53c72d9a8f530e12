package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/infra/security"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

const sessionTestPassword = "Tr4vel!Plans#2024"

func newSessionFixture(t *testing.T, accounts *mockAccountRepository, ledger *mockLoginLedger, cache *memoryTokenCache, publisher *mockEventPublisher) *SessionService {
	t.Helper()

	keys, err := security.NewEphemeralKeyProvider()
	if err != nil {
		t.Fatalf("NewEphemeralKeyProvider: %v", err)
	}

	cfg := &config.AppConfig{}
	cfg.App.Name = "wayfare"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 168 * time.Hour

	issuer := security.NewTokenIssuer(keys, cfg.App.Name)

	// A nil *mockEventPublisher must stay a nil interface. Wrapping it
	// unconditionally would hand the service a non-nil interface with a nil
	// receiver behind it.
	var events port.EventPublisher
	if publisher != nil {
		events = publisher
	}

	return NewSessionService(cfg, accounts, ledger, cache, issuer, events, nil)
}

func activeAccount(t *testing.T) *domain.Account {
	t.Helper()

	hash, err := security.HashPassword(sessionTestPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	return &domain.Account{
		ID:           "acct-1",
		Handle:       "wanderer",
		Email:        "wanderer@example.com",
		PasswordHash: hash,
		Nickname:     "Wanderer",
		PhoneNumber:  domain.DefaultPhoneNumber,
		Active:       true,
	}
}

func TestSessionService_LoginSuccess(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	ledger := &mockLoginLedger{}
	cache := newMemoryTokenCache()
	events := &mockEventPublisher{}

	service := newSessionFixture(t, accounts, ledger, cache, events)

	meta := domain.ClientMeta{IP: "203.0.113.7", UserAgent: "curl/8.0"}
	pair, account, err := service.Login(context.Background(), "wanderer", sessionTestPassword, meta)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens to be issued")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatalf("expected distinct access and refresh tokens")
	}
	if account.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped")
	}

	cached, ok, err := cache.Get(context.Background(), "token:wanderer")
	if err != nil || !ok {
		t.Fatalf("expected refresh token cached under handle, ok=%v err=%v", ok, err)
	}
	if cached != pair.RefreshToken {
		t.Fatalf("expected cached value to equal refresh token")
	}

	if ledger.appendCalls != 1 {
		t.Fatalf("expected one ledger append, got %d", ledger.appendCalls)
	}
	record := ledger.appended[0]
	if !record.Succeeded {
		t.Fatalf("expected succeeded=true ledger row")
	}
	if record.ClientIP != meta.IP || record.ClientAgent != meta.UserAgent {
		t.Fatalf("expected client metadata on ledger row")
	}

	if events.startedCalls != 1 {
		t.Fatalf("expected session started event, got %d", events.startedCalls)
	}
}

func TestSessionService_LoginOverwritesPreviousSession(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	cache := newMemoryTokenCache()

	service := newSessionFixture(t, accounts, &mockLoginLedger{}, cache, nil)

	first, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("first login returned error: %v", err)
	}

	second, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("second login returned error: %v", err)
	}

	cached, _, _ := cache.Get(context.Background(), "token:wanderer")
	if cached != second.RefreshToken {
		t.Fatalf("expected second login to own the cache slot")
	}
	if cached == first.RefreshToken {
		t.Fatalf("expected first session's token to be displaced")
	}
}

func TestSessionService_AuthenticateUnknownHandle(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleErr: repository.ErrNotFound}
	service := newSessionFixture(t, accounts, &mockLoginLedger{}, newMemoryTokenCache(), nil)

	_, err := service.Authenticate(context.Background(), "ghost", sessionTestPassword, domain.ClientMeta{})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestSessionService_AuthenticateWrongPasswordAudits(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	ledger := &mockLoginLedger{}
	service := newSessionFixture(t, accounts, ledger, newMemoryTokenCache(), nil)

	_, err := service.Authenticate(context.Background(), "wanderer", "wrong-password-99", domain.ClientMeta{IP: "203.0.113.7"})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}

	if ledger.appendCalls != 1 {
		t.Fatalf("expected failed attempt to be audited, got %d appends", ledger.appendCalls)
	}
	if ledger.appended[0].Succeeded {
		t.Fatalf("expected succeeded=false on failed attempt")
	}
}

func TestSessionService_AuthenticateInactive(t *testing.T) {
	account := activeAccount(t)
	account.Active = false
	accounts := &mockAccountRepository{getByHandleResult: account}
	service := newSessionFixture(t, accounts, &mockLoginLedger{}, newMemoryTokenCache(), nil)

	_, err := service.Authenticate(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestSessionService_LoginSurvivesLedgerFailure(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	ledger := &mockLoginLedger{appendErr: errors.New("db down")}
	service := newSessionFixture(t, accounts, ledger, newMemoryTokenCache(), nil)

	if _, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{}); err != nil {
		t.Fatalf("expected login to succeed despite ledger failure, got %v", err)
	}
}

func TestSessionService_RefreshAccessToken(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	service := newSessionFixture(t, accounts, &mockLoginLedger{}, newMemoryTokenCache(), nil)

	pair, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	accessToken, err := service.RefreshAccessToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshAccessToken returned error: %v", err)
	}
	if accessToken == "" {
		t.Fatalf("expected a fresh access token")
	}
}

func TestSessionService_RefreshRejectsAccessToken(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	service := newSessionFixture(t, accounts, &mockLoginLedger{}, newMemoryTokenCache(), nil)

	pair, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	// An access token is the wrong type for the refresh endpoint.
	if _, err := service.RefreshAccessToken(context.Background(), pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestSessionService_RefreshMissingToken(t *testing.T) {
	service := newSessionFixture(t, &mockAccountRepository{}, &mockLoginLedger{}, newMemoryTokenCache(), nil)

	if _, err := service.RefreshAccessToken(context.Background(), "  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestSessionService_LogoutBlacklistsToken(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	ledger := &mockLoginLedger{
		mostRecentResult: &domain.LoginRecord{ID: "login-1", AccountID: "acct-1", LoginAt: time.Now().UTC()},
	}
	cache := newMemoryTokenCache()
	events := &mockEventPublisher{}
	service := newSessionFixture(t, accounts, ledger, cache, events)

	pair, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := service.ValidateAccessToken(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken returned error: %v", err)
	}

	if err := service.Logout(context.Background(), pair.RefreshToken, claims); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if _, err := service.RefreshAccessToken(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted after logout, got %v", err)
	}

	if _, ok, _ := cache.Get(context.Background(), "token:wanderer"); ok {
		t.Fatalf("expected cached refresh token to be dropped")
	}

	if ledger.closeCalls != 1 || ledger.closedID != "login-1" {
		t.Fatalf("expected newest ledger row to be closed, calls=%d id=%s", ledger.closeCalls, ledger.closedID)
	}

	if events.closedCalls != 1 {
		t.Fatalf("expected session closed event, got %d", events.closedCalls)
	}
}

func TestSessionService_LogoutToleratesMissingLedgerRow(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	ledger := &mockLoginLedger{mostRecentErr: repository.ErrNotFound}
	service := newSessionFixture(t, accounts, ledger, newMemoryTokenCache(), nil)

	pair, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := service.ValidateAccessToken(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken returned error: %v", err)
	}

	if err := service.Logout(context.Background(), pair.RefreshToken, claims); err != nil {
		t.Fatalf("expected logout to succeed with no ledger row, got %v", err)
	}

	if ledger.closeCalls != 0 {
		t.Fatalf("expected no close attempt without a row, got %d", ledger.closeCalls)
	}
}

func TestSessionService_RefreshUnusableAfterLogout(t *testing.T) {
	accounts := &mockAccountRepository{getByHandleResult: activeAccount(t)}
	cache := newMemoryTokenCache()
	service := newSessionFixture(t, accounts, &mockLoginLedger{}, cache, nil)

	pair, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := service.RefreshAccessToken(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("expected refresh to work before logout, got %v", err)
	}

	claims, err := service.ValidateAccessToken(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken returned error: %v", err)
	}
	if err := service.Logout(context.Background(), pair.RefreshToken, claims); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	// The revoked refresh token must stop minting access tokens.
	if _, err := service.RefreshAccessToken(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted for revoked refresh token, got %v", err)
	}

	// A fresh login issues a new refresh token that works again.
	next, _, err := service.Login(context.Background(), "wanderer", sessionTestPassword, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("second login returned error: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("expected a new refresh token after re-login")
	}
	if _, err := service.RefreshAccessToken(context.Background(), next.RefreshToken); err != nil {
		t.Fatalf("expected refresh with new token to succeed, got %v", err)
	}
}

func TestSessionService_LogoutMissingToken(t *testing.T) {
	service := newSessionFixture(t, &mockAccountRepository{}, &mockLoginLedger{}, newMemoryTokenCache(), nil)

	if err := service.Logout(context.Background(), "", nil); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestSessionService_DeactivateIdempotent(t *testing.T) {
	account := activeAccount(t)
	account.Active = false
	accounts := &mockAccountRepository{getByIDResult: account}
	service := newSessionFixture(t, accounts, &mockLoginLedger{}, newMemoryTokenCache(), nil)

	if err := service.Deactivate(context.Background(), "acct-1"); err != nil {
		t.Fatalf("expected repeat deactivation to succeed, got %v", err)
	}

	if accounts.deactivateCalls != 0 {
		t.Fatalf("expected no repository write for an already inactive account, got %d", accounts.deactivateCalls)
	}
}

func TestSessionService_Deactivate(t *testing.T) {
	accounts := &mockAccountRepository{getByIDResult: activeAccount(t)}
	events := &mockEventPublisher{}
	service := newSessionFixture(t, accounts, &mockLoginLedger{}, newMemoryTokenCache(), events)

	if err := service.Deactivate(context.Background(), "acct-1"); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	if accounts.deactivateCalls != 1 || accounts.deactivateID != "acct-1" {
		t.Fatalf("expected Deactivate repository call for acct-1")
	}

	if events.deactivatedCalls != 1 {
		t.Fatalf("expected account deactivated event, got %d", events.deactivatedCalls)
	}
}
