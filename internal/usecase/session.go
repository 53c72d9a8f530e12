package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/infra/logger"
	"github.com/wayfare-dev/wayfare/internal/infra/security"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

var (
	// ErrAccountNotFound indicates no account exists for the supplied handle.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredential indicates the password does not match.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrAccountInactive indicates the account was deactivated.
	ErrAccountInactive = errors.New("account is not active")
	// ErrTokenBlacklisted indicates the presented token was revoked by logout.
	ErrTokenBlacklisted = errors.New("token blacklisted")
	// ErrTokenInvalid indicates the token failed signature, expiry, or type checks.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrMissingToken indicates no token accompanied the request.
	ErrMissingToken = errors.New("token is required")
)

const (
	tokenKeyPrefix     = "token:"
	blacklistKeyPrefix = "blacklist:"
)

// TokenPair carries the two tokens issued at login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService coordinates authentication, token lifecycle, and the login
// audit ledger.
type SessionService struct {
	cfg      *config.AppConfig
	accounts port.AccountRepository
	ledger   port.LoginLedger
	cache    port.TokenCache
	issuer   *security.TokenIssuer
	events   port.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(
	cfg *config.AppConfig,
	accounts port.AccountRepository,
	ledger port.LoginLedger,
	cache port.TokenCache,
	issuer *security.TokenIssuer,
	events port.EventPublisher,
	log *zap.Logger,
) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		cfg:      cfg,
		accounts: accounts,
		ledger:   ledger,
		cache:    cache,
		issuer:   issuer,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *SessionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Authenticate verifies the handle and password without issuing tokens.
// A failed password check is still recorded in the ledger.
func (s *SessionService) Authenticate(ctx context.Context, handle, password string, meta domain.ClientMeta) (*domain.Account, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || password == "" {
		return nil, ErrInvalidCredential
	}

	account, err := s.accounts.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.appendLedger(ctx, account.ID, meta, false)
		return nil, ErrInvalidCredential
	}

	if !account.Active {
		return nil, ErrAccountInactive
	}

	return account, nil
}

// Login authenticates and issues a fresh token pair. The refresh token is
// cached under the account handle, replacing any previous session. Audit and
// event failures never fail the login.
func (s *SessionService) Login(ctx context.Context, handle, password string, meta domain.ClientMeta) (*TokenPair, *domain.Account, error) {
	account, err := s.Authenticate(ctx, handle, password, meta)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	s.appendLedger(ctx, account.ID, meta, true)

	if s.events != nil {
		event := domain.SessionStartedEvent{
			EventID:   uuid.NewString(),
			AccountID: account.ID,
			Handle:    account.Handle,
			StartedAt: s.now(),
			IP:        meta.IP,
			UserAgent: meta.UserAgent,
		}
		if err := s.events.PublishSessionStarted(ctx, event); err != nil {
			s.log.Warn("publish session started failed", zap.Error(err))
		}
	}

	sanitized := *account
	sanitized.PasswordHash = ""

	return pair, &sanitized, nil
}

// RefreshAccessToken validates the refresh token and mints a new access
// token. The refresh token itself is not rotated.
func (s *SessionService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", ErrMissingToken
	}

	blacklisted, err := s.isBlacklisted(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if blacklisted {
		return "", ErrTokenBlacklisted
	}

	claims, err := s.issuer.Parse(refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return "", ErrTokenInvalid
	}

	accessToken, err := s.issuer.Issue(claims.AccountID, claims.Handle, security.TokenTypeAccess, s.accessTTL())
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	return accessToken, nil
}

// ValidateAccessToken checks the blacklist and then the token itself,
// returning the embedded session claims. Used by the auth middleware.
func (s *SessionService) ValidateAccessToken(ctx context.Context, accessToken string) (*security.SessionClaims, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrMissingToken
	}

	blacklisted, err := s.isBlacklisted(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}

	claims, err := s.issuer.Parse(accessToken, security.TokenTypeAccess)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Logout revokes the supplied refresh token, drops the cached refresh token,
// and stamps logout_at on the newest ledger row. A missing ledger row is
// tolerated: the revocation already happened, so logout still succeeds.
func (s *SessionService) Logout(ctx context.Context, refreshToken string, claims *security.SessionClaims) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return ErrMissingToken
	}
	if claims == nil {
		return ErrTokenInvalid
	}

	// The blacklist entry outlives the refresh token itself, so a replayed
	// token keeps failing until it would have expired anyway.
	fp := security.Fingerprint(refreshToken)
	if err := s.cache.Set(ctx, blacklistKeyPrefix+fp, "revoked", s.refreshTTL()); err != nil {
		return fmt.Errorf("blacklist refresh token: %w", err)
	}

	if err := s.cache.Delete(ctx, tokenKeyPrefix+claims.Handle); err != nil {
		s.log.Warn("drop cached refresh token failed",
			zap.String("handle", claims.Handle), zap.Error(err))
	}

	s.closeLedger(ctx, claims.AccountID)

	if s.events != nil {
		event := domain.SessionClosedEvent{
			EventID:   uuid.NewString(),
			AccountID: claims.AccountID,
			Handle:    claims.Handle,
			ClosedAt:  s.now(),
			Reason:    "logout",
		}
		if err := s.events.PublishSessionClosed(ctx, event); err != nil {
			s.log.Warn("publish session closed failed", zap.Error(err))
		}
	}

	return nil
}

// Deactivate marks the account inactive. Deactivating an already inactive
// account is a no-op, not an error.
func (s *SessionService) Deactivate(ctx context.Context, accountID string) error {
	if accountID == "" {
		return ErrAccountNotFound
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if !account.Deactivate() {
		return nil
	}

	if err := s.accounts.Deactivate(ctx, account.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("deactivate account: %w", err)
	}

	if s.events != nil {
		event := domain.AccountDeactivatedEvent{
			EventID:       uuid.NewString(),
			AccountID:     account.ID,
			Handle:        account.Handle,
			DeactivatedAt: s.now(),
		}
		if err := s.events.PublishAccountDeactivated(ctx, event); err != nil {
			s.log.Warn("publish account deactivated failed", zap.Error(err))
		}
	}

	return nil
}

func (s *SessionService) issueSession(ctx context.Context, account *domain.Account) (*TokenPair, error) {
	accessToken, err := s.issuer.Issue(account.ID, account.Handle, security.TokenTypeAccess, s.accessTTL())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.issuer.Issue(account.ID, account.Handle, security.TokenTypeRefresh, s.refreshTTL())
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	// Overwrite replaces the previous session's cached token. Last login wins.
	if err := s.cache.Set(ctx, tokenKeyPrefix+account.Handle, refreshToken, s.refreshTTL()); err != nil {
		return nil, fmt.Errorf("cache refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *SessionService) isBlacklisted(ctx context.Context, token string) (bool, error) {
	_, present, err := s.cache.Get(ctx, blacklistKeyPrefix+security.Fingerprint(token))
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return present, nil
}

func (s *SessionService) appendLedger(ctx context.Context, accountID string, meta domain.ClientMeta, succeeded bool) {
	record := domain.LoginRecord{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		LoginAt:     s.now(),
		ClientIP:    meta.IP,
		ClientAgent: meta.UserAgent,
		Succeeded:   succeeded,
	}

	if err := s.ledger.Append(ctx, record); err != nil {
		s.log.Warn("append login record failed",
			zap.String("account_id", accountID),
			zap.String("client_ip", logger.MaskIP(meta.IP)),
			zap.Error(err))
	}
}

func (s *SessionService) closeLedger(ctx context.Context, accountID string) {
	record, err := s.ledger.MostRecentFor(ctx, accountID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("lookup login record failed",
				zap.String("account_id", accountID), zap.Error(err))
		}
		return
	}

	if err := s.ledger.Close(ctx, record.ID, s.now()); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("close login record failed",
			zap.String("account_id", accountID), zap.Error(err))
	}
}

func (s *SessionService) accessTTL() time.Duration {
	ttl := s.cfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return ttl
}

func (s *SessionService) refreshTTL() time.Duration {
	ttl := s.cfg.JWT.RefreshTokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return ttl
}
