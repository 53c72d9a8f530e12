package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

const (
	// TokenTypeAccess marks short-lived tokens presented on ordinary requests.
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks long-lived tokens exchanged for new access tokens.
	TokenTypeRefresh = "refresh"
)

var (
	// ErrTokenInvalid indicates the token is malformed, mistyped, expired, or
	// failed signature verification.
	ErrTokenInvalid = errors.New("token invalid")
)

// SessionClaims binds an issued token to an account identity.
type SessionClaims struct {
	AccountID string `json:"uid"`
	Handle    string `json:"handle"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies the RS256-signed token pair.
type TokenIssuer struct {
	keys   KeyProvider
	issuer string
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer signing on behalf of the named issuer.
func NewTokenIssuer(keys KeyProvider, issuer string) *TokenIssuer {
	return &TokenIssuer{
		keys:   keys,
		issuer: issuer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock, used in tests.
func (t *TokenIssuer) WithClock(clock func() time.Time) {
	if clock != nil {
		t.now = clock
	}
}

// Issue signs a token of the given type for the account with the supplied TTL.
func (t *TokenIssuer) Issue(accountID, handle, tokenType string, ttl time.Duration) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("account id is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}

	now := t.now()
	claims := SessionClaims{
		AccountID: accountID,
		Handle:    handle,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = t.keys.SigningKID()

	signingKey, err := t.keys.GetSigningKey()
	if err != nil {
		return "", fmt.Errorf("get signing key: %w", err)
	}

	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the signature, expiry, issuer, and token type, returning the
// claims. Any validation failure maps to ErrTokenInvalid.
func (t *TokenIssuer) Parse(token, wantType string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}

		kid, ok := tok.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid header not found")
		}

		return t.keys.GetVerificationKey(kid)
	}, jwt.WithIssuer(t.issuer), jwt.WithAudience(t.issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, ErrTokenInvalid
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.AccountID) == "" {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != wantType {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
