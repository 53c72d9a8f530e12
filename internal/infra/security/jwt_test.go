package security

import (
	"errors"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()

	keys, err := NewEphemeralKeyProvider()
	if err != nil {
		t.Fatalf("NewEphemeralKeyProvider returned error: %v", err)
	}
	return NewTokenIssuer(keys, "wayfare")
}

func TestTokenIssuerIssueAndParse(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.Issue("acct-1", "wanderer", TokenTypeAccess, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}

	claims, err := issuer.Parse(token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.AccountID != "acct-1" {
		t.Fatalf("expected account acct-1, got %s", claims.AccountID)
	}
	if claims.Handle != "wanderer" {
		t.Fatalf("expected handle wanderer, got %s", claims.Handle)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("expected access token type, got %s", claims.TokenType)
	}
}

func TestTokenIssuerRejectsWrongType(t *testing.T) {
	issuer := newTestIssuer(t)

	refresh, err := issuer.Issue("acct-1", "wanderer", TokenTypeRefresh, time.Hour)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := issuer.Parse(refresh, TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for mismatched type, got %v", err)
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := newTestIssuer(t)

	issuedAt := time.Now().UTC()
	issuer.WithClock(func() time.Time { return issuedAt })

	token, err := issuer.Issue("acct-1", "wanderer", TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	issuer.WithClock(func() time.Time { return issuedAt.Add(2 * time.Minute) })

	if _, err := issuer.Parse(token, TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestTokenIssuerRejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer(t)
	other := newTestIssuer(t)

	token, err := other.Issue("acct-1", "wanderer", TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := issuer.Parse(token, TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}

func TestTokenIssuerRejectsEmptyToken(t *testing.T) {
	issuer := newTestIssuer(t)

	if _, err := issuer.Parse("   ", TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for blank token, got %v", err)
	}
}

func TestTokenIssuerIssueRequiresAccount(t *testing.T) {
	issuer := newTestIssuer(t)

	if _, err := issuer.Issue("", "wanderer", TokenTypeAccess, time.Minute); err == nil {
		t.Fatal("expected error for empty account id")
	}
	if _, err := issuer.Issue("acct-1", "wanderer", TokenTypeAccess, 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}
