package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/repository"
)

func newVerificationFixture(accounts *mockAccountRepository, mailer *mockMailer) *VerificationService {
	cfg := &config.AppConfig{}
	cfg.Verify.CodeLength = 6
	cfg.Verify.CodeTTL = 5 * time.Minute

	return NewVerificationService(cfg, accounts, mailer, nil)
}

func unverifiedAccount() *domain.Account {
	return &domain.Account{
		ID:     "acct-1",
		Handle: "wanderer",
		Email:  "wanderer@example.com",
		Active: true,
	}
}

func TestVerificationService_IssueChallenge(t *testing.T) {
	accounts := &mockAccountRepository{getByIDResult: unverifiedAccount()}
	mailer := &mockMailer{}
	service := newVerificationFixture(accounts, mailer)

	fixedNow := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return fixedNow })

	if err := service.IssueChallenge(context.Background(), "acct-1"); err != nil {
		t.Fatalf("IssueChallenge returned error: %v", err)
	}

	if accounts.setChallengeCalls != 1 {
		t.Fatalf("expected challenge to be stored once, got %d", accounts.setChallengeCalls)
	}
	if len(accounts.setChallengeCode) != 6 {
		t.Fatalf("expected 6-digit code, got %q", accounts.setChallengeCode)
	}
	for _, r := range accounts.setChallengeCode {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric code, got %q", accounts.setChallengeCode)
		}
	}
	if !accounts.setChallengeIssued.Equal(fixedNow) {
		t.Fatalf("expected issue timestamp %v, got %v", fixedNow, accounts.setChallengeIssued)
	}

	if mailer.calls != 1 {
		t.Fatalf("expected one mail, got %d", mailer.calls)
	}
	if mailer.recipient != "wanderer@example.com" {
		t.Fatalf("expected mail to account address, got %s", mailer.recipient)
	}
	if mailer.code != accounts.setChallengeCode {
		t.Fatalf("expected mailed code to match stored code")
	}
}

func TestVerificationService_IssueChallengeAlreadyVerified(t *testing.T) {
	account := unverifiedAccount()
	account.EmailVerified = true
	accounts := &mockAccountRepository{getByIDResult: account}
	service := newVerificationFixture(accounts, &mockMailer{})

	if err := service.IssueChallenge(context.Background(), "acct-1"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestVerificationService_IssueChallengeDeliveryFailure(t *testing.T) {
	accounts := &mockAccountRepository{getByIDResult: unverifiedAccount()}
	mailer := &mockMailer{err: errors.New("smtp refused")}
	service := newVerificationFixture(accounts, mailer)

	err := service.IssueChallenge(context.Background(), "acct-1")
	if !errors.Is(err, ErrDeliveryFailure) {
		t.Fatalf("expected ErrDeliveryFailure, got %v", err)
	}

	// The code was stored before the send attempt: a retried send reuses
	// a fresh challenge, not a half-written one.
	if accounts.setChallengeCalls != 1 {
		t.Fatalf("expected challenge stored despite delivery failure, got %d", accounts.setChallengeCalls)
	}
}

func TestVerificationService_ConfirmChallenge(t *testing.T) {
	issuedAt := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	code := "042137"

	account := unverifiedAccount()
	account.SetChallenge(code, issuedAt)
	accounts := &mockAccountRepository{getByIDResult: account}
	service := newVerificationFixture(accounts, &mockMailer{})
	service.WithClock(func() time.Time { return issuedAt.Add(3 * time.Minute) })

	if err := service.ConfirmChallenge(context.Background(), "acct-1", code); err != nil {
		t.Fatalf("ConfirmChallenge returned error: %v", err)
	}

	if accounts.confirmEmailCalls != 1 || accounts.confirmEmailID != "acct-1" {
		t.Fatalf("expected ConfirmEmail for acct-1, calls=%d", accounts.confirmEmailCalls)
	}
}

func TestVerificationService_ConfirmChallengeErrors(t *testing.T) {
	issuedAt := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	code := "042137"

	cases := []struct {
		name    string
		account func() *domain.Account
		at      time.Time
		submit  string
		want    error
	}{
		{
			name:    "already verified",
			account: func() *domain.Account { a := unverifiedAccount(); a.EmailVerified = true; return a },
			at:      issuedAt,
			submit:  code,
			want:    ErrAlreadyVerified,
		},
		{
			// No challenge on file reads as an expired one.
			name:    "no pending challenge",
			account: unverifiedAccount,
			at:      issuedAt,
			submit:  code,
			want:    ErrCodeExpired,
		},
		{
			name: "empty submitted code",
			account: func() *domain.Account {
				a := unverifiedAccount()
				a.SetChallenge(code, issuedAt)
				return a
			},
			at:     issuedAt.Add(time.Minute),
			submit: "",
			want:   ErrMissingCode,
		},
		{
			name: "expired code",
			account: func() *domain.Account {
				a := unverifiedAccount()
				a.SetChallenge(code, issuedAt)
				return a
			},
			at:     issuedAt.Add(6 * time.Minute),
			submit: code,
			want:   ErrCodeExpired,
		},
		{
			name: "mismatched code",
			account: func() *domain.Account {
				a := unverifiedAccount()
				a.SetChallenge(code, issuedAt)
				return a
			},
			at:     issuedAt.Add(time.Minute),
			submit: "999999",
			want:   ErrCodeMismatch,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accounts := &mockAccountRepository{getByIDResult: tc.account()}
			service := newVerificationFixture(accounts, &mockMailer{})
			service.WithClock(func() time.Time { return tc.at })

			if err := service.ConfirmChallenge(context.Background(), "acct-1", tc.submit); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}

			if accounts.confirmEmailCalls != 0 {
				t.Fatalf("expected no ConfirmEmail call on failure")
			}
		})
	}
}

func TestVerificationService_ConfirmChallengeUnknownAccount(t *testing.T) {
	accounts := &mockAccountRepository{getByIDErr: repository.ErrNotFound}
	service := newVerificationFixture(accounts, &mockMailer{})

	if err := service.ConfirmChallenge(context.Background(), "ghost", "123456"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
