package domain

import "time"

// DefaultPhoneNumber is stored when an account is created without a phone number.
const DefaultPhoneNumber = "0000000000"

// Account mirrors the persisted representation in the accounts table.
type Account struct {
	ID               string
	Handle           string
	Email            string
	PasswordHash     string
	Nickname         string
	Gender           *string
	PhoneNumber      string
	Active           bool
	EmailVerified    bool
	PhoneVerified    bool
	VerificationCode *string
	CodeIssuedAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Deactivate marks the account inactive.
// Returns true when the account transitioned from active to inactive.
func (a *Account) Deactivate() bool {
	if !a.Active {
		return false
	}
	a.Active = false
	return true
}

// SetChallenge stores a fresh verification code and its issue timestamp.
// Both fields are always written together.
func (a *Account) SetChallenge(code string, at time.Time) {
	codeCopy := code
	atCopy := at
	a.VerificationCode = &codeCopy
	a.CodeIssuedAt = &atCopy
}

// ClearChallenge removes the pending verification code. Both fields are
// cleared together so an account never holds a code without a timestamp.
func (a *Account) ClearChallenge() {
	a.VerificationCode = nil
	a.CodeIssuedAt = nil
}

// ChallengeExpired reports whether the pending code is missing or older than
// the supplied validity window at the given moment.
func (a Account) ChallengeExpired(at time.Time, window time.Duration) bool {
	if a.CodeIssuedAt == nil || a.VerificationCode == nil {
		return true
	}
	return at.Sub(*a.CodeIssuedAt) > window
}
