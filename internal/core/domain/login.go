package domain

import "time"

// ClientMeta carries request metadata captured at login time.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// LoginRecord is one row of the login audit ledger. Rows are created on every
// login attempt and mutated at most once, when logout stamps logout_at.
type LoginRecord struct {
	ID          string
	AccountID   string
	LoginAt     time.Time
	LogoutAt    *time.Time
	ClientIP    string
	ClientAgent string
	Succeeded   bool
}

// Close stamps the logout time.
// Returns true when the record transitioned from open to closed.
func (r *LoginRecord) Close(at time.Time) bool {
	if r.LogoutAt != nil {
		return false
	}
	atCopy := at
	r.LogoutAt = &atCopy
	return true
}

// IsOpen reports whether the record still represents a live session.
func (r LoginRecord) IsOpen() bool {
	return r.LogoutAt == nil
}
