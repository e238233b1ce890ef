package entity

import "time"

// OtpKind is the purpose a one-time code was issued for. A code only ever
// matches within its own kind.
type OtpKind string

const (
	OtpKindEmailVerification OtpKind = "email_verification"
	OtpKindPhoneVerification OtpKind = "phone_verification"
	OtpKindLogin             OtpKind = "login"
	OtpKindPasswordReset     OtpKind = "password_reset"
)

// OtpCode is a single-use 6-digit numeric code bound to a user and a kind.
// Verified flips to true exactly once on consumption; an expired or already
// verified code never matches again. Multiple outstanding unverified codes
// per (user, kind) are permitted.
type OtpCode struct {
	ID        string
	UserID    string
	Code      string
	Kind      OtpKind
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *OtpCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
