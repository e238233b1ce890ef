package entity

import "time"

// Session is the bookkeeping row persisted for every issued token so that
// logout can find and delete it. Token validity itself is self-contained in
// the signed token; the row is never consulted during validation.
type Session struct {
	ID        string
	UserID    string
	Token     string
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionMeta carries client metadata captured at issue time.
type SessionMeta struct {
	IP        string
	UserAgent string
}
