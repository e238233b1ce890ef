package application

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password, and
	// bad or expired tokens alike, so callers cannot probe which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOrExpiredOtp covers absent, expired, and already consumed
	// one-time codes.
	ErrInvalidOrExpiredOtp = errors.New("invalid or expired code")
	// ErrAlreadyExists surfaces unique-constraint violations (duplicate
	// email, token collision).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidToken is returned by token decoding on a bad signature or
	// embedded expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrStorage wraps persistence failures that cannot be recovered here.
	ErrStorage = errors.New("storage failure")
)

// ValidationError rejects malformed input before it reaches the core flows.
// Details maps field names to human-readable messages.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %d field(s)", len(e.Details))
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
