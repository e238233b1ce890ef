package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Password holds a bcrypt hash, never the plaintext.
type User struct {
	ID         string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name for display and email templates.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
