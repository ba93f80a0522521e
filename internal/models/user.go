package models

import (
	"strings"
	"time"
)

// Username length bounds enforced on self-service renames.
const (
	UsernameMinLen = 4
	UsernameMaxLen = 24
)

// User is the identity record. Credential verification and session issuance
// live in the external identity front-end; this service owns the stored fields
// and the moderation state derived from them.
type User struct {
	ID                 string
	Username           string
	NormalizedUsername string // uppercase twin, kept in sync on every rename
	Email              string
	NormalizedEmail    string
	PasswordHash       string // written by the identity front-end, opaque here
	EmailConfirmed     bool
	LockoutEnd         *time.Time // nil or past means not locked
	AccessFailedCount  int
	Roles              []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsLockedOut reports whether the user is suspended at the given instant.
// Lockout expiry is lazy: nothing ever clears LockoutEnd, it just ages out.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeName is the uppercase transform applied to usernames and emails
// before storing their normalized twins.
func NormalizeName(s string) string {
	return strings.ToUpper(s)
}
