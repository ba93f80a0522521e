package models

import "time"

// Warning threshold: every WarningLockoutStep-th cumulative warning triggers a
// lockout (5, 10, 15, ...). The count is never reset.
const WarningLockoutStep = 5

// LedgerEntry is the per-user trust record supplementing the identity row.
// Exactly one entry per user, created lazily with one username change token
// and zero warnings the first time the user is touched by a ledger operation.
type LedgerEntry struct {
	UserID               string
	UsernameChangeTokens int
	UserWarningsCount    int
	UserLockoutCount     int
	UpdatedAt            time.Time
}

// WarningOutcome is the result of recording a single warning.
type WarningOutcome struct {
	NewCount         int
	LockoutTriggered bool
}

// LedgerAdjustment carries an admin override of the raw counters. Nil fields
// are left unchanged; negative values are silently ignored, not an error.
type LedgerAdjustment struct {
	UsernameChangeTokens *int
	UserWarningsCount    *int
}
