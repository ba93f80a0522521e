package models

import "time"

// Moderation event types persisted to the audit trail.
const (
	EventWarningIssued   = "warning_issued"
	EventWarningDenied   = "warning_denied"
	EventLockoutApplied  = "lockout_applied"
	EventUsernameChanged = "username_changed"
	EventContentEdited   = "content_edited"
	EventContentDeleted  = "content_deleted"
	EventRoleGranted     = "role_granted"
	EventRoleRevoked     = "role_revoked"
	EventUserDeleted     = "user_deleted"
)

// ModerationEvent is one audit-trail row. Actor and Target are usernames;
// Target may be empty for role-management events.
type ModerationEvent struct {
	ID        string
	EventType string
	Actor     string
	Target    string
	Detail    string
	CreatedAt time.Time
}
