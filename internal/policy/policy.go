// Package policy holds the pure authorization rules for content moderation and
// user administration. Functions here read role sets and ownership only; they
// never touch storage.
package policy

import "github.com/HardcoreMagazine/selenicspark/internal/models"

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func isStaff(roles []string) bool {
	return hasRole(roles, models.RoleAdmin) || hasRole(roles, models.RoleModerator)
}

// CanEditOrDelete reports whether the actor may edit or delete content authored
// by contentAuthor: the author themselves, or any Admin or Moderator.
func CanEditOrDelete(actorUsername string, actorRoles []string, contentAuthor string) bool {
	return actorUsername == contentAuthor || isStaff(actorRoles)
}

// CanWarn reports whether an actor with actorRoles may warn a target with
// targetRoles. The actor must be staff. Three role shapes make a target
// warnable: no roles at all, only the User role, or a Moderator target warned
// by an Admin. Admin targets are never warnable, and Moderators cannot warn
// their peers.
func CanWarn(actorRoles, targetRoles []string) bool {
	if !isStaff(actorRoles) {
		return false
	}
	if len(targetRoles) == 0 {
		return true
	}
	if len(targetRoles) == 1 && targetRoles[0] == models.RoleUser {
		return true
	}
	if hasRole(targetRoles, models.RoleAdmin) {
		return false
	}
	if hasRole(targetRoles, models.RoleModerator) {
		return hasRole(actorRoles, models.RoleAdmin)
	}
	return false
}

// CanMutateRole reports whether a role with the given current name may be
// renamed or deleted. The three built-in roles are protected.
func CanMutateRole(roleName string) bool {
	for _, builtin := range models.BuiltinRoles {
		if roleName == builtin {
			return false
		}
	}
	return true
}

// CanEditOtherUserFields reports whether the actor may edit another user's
// identity fields. Admin only.
func CanEditOtherUserFields(actorRoles []string) bool {
	return hasRole(actorRoles, models.RoleAdmin)
}

// CanDeleteUser reports whether a user with targetRoles may be deleted.
// Holding Admin anywhere in the role set blocks deletion, regardless of what
// else the target holds.
func CanDeleteUser(targetRoles []string) bool {
	return !hasRole(targetRoles, models.RoleAdmin)
}
