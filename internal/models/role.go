package models

// Built-in roles, seeded at startup. They cannot be renamed or deleted.
const (
	RoleAdmin     = "Admin"
	RoleModerator = "Moderator"
	RoleUser      = "User"
)

// BuiltinRoles lists the protected role names in seed order.
var BuiltinRoles = []string{RoleAdmin, RoleModerator, RoleUser}

// Role is a named grant. Name is unique; NormalizedName is its uppercase twin.
type Role struct {
	ID             string
	Name           string
	NormalizedName string
}
