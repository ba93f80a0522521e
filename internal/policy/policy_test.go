package policy

import (
	"testing"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanEditOrDelete(t *testing.T) {
	tests := []struct {
		name          string
		actorUsername string
		actorRoles    []string
		contentAuthor string
		want          bool
	}{
		{"author edits own content", "alice", nil, "alice", true},
		{"stranger denied", "bob", nil, "alice", false},
		{"stranger with user role denied", "bob", []string{models.RoleUser}, "alice", false},
		{"moderator edits anyone", "mod", []string{models.RoleModerator}, "alice", true},
		{"admin edits anyone", "root", []string{models.RoleAdmin}, "alice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditOrDelete(tt.actorUsername, tt.actorRoles, tt.contentAuthor))
		})
	}
}

func TestCanWarn(t *testing.T) {
	admin := []string{models.RoleAdmin}
	moderator := []string{models.RoleModerator}
	user := []string{models.RoleUser}

	tests := []struct {
		name        string
		actorRoles  []string
		targetRoles []string
		want        bool
	}{
		{"moderator warns roleless target", moderator, nil, true},
		{"moderator warns empty role set", moderator, []string{}, true},
		{"moderator warns plain user", moderator, user, true},
		{"admin warns plain user", admin, user, true},
		{"moderator cannot warn moderator", moderator, moderator, false},
		{"admin warns moderator", admin, moderator, true},
		{"admin cannot warn admin", admin, admin, false},
		{"moderator cannot warn admin", moderator, admin, false},
		{"nobody warns admin+moderator combo", admin, []string{models.RoleModerator, models.RoleAdmin}, false},
		{"plain user cannot warn anyone", user, nil, false},
		{"roleless actor cannot warn", nil, nil, false},
		{"user+moderator combo target not warnable by moderator", moderator, []string{models.RoleUser, models.RoleModerator}, false},
		{"user+moderator combo target warnable by admin", admin, []string{models.RoleUser, models.RoleModerator}, true},
		{"custom role target not warnable", admin, []string{"Contributor"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanWarn(tt.actorRoles, tt.targetRoles))
		})
	}
}

func TestCanMutateRole(t *testing.T) {
	assert.False(t, CanMutateRole("Admin"))
	assert.False(t, CanMutateRole("Moderator"))
	assert.False(t, CanMutateRole("User"))
	assert.True(t, CanMutateRole("Contributor"))
	// Protection is case-sensitive, mirroring the seeded names
	assert.True(t, CanMutateRole("admin"))
}

func TestCanEditOtherUserFields(t *testing.T) {
	assert.True(t, CanEditOtherUserFields([]string{models.RoleAdmin}))
	assert.False(t, CanEditOtherUserFields([]string{models.RoleModerator}))
	assert.False(t, CanEditOtherUserFields([]string{models.RoleUser}))
	assert.False(t, CanEditOtherUserFields(nil))
}

func TestCanDeleteUser(t *testing.T) {
	assert.True(t, CanDeleteUser([]string{models.RoleUser}))
	assert.True(t, CanDeleteUser([]string{models.RoleModerator}))
	assert.True(t, CanDeleteUser(nil))
	assert.False(t, CanDeleteUser([]string{models.RoleAdmin}))
	assert.False(t, CanDeleteUser([]string{models.RoleModerator, models.RoleAdmin}))
}
