package service

import "reviewhub/internal/api/models"

// canModify is the mutation rule for reviews and comments: admins and
// moderators may touch anything, everyone else only their own records.
func canModify(role models.Role, isOwner bool) bool {
	return role == models.RoleAdmin || role == models.RoleModerator || isOwner
}
