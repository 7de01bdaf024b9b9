// Package policy decides which actions a principal may see or use. Every
// function is pure and treats a missing identity as "no".
package policy

import "github.com/bem92/yoga-app/internal/client"

// CanManageSessions reports whether create, edit and delete session
// controls are available.
func CanManageSessions(identity client.SessionInformation, ok bool) bool {
	return ok && identity.Admin
}

// CanDeleteOwnAccount reports whether the account being viewed may be
// deleted by the current principal. Administrators cannot delete their own
// account.
func CanDeleteOwnAccount(identity client.SessionInformation, ok bool, viewedUserID int64) bool {
	return ok && !identity.Admin && identity.ID == viewedUserID
}

// CanParticipate reports whether join/leave controls are available.
func CanParticipate(identity client.SessionInformation, ok bool) bool {
	return ok && !identity.Admin
}
