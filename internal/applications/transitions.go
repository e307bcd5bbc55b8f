package applications

import (
	"slices"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/types"
)

// transitions lists the roles an employer may move an application to, keyed
// by the role it currently holds. Terminal roles have no entry.
var transitions = map[types.StatusRole][]types.StatusRole{
	types.StatusRoleApplied: {types.StatusRoleCustom, types.StatusRoleHired, types.StatusRoleRejected},
	types.StatusRoleCustom:  {types.StatusRoleCustom, types.StatusRoleHired, types.StatusRoleRejected},
}

// CheckTransition reports whether an employer may move an application from
// status from to status to.
func CheckTransition(from, to types.Status) error {
	if to.Role == types.StatusRoleWithdrawn {
		return apperr.Forbidden(apperr.CodeStatusChangeNotPermitted, "employers cannot withdraw an application")
	}
	if from.Role.IsTerminal() {
		return apperr.Conflict(apperr.CodeApplicationFinalized, "application is already %s", from.Name)
	}
	if from.ID == to.ID || !slices.Contains(transitions[from.Role], to.Role) {
		return apperr.Conflict(apperr.CodeInvalidStatusTransition, "cannot move application from %s to %s", from.Name, to.Name)
	}
	return nil
}

// CanWithdraw reports whether a candidate may still withdraw from status.
func CanWithdraw(from types.Status) error {
	if from.Role.IsTerminal() {
		return apperr.Conflict(apperr.CodeApplicationFinalized, "application is already %s", from.Name)
	}
	return nil
}
