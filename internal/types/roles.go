// Package types defines the records and request shapes shared by the job portal services.
package types

import "strings"

// Role is the kind of principal behind an authenticated request.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployer  Role = "employer"
	RoleCandidate Role = "candidate"
)

// ParseRole normalizes a role name.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEmployer:
		return RoleEmployer, true
	case RoleCandidate:
		return RoleCandidate, true
	}
	return "", false
}

// StatusRole is the semantic tag the application workflow attaches to a status.
type StatusRole string

const (
	StatusRoleApplied   StatusRole = "applied"
	StatusRoleHired     StatusRole = "hired"
	StatusRoleRejected  StatusRole = "rejected"
	StatusRoleWithdrawn StatusRole = "withdrawn"
	StatusRoleCustom    StatusRole = "custom"
)

// ReservedStatusRoles lists the roles the workflow relies on.
var ReservedStatusRoles = []StatusRole{
	StatusRoleApplied,
	StatusRoleHired,
	StatusRoleRejected,
	StatusRoleWithdrawn,
}

// IsTerminal reports whether an application in this role can no longer move.
func (r StatusRole) IsTerminal() bool {
	switch r {
	case StatusRoleHired, StatusRoleRejected, StatusRoleWithdrawn:
		return true
	}
	return false
}

// Valid reports whether r is a known role.
func (r StatusRole) Valid() bool {
	switch r {
	case StatusRoleApplied, StatusRoleHired, StatusRoleRejected, StatusRoleWithdrawn, StatusRoleCustom:
		return true
	}
	return false
}
