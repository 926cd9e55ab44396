// Package auth resolves the caller identity and role from bearer tokens.
package auth

import "strings"

// Role is a fixed caller role. There is no default role: a caller whose role
// cannot be resolved is rejected by the permission guard.
type Role string

const (
	RoleAccountant Role = "ACCOUNTANT"
	RoleApprover   Role = "APPROVER"
	RoleAuditor    Role = "AUDITOR"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole maps a raw claim value onto a known role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAccountant:
		return RoleAccountant, true
	case RoleApprover:
		return RoleApprover, true
	case RoleAuditor:
		return RoleAuditor, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Principal describes the authenticated actor for the current request.
type Principal struct {
	UserID int64
	Role   Role
}
