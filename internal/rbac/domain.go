// Package rbac gates every mutating ledger call behind a static permission
// matrix implementing segregation of duties.
package rbac

import "github.com/muhasaba-erp/muhasaba-erp/internal/auth"

// Permission names an atomic capability.
type Permission string

const (
	PermJournalCreate  Permission = "journal:create"
	PermJournalApprove Permission = "journal:approve"
	PermJournalCancel  Permission = "journal:cancel"
	PermDocumentCreate Permission = "document:create"
	PermAccountView    Permission = "account:view"
	PermAccountEdit    Permission = "account:edit"
	PermReportView     Permission = "report:view"
	PermAuditView      Permission = "audit:view"
	PermPeriodLock     Permission = "period:lock"
)

// matrix is the fixed role to permission assignment. ACCOUNTANT records,
// APPROVER additionally approves and corrects, AUDITOR only reads, ADMIN
// administers the chart and period locks on top of everything else.
var matrix = map[auth.Role][]Permission{
	auth.RoleAccountant: {
		PermJournalCreate,
		PermDocumentCreate,
		PermAccountView,
		PermReportView,
	},
	auth.RoleApprover: {
		PermJournalCreate,
		PermJournalApprove,
		PermJournalCancel,
		PermDocumentCreate,
		PermAccountView,
		PermReportView,
	},
	auth.RoleAuditor: {
		PermAccountView,
		PermReportView,
		PermAuditView,
	},
	auth.RoleAdmin: {
		PermJournalCreate,
		PermJournalApprove,
		PermJournalCancel,
		PermDocumentCreate,
		PermAccountView,
		PermAccountEdit,
		PermReportView,
		PermAuditView,
		PermPeriodLock,
	},
}

// RolePermissions returns the permissions granted to a role.
func RolePermissions(role auth.Role) []Permission {
	perms := matrix[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleHas reports whether the role grants the permission. Unknown roles grant
// nothing.
func RoleHas(role auth.Role, perm Permission) bool {
	for _, p := range matrix[role] {
		if p == perm {
			return true
		}
	}
	return false
}
