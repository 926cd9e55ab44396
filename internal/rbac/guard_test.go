package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muhasaba-erp/muhasaba-erp/internal/auth"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

func ctxWithRole(role auth.Role) context.Context {
	return auth.ContextWithPrincipal(context.Background(), &auth.Principal{UserID: 7, Role: role})
}

func TestGuardFailsClosedWithoutPrincipal(t *testing.T) {
	err := NewGuard().Require(context.Background(), PermJournalCreate)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestGuardRejectsUnknownRole(t *testing.T) {
	err := NewGuard().Require(ctxWithRole(auth.Role("INTERN")), PermReportView)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestSegregationOfDuties(t *testing.T) {
	guard := NewGuard()
	cases := []struct {
		role    auth.Role
		perm    Permission
		allowed bool
	}{
		{auth.RoleAccountant, PermJournalCreate, true},
		{auth.RoleAccountant, PermDocumentCreate, true},
		{auth.RoleAccountant, PermReportView, true},
		{auth.RoleAccountant, PermJournalCancel, false},
		{auth.RoleAccountant, PermPeriodLock, false},
		{auth.RoleApprover, PermJournalCancel, true},
		{auth.RoleApprover, PermJournalApprove, true},
		{auth.RoleApprover, PermAccountEdit, false},
		{auth.RoleAuditor, PermReportView, true},
		{auth.RoleAuditor, PermAuditView, true},
		{auth.RoleAuditor, PermJournalCreate, false},
		{auth.RoleAuditor, PermDocumentCreate, false},
		{auth.RoleAdmin, PermPeriodLock, true},
		{auth.RoleAdmin, PermAccountEdit, true},
		{auth.RoleAdmin, PermJournalCreate, true},
	}
	for _, tc := range cases {
		err := guard.Require(ctxWithRole(tc.role), tc.perm)
		if tc.allowed {
			require.NoError(t, err, "%s %s", tc.role, tc.perm)
		} else {
			require.ErrorIs(t, err, shared.ErrPermissionDenied, "%s %s", tc.role, tc.perm)
		}
	}
}

func TestRolePermissionsCopies(t *testing.T) {
	perms := RolePermissions(auth.RoleAuditor)
	require.NotEmpty(t, perms)
	perms[0] = Permission("mutated")
	require.NotEqual(t, perms[0], RolePermissions(auth.RoleAuditor)[0])
}
