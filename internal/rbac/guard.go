package rbac

import (
	"context"
	"fmt"
	"net/http"

	"github.com/muhasaba-erp/muhasaba-erp/internal/auth"
	"github.com/muhasaba-erp/muhasaba-erp/internal/platform/httpx"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// Guard resolves the caller's role from the request context and checks the
// permission matrix. The zero value is usable.
type Guard struct{}

// NewGuard constructs a Guard.
func NewGuard() Guard {
	return Guard{}
}

// Require returns ErrPermissionDenied unless the context carries a principal
// whose role grants the permission. Absence of a principal fails closed.
func (Guard) Require(ctx context.Context, perm Permission) error {
	principal := auth.PrincipalFromContext(ctx)
	if principal == nil {
		return fmt.Errorf("rbac: no authenticated caller: %w", shared.ErrPermissionDenied)
	}
	if !RoleHas(principal.Role, perm) {
		return fmt.Errorf("rbac: role %s lacks %s: %w", principal.Role, perm, shared.ErrPermissionDenied)
	}
	return nil
}

// Principal returns the authenticated caller, failing closed when absent.
func (Guard) Principal(ctx context.Context) (auth.Principal, error) {
	principal := auth.PrincipalFromContext(ctx)
	if principal == nil {
		return auth.Principal{}, fmt.Errorf("rbac: no authenticated caller: %w", shared.ErrPermissionDenied)
	}
	return *principal, nil
}

// RequirePermission is HTTP middleware rejecting requests whose caller lacks
// the permission.
func (g Guard) RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Require(r.Context(), perm); err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
