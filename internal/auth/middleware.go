package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware authenticates requests carrying a bearer token.
type Middleware struct {
	Secret []byte
	Logger *slog.Logger
}

// Authenticate parses the Authorization header when present and stores the
// principal in the request context. A missing header leaves the principal
// unset so the permission guard rejects any guarded call downstream; a
// malformed or unverifiable token is rejected immediately.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		principal, err := ParseToken(m.Secret, strings.TrimSpace(parts[1]))
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("reject bearer token", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		ctx := ContextWithPrincipal(r.Context(), &principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
