package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxUserID ctxKey = "userID"
	CtxRole   ctxKey = "role"
)

// Staff roles, in decreasing order of privilege.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleTechnician = "technician"
	RoleInspector  = "inspector"
)

// UserID returns the authenticated user id from the request context.
func UserID(r *http.Request) uint {
	id, _ := r.Context().Value(CtxUserID).(uint)
	return id
}

// Role returns the authenticated role from the request context.
func Role(r *http.Request) string {
	role, _ := r.Context().Value(CtxRole).(string)
	return role
}

// Middleware authenticates the session cookie (or a Bearer header as a
// fallback for non-browser clients) and stores the claims in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		raw := ""
		if c, err := r.Cookie(CookieName); err == nil {
			raw = c.Value
		} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimPrefix(h, "Bearer ")
		}
		if raw == "" {
			http.Error(w, "missing session", http.StatusUnauthorized)
			return
		}
		claims, err := ParseAndValidate(raw)
		if err != nil {
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, CtxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles gates a handler to the given role allow-list. Every protected
// route declares its policy here instead of re-checking inside the handler.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[Role(r)] {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
