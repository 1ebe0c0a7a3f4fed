package middlewares

import (
	"net/http"

	"github.com/ray-remotestate/toomburg/models"
	"github.com/ray-remotestate/toomburg/sessions"
)

// RoleBasedMiddleware lets a request through only when the session identity holds
// one of the allowed roles; otherwise denied handles it.
func RoleBasedMiddleware(denied http.Handler, allowedRoles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool)
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil || !hasRole(sess.Identity, allowed) {
				denied.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(id sessions.Identity, allowed map[models.Role]bool) bool {
	switch {
	case id.IsAdmin():
		return allowed[models.RoleAdmin]
	case id.IsCustomer():
		return allowed[models.RoleCustomer]
	}
	return false
}
