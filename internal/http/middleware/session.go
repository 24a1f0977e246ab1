package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/carebridge/portal/internal/session"
)

type contextKey string

const sessionKey contextKey = "portal.session"

// LoadSession resolves the request's session cookie and, when valid, stores
// the session on the request context. Requests without a session pass
// through untouched; route guards decide what that means.
func LoadSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, id, err := manager.Load(r)
			if err == nil {
				ctx := context.WithValue(r.Context(), sessionKey, &sessionEntry{sess: sess, id: id})
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sessionEntry struct {
	sess session.Session
	id   string
}

// SessionFromContext returns the authenticated session for the request,
// along with the session id used as the cache key.
func SessionFromContext(ctx context.Context) (session.Session, string, bool) {
	entry, ok := ctx.Value(sessionKey).(*sessionEntry)
	if !ok {
		return session.Session{}, "", false
	}
	return entry.sess, entry.id, true
}

// RequireRole admits only authenticated users with the given role.
// Anonymous requests bounce to the login page; a signed-in user of the
// other role is sent to their own dashboard instead.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _, ok := SessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !strings.EqualFold(sess.User.Role, role) {
				http.Redirect(w, r, DashboardPath(sess.User.Role), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DashboardPath maps a role to its landing page.
func DashboardPath(role string) string {
	if strings.EqualFold(role, session.RoleDoctor) {
		return "/doctor/dashboard"
	}
	return "/patient/dashboard"
}
