package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Manager binds a Store to the session cookie.
type Manager struct {
	store      Store
	cookieName string
	defaultTTL time.Duration
	secure     bool
}

// NewManager creates a session manager. defaultTTL bounds sessions whose
// token carries no usable expiry.
func NewManager(store Store, cookieName string, defaultTTL time.Duration, secure bool) *Manager {
	if cookieName == "" {
		cookieName = "portal_session"
	}
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &Manager{
		store:      store,
		cookieName: cookieName,
		defaultTTL: defaultTTL,
		secure:     secure,
	}
}

// Put stores the session and sets the cookie. The TTL follows the bearer
// token's exp claim when one is present, clamped to the default.
func (m *Manager) Put(ctx context.Context, w http.ResponseWriter, sess Session) (string, error) {
	id := uuid.NewString()
	ttl := m.ttlFor(sess.Token)
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	if err := m.store.Save(ctx, id, sess, ttl); err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// Load resolves the request's session cookie. Returns ErrNotFound when the
// cookie is absent or the stored session is gone.
func (m *Manager) Load(r *http.Request) (Session, string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return Session{}, "", ErrNotFound
	}
	sess, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil {
		return Session{}, "", err
	}
	return sess, cookie.Value, nil
}

// Destroy deletes the stored session and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(m.cookieName)
	if err == nil {
		if delErr := m.store.Delete(ctx, cookie.Value); delErr != nil {
			return delErr
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ttlFor derives the session TTL from the token's exp claim. The token is
// parsed unverified: the portal is not the token's audience and holds no
// signing key; the upstream re-validates it on every call.
func (m *Manager) ttlFor(token string) time.Duration {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return m.defaultTTL
	}
	if claims.ExpiresAt == nil {
		return m.defaultTTL
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 || ttl > m.defaultTTL {
		return m.defaultTTL
	}
	return ttl
}
