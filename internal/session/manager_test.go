package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func TestManagerPutLoadDestroy(t *testing.T) {
	m := NewManager(NewMemoryStore(), "portal_session", time.Hour, false)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	sess := Session{User: User{ID: "u1", Name: "Ann", Role: RolePatient}, Token: "opaque-token"}
	id, err := m.Put(ctx, rec, sess)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	require.Equal(t, "portal_session", cookie.Name)
	require.Equal(t, id, cookie.Value)
	require.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/patient/dashboard", nil)
	req.AddCookie(cookie)
	loaded, loadedID, err := m.Load(req)
	require.NoError(t, err)
	require.Equal(t, id, loadedID)
	require.Equal(t, sess.User, loaded.User)
	require.False(t, loaded.CreatedAt.IsZero())

	rec2 := httptest.NewRecorder()
	require.NoError(t, m.Destroy(ctx, rec2, req))
	_, _, err = m.Load(req)
	require.ErrorIs(t, err, ErrNotFound)

	expired := rec2.Result().Cookies()
	require.Len(t, expired, 1)
	require.Negative(t, expired[0].MaxAge)
}

func TestManagerLoadWithoutCookie(t *testing.T) {
	m := NewManager(NewMemoryStore(), "portal_session", time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, _, err := m.Load(req)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTTLFromTokenExpiry(t *testing.T) {
	m := NewManager(NewMemoryStore(), "portal_session", 24*time.Hour, false)

	ttl := m.ttlFor(signedToken(t, time.Now().Add(30*time.Minute)))
	require.Greater(t, ttl, 29*time.Minute)
	require.LessOrEqual(t, ttl, 30*time.Minute)

	// Expiry beyond the default is clamped.
	require.Equal(t, 24*time.Hour, m.ttlFor(signedToken(t, time.Now().Add(72*time.Hour))))

	// Already-expired and unparseable tokens fall back to the default.
	require.Equal(t, 24*time.Hour, m.ttlFor(signedToken(t, time.Now().Add(-time.Minute))))
	require.Equal(t, 24*time.Hour, m.ttlFor("not-a-jwt"))
}
