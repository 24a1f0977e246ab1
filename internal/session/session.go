// Package session owns the portal's only durable client state: the
// authenticated user plus the upstream bearer token, and a short-lived
// per-session cache of the last rendered appointment page.
package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a session id has no stored session.
	ErrNotFound = errors.New("session not found")
)

// Role values as the upstream API spells them.
const (
	RolePatient = "PATIENT"
	RoleDoctor  = "DOCTOR"
)

// User is the authenticated identity held in the session.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Session pairs a user with the bearer token the upstream issued for them.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// IsPatient reports whether this is a patient account.
func (u User) IsPatient() bool {
	return strings.EqualFold(u.Role, RolePatient)
}

// IsDoctor reports whether this is a doctor account.
func (u User) IsDoctor() bool {
	return strings.EqualFold(u.Role, RoleDoctor)
}

// IsPatient reports whether the session belongs to a patient account.
func (s Session) IsPatient() bool {
	return s.User.IsPatient()
}

// IsDoctor reports whether the session belongs to a doctor account.
func (s Session) IsDoctor() bool {
	return s.User.IsDoctor()
}

// Store persists sessions keyed by opaque id.
type Store interface {
	Save(ctx context.Context, id string, sess Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// Cache holds per-session view snapshots, used by the optimistic
// status-update flows to re-render a patched list without refetching.
type Cache interface {
	PutPage(ctx context.Context, sessionID, view string, data []byte, ttl time.Duration) error
	GetPage(ctx context.Context, sessionID, view string) ([]byte, error)
	DropPage(ctx context.Context, sessionID, view string) error
}
