package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	sess := Session{
		User:  User{ID: "u1", Name: "Ann", Role: RolePatient},
		Token: "tok-1",
	}
	if err := store.Save(ctx, "sid-1", sess, time.Hour); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.User != sess.User || got.Token != sess.Token {
		t.Fatalf("got = %+v, want %+v", got, sess)
	}
	if !got.IsPatient() || got.IsDoctor() {
		t.Fatal("role predicates wrong for PATIENT")
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "sid-1", Session{Token: "tok"}, time.Minute); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "sid-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "sid-1", Session{Token: "tok"}, time.Hour); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	if err := cache.PutPage(ctx, "sid-1", "patient_appointments", []byte(`{"items":[]}`), time.Minute); err != nil {
		t.Fatalf("PutPage() error = %v", err)
	}
	data, err := cache.GetPage(ctx, "sid-1", "patient_appointments")
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if string(data) != `{"items":[]}` {
		t.Fatalf("data = %s", data)
	}

	if err := cache.DropPage(ctx, "sid-1", "patient_appointments"); err != nil {
		t.Fatalf("DropPage() error = %v", err)
	}
	if _, err := cache.GetPage(ctx, "sid-1", "patient_appointments"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after drop, got %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := Session{User: User{ID: "u1", Role: RoleDoctor}, Token: "tok"}
	if err := store.Save(ctx, "sid-1", sess, 0); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.IsDoctor() {
		t.Fatal("expected doctor session")
	}

	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, "sid-1", Session{Token: "tok"}, time.Nanosecond); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Get(ctx, "sid-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryCacheCopiesData(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	data := []byte("abc")
	if err := cache.PutPage(ctx, "sid", "v", data, 0); err != nil {
		t.Fatalf("PutPage() error = %v", err)
	}
	data[0] = 'x'

	got, err := cache.GetPage(ctx, "sid", "v")
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("cache shared the caller's backing array: %s", got)
	}
}
