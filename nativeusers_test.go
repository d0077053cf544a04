package nativeusers

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nativeauth/nativeusers/hash"
	"github.com/nativeauth/nativeusers/realmcache"
	"github.com/nativeauth/nativeusers/storedoc/redisdoc"
)

// newTestStore builds a Store against an in-memory Redis with a small
// scroll page size. The poll interval stays at the 30-second default, so
// the background poller does not run again during a test; tests that
// need a poll call pollOnce directly.
func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hasher, err := hash.New(hash.Config{Cost: 4})
	if err != nil {
		t.Fatalf("hash.New: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ScrollSize = 10

	store, err := New().
		WithConfig(cfg).
		WithDocumentStore(redisdoc.New(rdb)).
		WithHasher(hasher).
		WithPurger(realmcache.New(rdb, "test:purge", 0)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cleanup := func() {
		_ = rdb.Close()
		mr.Close()
	}
	return store, cleanup
}

func mustStart(t *testing.T, store *Store) {
	t.Helper()
	if !store.CanStart(readySnapshot(), true) {
		t.Fatal("expected CanStart to report true")
	}
	if err := store.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	store.OnClusterChanged(ClusterStateSnapshot{IndexExists: true, PrimaryShardsActive: true})
}

func readySnapshot() ClusterStateSnapshot {
	return ClusterStateSnapshot{GatewayRecovered: true, TemplateExists: true}
}

// putUser hashes plaintext with the store's own hasher and puts a user
// built from the given fields, mirroring how a real caller is expected
// to use HashPassword before calling Put.
func putUser(t *testing.T, store *Store, username string, roles []string, fullName, email, plaintext string) *User {
	t.Helper()
	hash, err := store.HashPassword(plaintext)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &User{
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
		FullName:     fullName,
		Email:        email,
	}
	if _, err := store.Put(context.Background(), user, true); err != nil {
		t.Fatalf("Put(%s): %v", username, err)
	}
	return user
}
