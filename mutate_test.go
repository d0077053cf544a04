package nativeusers

import (
	"context"
	"errors"
	"testing"
)

// countingPurger records how many times ClearRealmCache was called and can
// be told to fail on demand.
type countingPurger struct {
	calls int
	fail  bool
}

func (p *countingPurger) ClearRealmCache(ctx context.Context, usernames []string) error {
	p.calls++
	if p.fail {
		return errors.New("boom")
	}
	return nil
}

func TestPutCreateDoesNotPurge(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	purger := &countingPurger{}
	store.purger = purger
	mustStart(t, store)

	putUser(t, store, "alice", nil, "", "", "pw")
	if purger.calls != 0 {
		t.Fatalf("expected no purge on create, got %d calls", purger.calls)
	}
}

func TestPutUpdatePurgesExactlyOnce(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	purger := &countingPurger{}
	store.purger = purger
	mustStart(t, store)

	alice := putUser(t, store, "alice", nil, "", "", "pw")

	alice.Roles = []string{"admin"}
	if _, err := store.Put(context.Background(), alice, true); err != nil {
		t.Fatalf("Put (update): %v", err)
	}
	if purger.calls != 1 {
		t.Fatalf("expected exactly one purge on update, got %d calls", purger.calls)
	}
}

func TestPutUpdatePurgeFailureWraps(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	purger := &countingPurger{}
	store.purger = purger
	mustStart(t, store)

	alice := putUser(t, store, "alice", nil, "", "", "pw")

	purger.fail = true
	alice.Roles = []string{"admin"}
	created, err := store.Put(context.Background(), alice, true)
	if created {
		t.Fatal("expected created=false on an update")
	}
	var purgeErr *CachePurgeFailedError
	if !errors.As(err, &purgeErr) {
		t.Fatalf("expected a *CachePurgeFailedError, got %v", err)
	}
	if purgeErr.Username != "alice" {
		t.Fatalf("unexpected username on purge error: %q", purgeErr.Username)
	}
}

func TestDeleteAlwaysPurges(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	purger := &countingPurger{}
	store.purger = purger
	mustStart(t, store)

	ctx := context.Background()

	found, err := store.Delete(ctx, "nobody", true)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if found {
		t.Fatal("expected found=false for a nonexistent user")
	}
	if purger.calls != 1 {
		t.Fatalf("expected a purge even for a nonexistent user, got %d calls", purger.calls)
	}

	putUser(t, store, "alice", nil, "", "", "pw")
	found, err = store.Delete(ctx, "alice", true)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !found {
		t.Fatal("expected found=true when deleting an existing user")
	}
	if purger.calls != 2 {
		t.Fatalf("expected a second purge, got %d calls", purger.calls)
	}
}
