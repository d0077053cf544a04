package nativeusers

import (
	"context"
	"testing"
)

func TestPutThenGetUser(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	mustStart(t, store)

	ctx := context.Background()
	putUser(t, store, "alice", []string{"admin"}, "Alice", "alice@example.com", "hunter2")

	got := store.GetUser(ctx, "alice")
	if got == nil {
		t.Fatal("expected a user, got nil")
	}
	if got.Username != "alice" || got.FullName != "Alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "admin" {
		t.Fatalf("unexpected roles: %v", got.Roles)
	}
	if got.PasswordHash != "" {
		t.Fatalf("expected the hash to be scrubbed from a read, got %q", got.PasswordHash)
	}
}

func TestGetUserMissingReturnsNil(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	mustStart(t, store)

	if got := store.GetUser(context.Background(), "nobody"); got != nil {
		t.Fatalf("expected nil for a missing user, got %+v", got)
	}
}

func TestGetUsersEmptyIndexReturnsEmptySlice(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	mustStart(t, store)

	users, err := store.GetUsers(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users, got %d", len(users))
	}
}

func TestGetUsersReturnsEveryUser(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	mustStart(t, store)

	for _, name := range []string{"alice", "bob", "carol"} {
		putUser(t, store, name, nil, "", "", "pw")
	}

	users, err := store.GetUsers(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
}

func TestGetUsersFiltersByUsername(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	mustStart(t, store)

	for _, name := range []string{"alice", "bob"} {
		putUser(t, store, name, nil, "", "", "pw")
	}

	users, err := store.GetUsers(context.Background(), []string{"bob"})
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if len(users) != 1 || users[0].Username != "bob" {
		t.Fatalf("unexpected result: %+v", users)
	}
}

func TestVerifyPassword(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	mustStart(t, store)

	ctx := context.Background()
	putUser(t, store, "alice", nil, "", "", "correct-horse")

	if u := store.VerifyPassword(ctx, "alice", "correct-horse"); u == nil {
		t.Fatal("expected the correct password to verify")
	} else if u.PasswordHash != "" {
		t.Fatalf("expected the hash to be scrubbed, got %q", u.PasswordHash)
	}

	if u := store.VerifyPassword(ctx, "alice", "wrong-password"); u != nil {
		t.Fatalf("expected the wrong password to fail verification, got %+v", u)
	}
}

func TestVerifyPasswordUnknownUser(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	mustStart(t, store)

	if u := store.VerifyPassword(context.Background(), "nobody", "whatever"); u != nil {
		t.Fatalf("expected verification against an unknown user to fail, got %+v", u)
	}
}
