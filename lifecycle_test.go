package nativeusers

import (
	"context"
	"testing"
)

func TestCanStartRequiresGatewayRecovered(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if store.CanStart(ClusterStateSnapshot{TemplateExists: true}, true) {
		t.Fatal("expected CanStart to report false before gateway recovery")
	}
}

func TestCanStartRequiresTemplate(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if store.CanStart(ClusterStateSnapshot{GatewayRecovered: true}, true) {
		t.Fatal("expected CanStart to report false without the index template")
	}
}

func TestCanStartAllowsMissingIndex(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if !store.CanStart(readySnapshot(), true) {
		t.Fatal("expected CanStart to report true when the index does not exist yet")
	}
}

func TestCanStartRequiresPrimaryShardsActive(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	snap := readySnapshot()
	snap.IndexExists = true
	snap.PrimaryShardsActive = false
	if store.CanStart(snap, true) {
		t.Fatal("expected CanStart to report false with an unready index")
	}

	snap.PrimaryShardsActive = true
	if !store.CanStart(snap, true) {
		t.Fatal("expected CanStart to report true once primary shards are active")
	}
}

func TestStartStopStateTransitions(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if store.State() != StateInitialized {
		t.Fatalf("expected StateInitialized, got %v", store.State())
	}

	mustStart(t, store)
	if store.State() != StateStarted {
		t.Fatalf("expected StateStarted, got %v", store.State())
	}

	if err := store.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if store.State() != StateStopped {
		t.Fatalf("expected StateStopped, got %v", store.State())
	}
}

func TestStartIsIdempotent(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	mustStart(t, store)
	if err := store.Start(context.Background()); err != nil {
		t.Fatalf("second Start returned an error: %v", err)
	}
	if store.State() != StateStarted {
		t.Fatalf("expected StateStarted, got %v", store.State())
	}
}

func TestOperationsRejectedBeforeStart(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if got := store.GetUser(context.Background(), "alice"); got != nil {
		t.Fatalf("expected nil before start, got %+v", got)
	}
	user := &User{Username: "alice", PasswordHash: "hash"}
	if _, err := store.Put(context.Background(), user, true); err != ErrNotStarted {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestResetRequiresStoppedOrFailed(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if err := store.Reset(); err != ErrIllegalReset {
		t.Fatalf("expected ErrIllegalReset before start, got %v", err)
	}

	mustStart(t, store)
	if err := store.Reset(); err != ErrIllegalReset {
		t.Fatalf("expected ErrIllegalReset while started, got %v", err)
	}

	if err := store.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if store.State() != StateInitialized {
		t.Fatalf("expected StateInitialized after Reset, got %v", store.State())
	}
}

func TestBuildFailsWithoutDocumentStore(t *testing.T) {
	_, err := New().Build()
	if err != ErrMissingDependency {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New()
	_, _ = b.Build()
	if _, err := b.Build(); err != ErrAlreadyBuilt {
		t.Fatalf("expected ErrAlreadyBuilt, got %v", err)
	}
}
