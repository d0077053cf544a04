package realmcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (redis.UniversalClient, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return rdb, func() { _ = rdb.Close(); mr.Close() }
}

func TestClearRealmCacheFireAndForget(t *testing.T) {
	rdb, cleanup := newTestRedis(t)
	defer cleanup()

	purger := New(rdb, "realm:purge", 0)
	if err := purger.ClearRealmCache(context.Background(), []string{"alice"}); err != nil {
		t.Fatalf("ClearRealmCache: %v", err)
	}
}

func TestClearRealmCacheWaitsForAcknowledgment(t *testing.T) {
	rdb, cleanup := newTestRedis(t)
	defer cleanup()

	purger := New(rdb, "realm:purge", 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received []string
	var mu sync.Mutex
	go func() {
		_ = purger.Listen(ctx, func(usernames []string) {
			mu.Lock()
			received = append(received, usernames...)
			mu.Unlock()
		})
	}()

	time.Sleep(50 * time.Millisecond) // let the subscriber attach

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()

	if err := purger.ClearRealmCache(waitCtx, []string{"alice"}); err != nil {
		t.Fatalf("ClearRealmCache: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0] != "alice" {
		t.Fatalf("expected the listener to observe [alice], got %v", received)
	}
}

func TestClearRealmCacheTimesOutWithoutAcknowledgment(t *testing.T) {
	rdb, cleanup := newTestRedis(t)
	defer cleanup()

	purger := New(rdb, "realm:purge", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := purger.ClearRealmCache(ctx, []string{"alice"})
	if err == nil {
		t.Fatal("expected a timeout error with no subscriber to acknowledge")
	}
}
