// Command nativeuserstore-demo demonstrates a minimal wiring of the
// native user store against a local Redis (miniredis, no external Redis
// required).
//
// It creates one user, verifies its password, updates its roles (which
// triggers a realm-cache purge), and then waits through one scheduled
// poller iteration. That iteration is the poller's first sight of the
// user, so it records the version without reporting a change and the
// registered listener prints nothing.
//
// Run:
//
//	go run ./cmd/nativeuserstore-demo
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nativeauth/nativeusers"
	"github.com/nativeauth/nativeusers/realmcache"
)

func main() {
	mr, err := miniredis.Run()
	if err != nil {
		log.Fatal(err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := nativeusers.DefaultConfig()
	cfg.PollInterval = 2 * time.Second

	purger := realmcache.New(rdb, "nativeusers:purge", 0)

	store, err := nativeusers.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPurger(purger).
		Build()
	if err != nil {
		log.Fatal("build:", err)
	}

	store.AddListener(nativeusers.ListenerFunc(func(changed []string) {
		fmt.Println("poller observed changes for:", changed)
	}))

	ctx := context.Background()

	if !store.CanStart(nativeusers.ClusterStateSnapshot{
		GatewayRecovered: true,
		TemplateExists:   true,
	}, true) {
		log.Fatal("store reports it cannot start")
	}
	if err := store.Start(ctx); err != nil {
		log.Fatal("start:", err)
	}
	defer store.Stop(ctx)

	store.OnClusterChanged(nativeusers.ClusterStateSnapshot{
		IndexExists:         true,
		PrimaryShardsActive: true,
	})

	hash, err := store.HashPassword("correct-horse")
	if err != nil {
		log.Fatal("hash:", err)
	}

	alice := &nativeusers.User{
		Username:     "alice",
		PasswordHash: hash,
		Roles:        []string{"admin"},
		FullName:     "Alice Example",
		Email:        "alice@example.com",
	}
	created, err := store.Put(ctx, alice, true)
	if err != nil {
		log.Fatal("put:", err)
	}
	fmt.Printf("created=%v user %q at version %d\n", created, alice.Username, alice.Version)

	if user := store.VerifyPassword(ctx, "alice", "correct-horse"); user != nil {
		fmt.Println("password verifies for:", user.Username)
	} else {
		fmt.Println("password does not verify")
	}

	alice.Roles = []string{"admin", "auditor"}
	if _, err := store.Put(ctx, alice, true); err != nil {
		log.Fatal("update:", err)
	}
	fmt.Println("updated roles, realm cache purge requested")

	time.Sleep(3 * time.Second)
}
