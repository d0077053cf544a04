package nativeusers

import "context"

// RealmCachePurger is the capability the store depends on to invalidate
// realm caches across the cluster after a user mutation. A non-nil error
// is wrapped into CachePurgeFailedError before it reaches a Put/Delete
// caller.
type RealmCachePurger interface {
	ClearRealmCache(ctx context.Context, usernames []string) error
}
