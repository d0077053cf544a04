// Package nativeusers implements a native user store: an authentication
// backend that persists users (credentials, roles, profile) in an external
// indexed document store and exposes lookup, verification, and mutation
// operations to a surrounding authentication framework.
//
// The package owns three intertwined concerns: a lifecycle state machine
// coupled to the readiness of the backing index, a change-detection poller
// that reconciles a locally cached per-user version map against the live
// store and notifies listeners, and a write-then-invalidate protocol for
// user mutations that purges realm caches across the cluster before
// acknowledging the caller.
//
// # Architecture boundaries
//
// nativeusers is the public surface. It exposes [Store], [Builder],
// [Config], and value types (User, State, MetricsSnapshot). Concrete
// adapters for the document store, the password hasher, and the
// realm-cache purge transport live in the storedoc, hash, and realmcache
// sub-packages; [Store] itself depends on them only through interfaces
// declared here — Builder wires in the hash adapter by default and the
// redisdoc adapter when WithRedis is used.
//
// # What this package must NOT do
//
//   - Expose password hashes, raw document-store clients, or scroll
//     cursors in its public API.
//   - Perform I/O outside of Store methods (construction via Builder is
//     allocation-only until Start).
//   - Cache verified credentials — that happens above this layer, in the
//     surrounding authentication framework.
package nativeusers
