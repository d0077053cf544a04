package nativeusers

import (
	"context"
	"fmt"
)

// User is the decoded, persisted shape of a native user record.
// PasswordHash is populated by the caller of Put (the hashing primitive
// itself lives outside this store) and is always cleared to "" by the
// read path before a User is handed back to a caller or a listener — it
// exists on this type only to carry the hash inward, never outward.
type User struct {
	Username     string
	PasswordHash string
	Roles        []string
	FullName     string
	Email        string
	Metadata     map[string]any
	Version      int64
}

// State is one of the lifecycle states a Store moves through.
type State int32

const (
	StateInitialized State = iota
	StateStarting
	StateStarted
	StateStopping
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "INITIALIZED"
	case StateStarting:
		return "STARTING"
	case StateStarted:
		return "STARTED"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(s))
	}
}

// Listener is notified by the poller whenever it detects that a set of
// usernames has changed (updated or deleted) since the previous poll.
// Listeners are invoked only by the poller, in registration order.
type Listener interface {
	OnUsersChanged(changed []string)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(changed []string)

func (f ListenerFunc) OnUsersChanged(changed []string) { f(changed) }

// ClusterStateSnapshot is the Go-native shape of "a snapshot of cluster
// state": the minimal facts CanStart and OnClusterChanged need about the
// surrounding cluster to decide whether the backing index is usable.
type ClusterStateSnapshot struct {
	// GatewayRecovered is true once the cluster has recovered enough of
	// its persisted state from disk that index metadata can be trusted.
	GatewayRecovered bool
	// TemplateExists is true when the expected index template has been
	// installed.
	TemplateExists bool
	// IndexExists is true when the security index itself has been
	// created. A cluster with no index yet is a legitimate "can start"
	// state — the index is created lazily on first write.
	IndexExists bool
	// PrimaryShardsActive is true when every primary shard of the
	// security index (if it exists) is active and serving.
	PrimaryShardsActive bool
}

// ClusterStateWatcher is the interface the surrounding system implements
// to drive cluster-state observation. No concrete production
// implementation ships in this module — cluster-state observation is an
// external collaborator per the store's scope.
type ClusterStateWatcher interface {
	Snapshot(ctx context.Context) (ClusterStateSnapshot, error)
}
