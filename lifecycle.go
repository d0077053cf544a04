package nativeusers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nativeauth/nativeusers/internal/pollsched"
	"github.com/nativeauth/nativeusers/storedoc"
)

// Store is a native user store: it owns the lifecycle state machine, the
// version map, the listener registry, and the backing-client reference,
// and exposes the read, mutation, and lifecycle operations described by
// the package doc.
type Store struct {
	config Config
	logger Logger

	state      atomic.Int32
	indexReady atomic.Bool

	clientMu sync.RWMutex
	client   storedoc.DocumentStore

	hasher Hasher
	purger RealmCachePurger

	versions  *versionMap
	listeners *ListenerRegistry
	metrics   *Metrics

	scheduler *pollsched.Scheduler
}

func newStore(config Config, client storedoc.DocumentStore, hasher Hasher, purger RealmCachePurger, logger Logger) *Store {
	s := &Store{
		config:    config,
		logger:    logger,
		hasher:    hasher,
		purger:    purger,
		versions:  newVersionMap(),
		listeners: NewListenerRegistry(),
		metrics:   newMetrics(),
	}
	s.client = client
	s.state.Store(int32(StateInitialized))
	return s
}

// State returns the store's current lifecycle state.
func (s *Store) State() State {
	return State(s.state.Load())
}

// AddListener registers listener. It may be called before or after
// Start; the poller is the only caller that ever invokes listeners.
func (s *Store) AddListener(listener Listener) {
	s.listeners.Add(listener)
}

// CanStart returns true only if the store is INITIALIZED, the cluster has
// recovered from disk, the expected index template exists, and either the
// security index does not exist yet or all of its primary shards are
// active. It never changes state.
func (s *Store) CanStart(snapshot ClusterStateSnapshot, isMaster bool) bool {
	if s.State() != StateInitialized {
		return false
	}
	if !snapshot.GatewayRecovered {
		s.logger.Debugf("waiting until gateway has recovered from disk")
		return false
	}
	if !snapshot.TemplateExists {
		s.logger.Debugf("native users template %q does not exist, so service cannot start", s.config.TemplateName)
		return false
	}
	if !snapshot.IndexExists {
		s.logger.Debugf("security index %q does not exist, so service can start", s.config.IndexName)
		return true
	}
	if snapshot.PrimaryShardsActive {
		s.logger.Debugf("security index %q all primary shards started, so service can start", s.config.IndexName)
		return true
	}
	return false
}

// OnClusterChanged updates the indexReady flag consumed by the poller. It
// never changes lifecycle state.
func (s *Store) OnClusterChanged(snapshot ClusterStateSnapshot) {
	ready := snapshot.IndexExists && snapshot.PrimaryShardsActive
	s.indexReady.Store(ready)
	if ready {
		s.logger.Debugf("security index %q all primary shards started, so polling can start", s.config.IndexName)
	}
}

// Start atomically transitions INITIALIZED -> STARTING, performs one
// synchronous poll (errors are logged, never fatal), schedules the
// poller at a fixed delay, then transitions to STARTED. Any failure
// during start moves the store to FAILED.
func (s *Store) Start(ctx context.Context) (err error) {
	if !s.state.CompareAndSwap(int32(StateInitialized), int32(StateStarting)) {
		return nil
	}

	defer func() {
		if err != nil {
			s.state.Store(int32(StateFailed))
		}
	}()

	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.client == nil || s.hasher == nil || s.purger == nil {
		return ErrMissingDependency
	}

	s.scheduler = pollsched.New(s.config.PollInterval, func() {
		if pollErr := s.pollOnce(context.Background()); pollErr != nil {
			s.logger.Errorf("error occurred while checking the native users for changes: %v", pollErr)
			s.metrics.inc(MetricPollError)
		}
	})
	s.scheduler.Start()

	s.state.Store(int32(StateStarted))
	return nil
}

// Stop atomically transitions STARTED -> STOPPING, cancels the scheduled
// poll (best-effort; an in-flight iteration is not interrupted), then
// transitions to STOPPED.
func (s *Store) Stop(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateStarted), int32(StateStopping)) {
		return nil
	}

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.state.Store(int32(StateStopped))
	return nil
}

// Reset is test-only: it is only valid in STOPPED or STOPPED/FAILED, and
// clears the version map, listeners, and client reference before
// returning to INITIALIZED. It fails loudly (returns ErrIllegalReset)
// otherwise, matching the source's assertion-guarded reset().
func (s *Store) Reset() error {
	current := s.State()
	if current != StateStopped && current != StateFailed {
		return ErrIllegalReset
	}

	s.versions.clear()
	s.listeners.clear()

	s.clientMu.Lock()
	s.client = nil
	s.clientMu.Unlock()

	s.indexReady.Store(false)
	s.state.Store(int32(StateInitialized))
	return nil
}

// requireStarted is the pre-check every externally facing read/write
// operation performs first.
func (s *Store) requireStarted() bool {
	return s.State() == StateStarted
}

func (s *Store) currentClient() storedoc.DocumentStore {
	s.clientMu.RLock()
	defer s.clientMu.RUnlock()
	return s.client
}
