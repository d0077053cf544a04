package nativeusers

import (
	"context"
	"errors"
	"fmt"

	"github.com/nativeauth/nativeusers/storedoc"
)

func (s *Store) isStopping() bool {
	switch s.State() {
	case StateStopping, StateStopped:
		return true
	default:
		return false
	}
}

// pollOnce is a single poller iteration: scan the backing index, diff
// against the version map, and notify listeners of any changes.
func (s *Store) pollOnce(ctx context.Context) error {
	if s.isStopping() {
		return nil
	}
	if !s.indexReady.Load() {
		s.logger.Debugf("cannot poll for user changes since security index %q does not exist", s.config.IndexName)
		return nil
	}

	client := s.currentClient()
	if client == nil {
		return nil
	}

	s.logger.Debugf("starting polling of user index to check for changes")
	s.metrics.inc(MetricPollIteration)

	known := s.versions.snapshotKeys()

	current, err := s.scrollAllUsers(ctx, client)
	if err != nil {
		return err
	}

	changedUsers := make([]string, 0)
	for username, version := range current {
		if lastVersion, ok := s.versions.get(username); ok {
			if version != lastVersion {
				if version < lastVersion {
					s.logger.Errorf("observed non-monotonic version for user %q: %d -> %d", username, lastVersion, version)
				}
				s.versions.set(username, version)
				changedUsers = append(changedUsers, username)
			}
			delete(known, username)
		} else {
			// New to us: recorded, but not published as a change. The
			// source only publishes transitions from known to
			// changed/deleted, never first observation.
			s.versions.set(username, version)
		}
	}

	// Checkpoint: exit before comparing against the remaining known set
	// if a Stop() landed while we were scrolling. Note the diff loop
	// above has already committed its version.set calls by this point,
	// so this only skips the deletion sweep — it guarantees the version
	// map stays monotonic on abort, not that it's left byte-for-byte
	// untouched.
	if s.isStopping() {
		return nil
	}

	for username := range known {
		s.versions.remove(username)
		changedUsers = append(changedUsers, username)
	}

	if len(changedUsers) == 0 {
		return nil
	}

	s.logger.Debugf("changes detected for users %v", changedUsers)
	s.metrics.add(MetricPollChangedUsers, uint64(len(changedUsers)))

	return s.notifyListeners(changedUsers)
}

// scrollAllUsers scans the full user set with version metadata requested,
// clearing the scroll cursor best-effort on every exit path. It returns
// an empty map, not an error, when Stop() lands mid-scroll or when the
// index does not exist.
func (s *Store) scrollAllUsers(ctx context.Context, client storedoc.DocumentStore) (map[string]int64, error) {
	page, err := client.Search(ctx, storedoc.SearchRequest{
		Index:       s.config.IndexName,
		DocType:     s.config.DocType,
		Size:        s.config.ScrollSize,
		KeepAlive:   s.config.ScrollKeepAlive,
		WithVersion: true,
	})
	if err != nil {
		if errors.Is(err, storedoc.ErrIndexNotFound) {
			s.logger.Debugf("security index does not exist")
			return map[string]int64{}, nil
		}
		return nil, err
	}

	scrollID := page.ScrollID
	defer s.clearScrollBestEffort(scrollID, client)

	result := make(map[string]int64)
	for {
		for _, hit := range page.Hits {
			result[hit.ID] = hit.Version
		}
		if len(page.Hits) == 0 {
			return result, nil
		}
		if s.isStopping() {
			// Instead of surfacing an error, we return an empty map so
			// nothing is processed and the caller exits early.
			return map[string]int64{}, nil
		}

		page, err = client.SearchScroll(ctx, scrollID, s.config.ScrollKeepAlive)
		if err != nil {
			return nil, err
		}
		scrollID = page.ScrollID
	}
}

func (s *Store) clearScrollBestEffort(scrollID string, client storedoc.DocumentStore) {
	if scrollID == "" {
		return
	}
	if err := client.ClearScroll(context.Background(), scrollID); err != nil {
		s.logger.Errorf("failed to clear scroll after polling users: %v", err)
	}
}

// notifyListeners invokes every registered listener in registration
// order. A panic from one listener is captured and does not prevent the
// remaining listeners from being invoked for the same event; the first
// captured failure is returned to the scheduler and the rest are
// attached as Suppressed.
func (s *Store) notifyListeners(changed []string) error {
	changed = append([]string(nil), changed...) // freeze before handing to listeners

	var first error
	var suppressed []error

	for _, listener := range s.listeners.snapshot() {
		if err := invokeListener(listener, changed); err != nil {
			if first == nil {
				first = err
			} else {
				suppressed = append(suppressed, err)
			}
		}
	}

	if first == nil {
		return nil
	}
	return &ListenerFailure{Err: first, Suppressed: suppressed}
}

func invokeListener(listener Listener, changed []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	listener.OnUsersChanged(changed)
	return nil
}
