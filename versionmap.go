package nativeusers

import "sync"

// versionMap tracks username -> last-observed document version. It is
// mutated only by the poller; absence of a key means "unknown to the
// store as of the last poll". A mutex guards it because Reset clears it
// from a caller goroutine while the poller may be mid-iteration (Reset is only
// legal once the store is stopped, so that race cannot occur in
// practice, but the mutex costs nothing and removes the need to reason
// about it).
type versionMap struct {
	mu   sync.Mutex
	vers map[string]int64
}

func newVersionMap() *versionMap {
	return &versionMap{vers: make(map[string]int64)}
}

// snapshotKeys returns the current username set, the "knownUsers" copy
// the poller diffs against on each iteration.
func (m *versionMap) snapshotKeys() map[string]struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make(map[string]struct{}, len(m.vers))
	for k := range m.vers {
		keys[k] = struct{}{}
	}
	return keys
}

func (m *versionMap) get(username string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vers[username]
	return v, ok
}

func (m *versionMap) set(username string, version int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vers[username] = version
}

func (m *versionMap) remove(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vers, username)
}

func (m *versionMap) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vers = make(map[string]int64)
}

func (m *versionMap) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vers)
}
