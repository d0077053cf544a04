package nativeusers

import "context"

// Put creates or overwrites the whole document for user.Username. The
// caller supplies user.PasswordHash already hashed — hashing itself is
// outside this store's scope; see Store.HashPassword for the adapter
// this store was built with. Creating a brand-new user short-circuits
// and never triggers a realm-cache purge; overwriting an existing one
// always triggers exactly one, after the write succeeds. On success
// user.Version is updated in place.
func (s *Store) Put(ctx context.Context, user *User, refresh bool) (created bool, err error) {
	if !s.requireStarted() {
		return false, ErrNotStarted
	}

	client := s.currentClient()
	if client == nil {
		return false, ErrNotStarted
	}

	source := encodeUser(user.Username, user)

	created, version, err := client.Index(ctx, s.config.IndexName, s.config.DocType, user.Username, source, refresh)
	if err != nil {
		return false, err
	}
	user.Version = version

	if created {
		return true, nil
	}

	if purgeErr := s.purger.ClearRealmCache(ctx, []string{user.Username}); purgeErr != nil {
		s.metrics.inc(MetricPurgeFailure)
		return false, &CachePurgeFailedError{Username: user.Username, Err: purgeErr}
	}
	return false, nil
}

// HashPassword hashes plaintext with the store's configured Hasher. It
// is the caller's responsibility to pass the result as user.PasswordHash
// to Put; the store never hashes on a caller's behalf.
func (s *Store) HashPassword(plaintext string) (string, error) {
	return s.hasher.Hash(plaintext)
}

// Delete removes username and always attempts a realm-cache purge
// afterward, regardless of whether the document existed, matching the
// source's stance that a caller asking to delete an unknown user still
// wants any stale cache entry for it cleared.
func (s *Store) Delete(ctx context.Context, username string, refresh bool) (found bool, err error) {
	if !s.requireStarted() {
		return false, ErrNotStarted
	}

	client := s.currentClient()
	if client == nil {
		return false, ErrNotStarted
	}

	found, err = client.Delete(ctx, s.config.IndexName, s.config.DocType, username, refresh)
	if err != nil {
		return false, err
	}

	if purgeErr := s.purger.ClearRealmCache(ctx, []string{username}); purgeErr != nil {
		s.metrics.inc(MetricPurgeFailure)
		return found, &CachePurgeFailedError{Username: username, Err: purgeErr}
	}
	return found, nil
}
