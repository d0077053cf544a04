package nativeusers

import (
	"context"
	"errors"
	"time"

	"github.com/nativeauth/nativeusers/storedoc"
)

// getUserTimeout bounds the two blocking convenience wrappers, GetUser
// and VerifyPassword, over the store's asynchronous read path.
const getUserTimeout = 30 * time.Second

// GetUser blocks for up to 30 seconds for the user record. It never
// returns an error: a store that has not started, a lookup timeout, a
// missing document, and a decode failure are all reported the same way,
// as a nil User.
func (s *Store) GetUser(ctx context.Context, username string) *User {
	userCh, errCh := s.GetUserAsync(ctx, username)

	boundedCtx, cancel := context.WithTimeout(ctx, getUserTimeout)
	defer cancel()

	select {
	case u := <-userCh:
		<-errCh // drained but ignored: the blocking surface never raises
		return u
	case <-boundedCtx.Done():
		s.metrics.inc(MetricGetUserTimeout)
		return nil
	}
}

// GetUserAsync starts the lookup and returns immediately. Both returned
// channels receive exactly one value. Every backing-store retrieval
// failure and decode failure is suppressed into a nil User with a nil
// error; only a pre-check failure (not started) is ever sent on the
// error channel.
func (s *Store) GetUserAsync(ctx context.Context, username string) (<-chan *User, <-chan error) {
	userCh := make(chan *User, 1)
	errCh := make(chan error, 1)

	if !s.requireStarted() {
		userCh <- nil
		errCh <- ErrNotStarted
		return userCh, errCh
	}

	go func() {
		record, err := s.getUserRecord(ctx, username)
		userCh <- scrubHash(record)
		errCh <- err
	}()

	return userCh, errCh
}

// getUserRecord performs the point lookup and returns the full record,
// hash included, for internal callers only (VerifyPassword).
func (s *Store) getUserRecord(ctx context.Context, username string) (*User, error) {
	client := s.currentClient()
	if client == nil {
		return nil, ErrNotStarted
	}

	source, version, err := client.Get(ctx, s.config.IndexName, s.config.DocType, username)
	if err != nil {
		// Any retrieval error, not just a missing index, is suppressed
		// here: the read path never fails a caller due to backing-store
		// state. Only a pre-check failure (ErrNotStarted, above) or an
		// unexpected client-construction error ever reaches a caller.
		s.logger.Errorf("lookup for %q failed, treating as missing: %v", username, err)
		return nil, nil
	}
	if source == nil {
		return nil, nil
	}

	user, ok := decodeUser(username, source, version)
	if !ok {
		s.metrics.inc(MetricDecodeError)
		s.logger.Errorf("unable to decode native user document for %q, treating as missing", username)
		return nil, nil
	}
	return user, nil
}

func scrubHash(u *User) *User {
	if u == nil {
		return nil
	}
	clean := *u
	clean.PasswordHash = ""
	return &clean
}

// GetUsers returns every user whose username is in usernames, or the
// entire user set when usernames is empty. A missing security index is
// reported as an empty result, never an error.
func (s *Store) GetUsers(ctx context.Context, usernames []string) ([]*User, error) {
	if !s.requireStarted() {
		return nil, ErrNotStarted
	}

	client := s.currentClient()
	if client == nil {
		return nil, ErrNotStarted
	}

	page, err := client.Search(ctx, storedoc.SearchRequest{
		Index:     s.config.IndexName,
		DocType:   s.config.DocType,
		IDs:       usernames,
		Size:      s.config.ScrollSize,
		KeepAlive: s.config.ScrollKeepAlive,
	})
	if err != nil {
		if errors.Is(err, storedoc.ErrIndexNotFound) {
			return []*User{}, nil
		}
		return nil, err
	}

	scrollID := page.ScrollID
	defer s.clearScrollBestEffort(scrollID, client)

	// The underlying cursor (SSCAN-backed for redisdoc) only guarantees
	// every id is returned at least once across pages, not exactly
	// once, so a seen-set dedupes by id while accumulating.
	seen := make(map[string]struct{})
	users := make([]*User, 0)
	for {
		for _, hit := range page.Hits {
			if _, dup := seen[hit.ID]; dup {
				continue
			}
			seen[hit.ID] = struct{}{}
			user, ok := decodeUser(hit.ID, hit.Source, hit.Version)
			if !ok {
				s.metrics.inc(MetricDecodeError)
				s.logger.Errorf("unable to decode native user document for %q, skipping", hit.ID)
				continue
			}
			users = append(users, scrubHash(user))
		}
		if len(page.Hits) == 0 {
			break
		}
		page, err = client.SearchScroll(ctx, scrollID, s.config.ScrollKeepAlive)
		if err != nil {
			return nil, err
		}
		scrollID = page.ScrollID
	}

	return users, nil
}

// VerifyPassword blocks for up to 30 seconds looking up username and, if
// found, checks plaintext against its stored hash. It returns the user
// (hash cleared) on success and nil on any failure — missing user, wrong
// password, or a timed-out lookup — never an error.
func (s *Store) VerifyPassword(ctx context.Context, username, plaintext string) *User {
	if !s.requireStarted() {
		return nil
	}

	boundedCtx, cancel := context.WithTimeout(ctx, getUserTimeout)
	defer cancel()

	result := make(chan *User, 1)
	go func() {
		record, err := s.getUserRecord(context.Background(), username)
		if err != nil || record == nil {
			result <- nil
			return
		}
		if !s.hasher.Verify(plaintext, record.PasswordHash) {
			result <- nil
			return
		}
		result <- scrubHash(record)
	}()

	select {
	case u := <-result:
		return u
	case <-boundedCtx.Done():
		s.metrics.inc(MetricGetUserTimeout)
		return nil
	}
}
