// Package redisdoc adapts a Redis server, through go-redis, into the
// storedoc.DocumentStore contract. It plays the role the teacher's
// session and rate-limiter packages play against Redis, but for whole
// documents with monotonic versions instead of session blobs or
// counters: each document is a hash, version numbers come from an atomic
// Lua HINCRBY, and the scroll cursor Search/SearchScroll expose is an
// SSCAN cursor with just enough context folded in to make it stateless
// between calls, since Redis (unlike Elasticsearch) keeps no server-side
// scroll context.
package redisdoc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nativeauth/nativeusers/storedoc"
)

// Store is a storedoc.DocumentStore backed by a Redis server.
type Store struct {
	redis redis.UniversalClient
}

// New returns a Store that issues its commands against client.
func New(client redis.UniversalClient) *Store {
	return &Store{redis: client}
}

var _ storedoc.DocumentStore = (*Store)(nil)

func metaKey(index string) string        { return index + ":meta" }
func idsKey(index, docType string) string { return index + ":" + docType + ":ids" }
func docKey(index, docType, id string) string {
	return index + ":" + docType + ":doc:" + id
}

const versionField = "_version"

var indexExistsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 1
end
return 0
`)

func (s *Store) indexExists(ctx context.Context, index string) (bool, error) {
	n, err := indexExistsScript.Run(ctx, s.redis, []string{metaKey(index)}).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %v", storedoc.ErrUnavailable, err)
	}
	return n == 1, nil
}

// Get implements storedoc.DocumentStore.
func (s *Store) Get(ctx context.Context, index, docType, id string) (map[string]any, int64, error) {
	exists, err := s.indexExists(ctx, index)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, storedoc.ErrIndexNotFound
	}

	fields, err := s.redis.HGetAll(ctx, docKey(index, docType, id)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", storedoc.ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, 0, nil
	}

	version, _ := strconv.ParseInt(fields[versionField], 10, 64)
	return decodeFields(fields), version, nil
}

var indexDocScript = redis.NewScript(`
redis.call("SET", KEYS[1], "1")
local existed = redis.call("EXISTS", KEYS[2])
redis.call("HSET", KEYS[2], unpack(ARGV, 2))
local version = redis.call("HINCRBY", KEYS[2], "_version", 1)
if existed == 0 then
  redis.call("SADD", KEYS[3], ARGV[1])
end
return {existed, version}
`)

// Index implements storedoc.DocumentStore. refresh is accepted for
// interface fidelity but has no effect: every write is immediately
// visible to subsequent Redis commands, so there is no "refresh" delay to
// wait out.
func (s *Store) Index(ctx context.Context, index, docType, id string, source map[string]any, refresh bool) (bool, int64, error) {
	fields, err := encodeFields(source)
	if err != nil {
		return false, 0, err
	}

	args := make([]any, 0, len(fields)*2+1)
	args = append(args, id)
	for k, v := range fields {
		args = append(args, k, v)
	}

	res, err := indexDocScript.Run(ctx, s.redis, []string{
		metaKey(index), docKey(index, docType, id), idsKey(index, docType),
	}, args...).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", storedoc.ErrUnavailable, err)
	}

	nums, ok := res.([]any)
	if !ok || len(nums) != 2 {
		return false, 0, fmt.Errorf("%w: unexpected index script result", storedoc.ErrUnavailable)
	}
	existed, _ := nums[0].(int64)
	version, _ := nums[1].(int64)
	return existed == 0, version, nil
}

var deleteDocScript = redis.NewScript(`
local existed = redis.call("EXISTS", KEYS[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
  redis.call("SREM", KEYS[2], ARGV[1])
end
return existed
`)

// Delete implements storedoc.DocumentStore.
func (s *Store) Delete(ctx context.Context, index, docType, id string, refresh bool) (bool, error) {
	n, err := deleteDocScript.Run(ctx, s.redis, []string{
		docKey(index, docType, id), idsKey(index, docType),
	}, id).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %v", storedoc.ErrUnavailable, err)
	}
	return n == 1, nil
}

// scrollCursor is folded into the opaque scroll ID string returned to
// callers so that SearchScroll, which the storedoc.DocumentStore contract
// gives no other context to, can resume a scan without server-side
// state.
type scrollCursor struct {
	Index       string `json:"i"`
	DocType     string `json:"t"`
	Size        int64  `json:"s"`
	WithVersion bool   `json:"v"`
	Cursor      uint64 `json:"c"`
	Done        bool   `json:"d"`
}

func encodeScrollID(c scrollCursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeScrollID(s string) (scrollCursor, error) {
	var c scrollCursor
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("%w: malformed scroll id", storedoc.ErrUnavailable)
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%w: malformed scroll id", storedoc.ErrUnavailable)
	}
	return c, nil
}

// Search implements storedoc.DocumentStore.
func (s *Store) Search(ctx context.Context, req storedoc.SearchRequest) (storedoc.ScrollResult, error) {
	exists, err := s.indexExists(ctx, req.Index)
	if err != nil {
		return storedoc.ScrollResult{}, err
	}
	if !exists {
		return storedoc.ScrollResult{}, nil
	}

	size := req.Size
	if size <= 0 {
		size = 1000
	}

	if len(req.IDs) > 0 {
		hits, err := s.fetchHits(ctx, req.Index, req.DocType, req.IDs, req.WithVersion)
		if err != nil {
			return storedoc.ScrollResult{}, err
		}
		return storedoc.ScrollResult{ScrollID: encodeScrollID(scrollCursor{Done: true}), Hits: hits}, nil
	}

	return s.scanPage(ctx, scrollCursor{
		Index: req.Index, DocType: req.DocType, Size: int64(size), WithVersion: req.WithVersion,
	})
}

// SearchScroll implements storedoc.DocumentStore. keepAlive is accepted
// for interface fidelity but unused: the scroll cursor here is entirely
// self-contained in scrollID and never expires server-side.
func (s *Store) SearchScroll(ctx context.Context, scrollID string, keepAlive time.Duration) (storedoc.ScrollResult, error) {
	c, err := decodeScrollID(scrollID)
	if err != nil {
		return storedoc.ScrollResult{}, err
	}
	if c.Done {
		return storedoc.ScrollResult{ScrollID: scrollID}, nil
	}
	return s.scanPage(ctx, c)
}

// scanPage issues SSCAN calls until it has at least one id or the
// cursor wraps back to 0. SSCAN is allowed to return zero elements with
// a non-zero cursor mid-iteration (e.g. during a rehash); a caller that
// took an empty-but-not-done page as "scan finished" would treat every
// live id it hasn't reached yet as deleted, so this never hands one
// back.
func (s *Store) scanPage(ctx context.Context, c scrollCursor) (storedoc.ScrollResult, error) {
	cursor := c.Cursor
	var ids []string
	for {
		var err error
		ids, cursor, err = s.redis.SScan(ctx, idsKey(c.Index, c.DocType), cursor, "", c.Size).Result()
		if err != nil {
			return storedoc.ScrollResult{}, fmt.Errorf("%w: %v", storedoc.ErrUnavailable, err)
		}
		if len(ids) > 0 || cursor == 0 {
			break
		}
	}

	hits, err := s.fetchHits(ctx, c.Index, c.DocType, ids, c.WithVersion)
	if err != nil {
		return storedoc.ScrollResult{}, err
	}

	next := c
	next.Cursor = cursor
	next.Done = cursor == 0
	return storedoc.ScrollResult{ScrollID: encodeScrollID(next), Hits: hits}, nil
}

func (s *Store) fetchHits(ctx context.Context, index, docType string, ids []string, withVersion bool) ([]storedoc.Hit, error) {
	hits := make([]storedoc.Hit, 0, len(ids))
	for _, id := range ids {
		fields, err := s.redis.HGetAll(ctx, docKey(index, docType, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storedoc.ErrUnavailable, err)
		}
		if len(fields) == 0 {
			continue
		}
		var version int64
		if withVersion {
			version, _ = strconv.ParseInt(fields[versionField], 10, 64)
		}
		hits = append(hits, storedoc.Hit{ID: id, Source: decodeFields(fields), Version: version})
	}
	return hits, nil
}

// ClearScroll implements storedoc.DocumentStore. The Redis adapter holds
// no server-side scroll context (the cursor is entirely encoded in the
// scroll ID string), so clearing is always a no-op success — matching
// the contract that clearing an unknown or already-expired cursor must
// not be treated as a failure.
func (s *Store) ClearScroll(ctx context.Context, scrollIDs ...string) error {
	return nil
}
