// Package realmcache provides a concrete RealmCachePurger that fans a
// cache-invalidation event out to every node of a cluster over Redis
// pub/sub and waits for each subscriber to acknowledge, modeling the
// source's prepareClearRealmCache().usernames(...).execute() call
// (which collects an acknowledgment from each node) without pulling in a
// cluster-membership library: the acknowledgment count is agreed on out
// of band and tracked in a short-lived Redis counter, the same
// countdown-then-drain shape the teacher's internal/audit dispatcher
// uses when it stops (drain everything already queued, then return).
package realmcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrAckTimeout is returned when fewer than the expected number of nodes
// acknowledged a purge before ctx was done.
var ErrAckTimeout = errors.New("realmcache: purge acknowledgment timed out")

type purgeEvent struct {
	RequestID string   `json:"request_id"`
	Usernames []string `json:"usernames"`
}

func ackKey(requestID string) string { return "realmcache:ack:" + requestID }

// RedisPurger publishes ClearRealmCache requests on Channel and waits for
// ExpectedAcks subscribers (see Listen) to acknowledge each one.
type RedisPurger struct {
	redis        redis.UniversalClient
	channel      string
	expectedAcks int64
	ackTTL       time.Duration
	pollInterval time.Duration
}

// New returns a RedisPurger. expectedAcks is the number of cluster nodes
// expected to acknowledge each purge; when it is zero, ClearRealmCache
// publishes and returns immediately without waiting for acknowledgment
// (fire-and-forget), matching a single-node deployment.
func New(client redis.UniversalClient, channel string, expectedAcks int64) *RedisPurger {
	return &RedisPurger{
		redis:        client,
		channel:      channel,
		expectedAcks: expectedAcks,
		ackTTL:       30 * time.Second,
		pollInterval: 25 * time.Millisecond,
	}
}

// ClearRealmCache implements nativeusers.RealmCachePurger.
func (p *RedisPurger) ClearRealmCache(ctx context.Context, usernames []string) error {
	requestID := uuid.NewString()
	event := purgeEvent{RequestID: requestID, Usernames: usernames}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.expectedAcks > 0 {
		if err := p.redis.Set(ctx, ackKey(requestID), 0, p.ackTTL).Err(); err != nil {
			return fmt.Errorf("realmcache: preparing ack counter: %w", err)
		}
	}

	if err := p.redis.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("realmcache: publish: %w", err)
	}

	if p.expectedAcks <= 0 {
		return nil
	}

	return p.awaitAcks(ctx, requestID)
}

func (p *RedisPurger) awaitAcks(ctx context.Context, requestID string) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		count, err := p.redis.Get(ctx, ackKey(requestID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("realmcache: reading ack counter: %w", err)
		}
		if count >= p.expectedAcks {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d/%d nodes acknowledged", ErrAckTimeout, count, p.expectedAcks)
		case <-ticker.C:
		}
	}
}

// Listen subscribes to Channel and invokes onPurge for each received
// event, acknowledging it afterward. It blocks until ctx is done. Each
// cluster node's realm-cache implementation is expected to run this in
// its own goroutine.
func (p *RedisPurger) Listen(ctx context.Context, onPurge func(usernames []string)) error {
	sub := p.redis.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event purgeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			onPurge(event.Usernames)
			p.redis.Incr(ctx, ackKey(event.RequestID))
		}
	}
}
