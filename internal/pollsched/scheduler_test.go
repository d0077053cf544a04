package pollsched

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestStartRunsImmediately(t *testing.T) {
	var calls atomic.Int32
	s := New(time.Hour, func() { calls.Add(1) })
	s.Start()
	defer s.Stop()

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one immediate call, got %d", calls.Load())
	}
}

func TestSchedulerRepeatsAtInterval(t *testing.T) {
	var calls atomic.Int32
	s := New(20*time.Millisecond, func() { calls.Add(1) })
	s.Start()
	defer s.Stop()

	time.Sleep(90 * time.Millisecond)

	got := calls.Load()
	if got < 2 {
		t.Fatalf("expected at least 2 calls after 90ms at a 20ms interval, got %d", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	s := New(5*time.Millisecond, func() {
		calls.Add(1)
		<-release
	})

	started := make(chan struct{})
	go func() {
		s.Start()
		close(started)
	}()
	close(release)
	<-started

	s.Stop()
	s.Stop() // must not panic or block a second time

	if calls.Load() == 0 {
		t.Fatal("expected at least one call before stopping")
	}
}
