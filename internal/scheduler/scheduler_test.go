package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_TicksTask(t *testing.T) {
	var calls int32
	s := New("test", 20*time.Millisecond, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()

	s.Start(ctx)

	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestScheduler_RetriesAfterError(t *testing.T) {
	var calls int32
	s := New("test", 20*time.Millisecond, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, errors.New("store unavailable")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()

	// Errors are logged, not fatal; ticks keep coming.
	s.Start(ctx)

	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := New("test", time.Second, func(ctx context.Context) (int, error) {
		return 0, nil
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
		// success
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}
