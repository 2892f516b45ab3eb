package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunAtStart(t *testing.T) {
	s := NewScheduler()

	var runs int64
	s.AddInterval("job", time.Hour, true, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	})

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_TicksOnInterval(t *testing.T) {
	s := NewScheduler()

	var runs int64
	s.AddInterval("job", 20*time.Millisecond, false, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	})

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_ReplaceById(t *testing.T) {
	s := NewScheduler()

	var first, second int64
	s.AddInterval("job", 20*time.Millisecond, false, func(ctx context.Context) {
		atomic.AddInt64(&first, 1)
	})
	s.AddInterval("job", 20*time.Millisecond, false, func(ctx context.Context) {
		atomic.AddInt64(&second, 1)
	})

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&second) >= 2
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, atomic.LoadInt64(&first))
}

func TestScheduler_PanicDoesNotKillJob(t *testing.T) {
	s := NewScheduler()

	var runs int64
	s.AddInterval("job", 10*time.Millisecond, false, func(ctx context.Context) {
		if atomic.AddInt64(&runs, 1) == 1 {
			panic("boom")
		}
	})

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_StopCancelsContext(t *testing.T) {
	s := NewScheduler()

	done := make(chan struct{})
	s.AddInterval("job", time.Hour, true, func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})

	s.Start()
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled on Stop")
	}
}
