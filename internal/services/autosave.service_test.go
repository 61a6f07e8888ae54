package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newFastAutosave() *AutosaveService {
	s := NewAutosaveService()
	s.delay = 20 * time.Millisecond
	return s
}

func TestAutosave_CoalescesRapidEdits(t *testing.T) {
	s := newFastAutosave()
	defer s.Close()

	var calls int32
	var lastValue atomic.Value

	for _, value := range []string{"A", "Ac", "Acm", "Acme"} {
		v := value
		s.Queue("user-1", func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			lastValue.Store(v)
			return nil
		})
	}

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "Acme", lastValue.Load())
}

func TestAutosave_IndependentKeys(t *testing.T) {
	s := newFastAutosave()
	defer s.Close()

	var calls int32
	save := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	s.Queue("user-1", save)
	s.Queue("user-2", save)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestAutosave_CloseFlushesPending(t *testing.T) {
	s := newFastAutosave()

	var calls int32
	s.Queue("user-1", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	// Close before the debounce window elapses; the save still runs.
	s.Close()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAutosave_QueueAfterCloseRunsImmediately(t *testing.T) {
	s := newFastAutosave()
	s.Close()

	var calls int32
	s.Queue("user-1", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAutosave_FlushRunsEarly(t *testing.T) {
	s := newFastAutosave()
	defer s.Close()

	var calls int32
	s.Queue("user-1", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	s.Flush("user-1")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Flushing again is a no-op.
	s.Flush("user-1")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
