package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockManagerSerializesPerProject(t *testing.T) {
	lm := NewLockManager()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lm.ExecuteWithProjectLock("p1", func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					old := atomic.LoadInt32(&maxActive)
					if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxActive)
}

func TestLockManagerReturnsFnError(t *testing.T) {
	lm := NewLockManager()
	want := errors.New("nope")
	assert.ErrorIs(t, lm.ExecuteWithProjectLock("p", func() error { return want }), want)
	// lock is released after an error
	assert.NoError(t, lm.ExecuteWithProjectLock("p", func() error { return nil }))
}

func TestLockManagerEvictsIdleLocks(t *testing.T) {
	lm := NewLockManager()
	lm.maxLocks = 2
	lm.lockTTL = -time.Second

	for _, id := range []string{"a", "b", "c"} {
		_ = lm.ExecuteWithProjectLock(id, func() error { return nil })
	}
	assert.LessOrEqual(t, lm.size(), 2)
}
