package engine

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionLocks(t *testing.T) {
	locks := newSessionLocks()

	assert.True(t, locks.tryAcquire("agent:a"))
	assert.False(t, locks.tryAcquire("agent:a"))
	assert.True(t, locks.tryAcquire("agent:b"))
	assert.Equal(t, 2, locks.inFlight())

	locks.release("agent:a")
	assert.True(t, locks.tryAcquire("agent:a"))

	locks.release("agent:a")
	locks.release("agent:b")
	assert.Zero(t, locks.inFlight())
}

func TestSessionLocks_OneWinnerUnderContention(t *testing.T) {
	locks := newSessionLocks()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if locks.tryAcquire("agent:session") {
				winners.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
