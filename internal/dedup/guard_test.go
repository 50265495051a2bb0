package dedup

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryGuard_Acquire(t *testing.T) {
	g := NewMemoryGuard(time.Minute)

	release, ok := g.Acquire("u1", "extrato.pdf")
	require.True(t, ok)

	_, ok = g.Acquire("u1", "extrato.pdf")
	assert.False(t, ok, "same user and file must collide")

	releaseOther, ok := g.Acquire("u2", "extrato.pdf")
	assert.True(t, ok, "different user is independent")
	releaseOther()

	releaseFile, ok := g.Acquire("u1", "fatura.csv")
	assert.True(t, ok, "different file is independent")
	releaseFile()

	release()
	release()

	again, ok := g.Acquire("u1", "extrato.pdf")
	assert.True(t, ok, "released lock can be taken again")
	again()
	assert.Equal(t, 0, g.Held())
}

func TestMemoryGuard_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	g := NewMemoryGuard(10*time.Minute, WithClock(clock.Now))

	staleRelease, ok := g.Acquire("u1", "a.pdf")
	require.True(t, ok)

	clock.Advance(9 * time.Minute)
	_, ok = g.Acquire("u1", "a.pdf")
	assert.False(t, ok)

	clock.Advance(2 * time.Minute)
	release, ok := g.Acquire("u1", "a.pdf")
	require.True(t, ok, "expired lock is taken over")

	staleRelease()
	_, ok = g.Acquire("u1", "a.pdf")
	assert.False(t, ok, "stale release must not free the new holder")

	release()
	assert.Equal(t, 0, g.Held())
}

func TestMemoryGuard_Concurrent(t *testing.T) {
	g := NewMemoryGuard(0)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := g.Acquire("u1", "same.pdf"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 1, g.Held())
}
