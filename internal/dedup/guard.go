// Package dedup keeps the same document from being analyzed twice at once for the
// same user.
package dedup

import (
	"sync"
	"time"
)

// DefaultTTL bounds how long a lock survives when its holder never releases it.
const DefaultTTL = 10 * time.Minute

// Guard hands out per-(user, file) locks. Acquire never blocks: when the key is held
// it returns ok=false and the caller should retry later.
type Guard interface {
	Acquire(userID, fileName string) (release func(), ok bool)
}

// MemoryGuard is an in-process Guard whose locks expire after a TTL.
type MemoryGuard struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	held  map[string]lease
	token uint64
}

type lease struct {
	token   uint64
	expires time.Time
}

// Option configures a MemoryGuard.
type Option func(*MemoryGuard)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *MemoryGuard) { g.now = now }
}

// NewMemoryGuard creates a guard. A non-positive ttl selects DefaultTTL.
func NewMemoryGuard(ttl time.Duration, opts ...Option) *MemoryGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	g := &MemoryGuard{
		ttl:  ttl,
		now:  time.Now,
		held: make(map[string]lease),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func key(userID, fileName string) string {
	return userID + "\x00" + fileName
}

// Acquire takes the lock for (userID, fileName). The returned release is idempotent
// and only frees the lease it was issued for, so a late release after expiry cannot
// drop a newer holder's lock.
func (g *MemoryGuard) Acquire(userID, fileName string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := key(userID, fileName)
	now := g.now()
	if l, ok := g.held[k]; ok && now.Before(l.expires) {
		return func() {}, false
	}

	g.token++
	tok := g.token
	g.held[k] = lease{token: tok, expires: now.Add(g.ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if l, ok := g.held[k]; ok && l.token == tok {
				delete(g.held, k)
			}
		})
	}, true
}

// Held reports how many unexpired locks exist.
func (g *MemoryGuard) Held() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	n := 0
	for k, l := range g.held {
		if now.Before(l.expires) {
			n++
		} else {
			delete(g.held, k)
		}
	}
	return n
}
