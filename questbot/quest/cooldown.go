package quest

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// clickCacheSize bounds the volatile cooldown state. Entries evicted by
// the LRU or lost on restart only shorten throttling, never break the
// capacity invariant, so a fixed ceiling is safe.
const clickCacheSize = 16384

// Cooldown is the process-local, non-durable click throttle keyed by
// (user, task). The check and the timestamp write happen under one lock
// so two near-simultaneous clicks cannot both pass the gate.
type Cooldown struct {
	mu     sync.Mutex
	clicks *lru.Cache
	window time.Duration
	now    func() time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	cache, _ := lru.New(clickCacheSize)
	return &Cooldown{
		clicks: cache,
		window: window,
		now:    time.Now,
	}
}

// Check reports whether the (user, task) pair may click now. On allow it
// records the click timestamp before returning; on deny it returns how
// long the caller has to wait.
func (c *Cooldown) Check(userID string, taskID int64) (time.Duration, bool) {
	key := fmt.Sprintf("%s:%d", userID, taskID)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if v, ok := c.clicks.Get(key); ok {
		last := v.(time.Time)
		if elapsed := now.Sub(last); elapsed < c.window {
			return c.window - elapsed, false
		}
	}
	c.clicks.Add(key, now)
	return 0, true
}
