package connection

import (
	"sync"
	"time"
)

// millisClock hands out strictly increasing millisecond timestamps even
// when the wall clock stalls or steps back.
type millisClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newMillisClock(now func() time.Time) *millisClock {
	return &millisClock{now: now}
}

func (c *millisClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return ms
}
