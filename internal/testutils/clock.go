package testutils

import (
	"sync"
	"time"
)

// TestClock is a deterministic replacement for time.Now. Every call to Now returns the current
// time of the clock and then advances it by step
type TestClock struct {
	time time.Time
	step time.Duration
	lock sync.Mutex
}

func NewTestClock(t time.Time, step time.Duration) *TestClock {
	return &TestClock{
		time: t,
		step: step,
	}
}

func (c *TestClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	res := c.time
	c.time = c.time.Add(c.step)
	return res
}

// Peek returns the time the next call to Now will return, without advancing the clock
func (c *TestClock) Peek() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.time
}
