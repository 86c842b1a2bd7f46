package clock

import (
	"sync"
	"time"
)

// FakeClock is a deterministic Clock. Time stands still until Advance is
// called; tickers registered on the clock fire synchronously, in
// deadline order, as the clock moves past their deadlines.
//
// Safe for concurrent use.
type FakeClock struct {
	mu             sync.Mutex
	current        time.Time
	tickers        []*fakeTicker
	tickersChanged *sync.Cond
}

type fakeTicker struct {
	deadline time.Time
	interval time.Duration
	channel  chan time.Time
	stopped  bool
}

// NewFake returns a FakeClock initialized to the given time.
func NewFake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.tickersChanged = sync.NewCond(&clock.mu)
	return clock
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := &fakeTicker{
		deadline: c.current.Add(d),
		interval: d,
		channel:  make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, ticker)
	c.tickersChanged.Broadcast()

	return &Ticker{
		C: ticker.channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			ticker.stopped = true
		},
	}
}

// Advance moves the clock forward by d. Tickers whose deadlines fall
// within the new time fire once per elapsed interval; sends are
// non-blocking so a slow consumer drops ticks instead of deadlocking the
// test.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	for {
		ticker := c.nextDue(target)
		if ticker == nil {
			return
		}
		select {
		case ticker.channel <- ticker.deadline:
		default:
		}
		c.mu.Lock()
		ticker.deadline = ticker.deadline.Add(ticker.interval)
		c.mu.Unlock()
	}
}

// WaitForTickers blocks until at least n unstopped tickers are
// registered. Closes the race between a goroutine setting up its ticker
// and the test advancing the clock.
func (c *FakeClock) WaitForTickers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.activeTickersLocked() < n {
		c.tickersChanged.Wait()
	}
}

// activeTickersLocked counts unstopped tickers. Caller holds c.mu.
func (c *FakeClock) activeTickersLocked() int {
	count := 0
	for _, ticker := range c.tickers {
		if !ticker.stopped {
			count++
		}
	}
	return count
}

// nextDue returns the unstopped ticker with the earliest deadline not
// after target, or nil when none remain due.
func (c *FakeClock) nextDue(target time.Time) *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due *fakeTicker
	for _, ticker := range c.tickers {
		if ticker.stopped || ticker.deadline.After(target) {
			continue
		}
		if due == nil || ticker.deadline.Before(due.deadline) {
			due = ticker
		}
	}
	return due
}
