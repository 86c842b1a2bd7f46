// Package countdown renders a live countdown toward a server-issued
// expiry instant and signals expiry to its owner exactly once. It is
// purely presentational: it never extends or refreshes server state, and
// the server re-validates expiry on submission regardless of what the
// countdown shows.
package countdown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/learnhub/assignment-service/internal/clock"
)

// TickInterval is how often the remaining time is recomputed.
const TickInterval = time.Second

// WarningThreshold is the remaining time at or below which the countdown
// switches to the warning bucket.
const WarningThreshold = 10 * time.Minute

type Bucket string

const (
	BucketNormal  Bucket = "normal"
	BucketWarning Bucket = "warning"
	BucketExpired Bucket = "expired"
)

// BucketFor classifies a remaining duration: expired at zero, warning
// when ten minutes or less are left, normal above that.
func BucketFor(remaining time.Duration) Bucket {
	switch {
	case remaining <= 0:
		return BucketExpired
	case remaining <= WarningThreshold:
		return BucketWarning
	default:
		return BucketNormal
	}
}

// FormatRemaining renders a duration as zero-padded HH:MM:SS, flooring
// to whole seconds. Negative durations render as 00:00:00.
func FormatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	totalSeconds := int64(remaining / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Snapshot is one observation of the countdown.
type Snapshot struct {
	Remaining time.Duration
	Bucket    Bucket
	Display   string
}

// Presenter owns the ticking countdown for one attempt view. The expiry
// callback fires exactly once, the first time remaining reaches zero;
// later ticks observe the guard and stay silent. Stop (or cancelling the
// Run context) tears the ticker down.
type Presenter struct {
	clock     clock.Clock
	expiresAt time.Time
	onExpire  func()
	onTick    func(Snapshot)

	mu      sync.Mutex
	expired bool

	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithTickHandler registers a render hook invoked with every snapshot,
// including the immediate one taken when Run starts.
func WithTickHandler(handler func(Snapshot)) Option {
	return func(p *Presenter) { p.onTick = handler }
}

// New builds a Presenter counting down to expiresAt. onExpire is invoked
// exactly once when the remaining time first reaches zero; it is expected
// to trigger auto-submission of whatever answers the caller holds.
func New(clk clock.Clock, expiresAt time.Time, onExpire func(), opts ...Option) *Presenter {
	p := &Presenter{
		clock:     clk,
		expiresAt: expiresAt,
		onExpire:  onExpire,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run observes the countdown immediately, then once per TickInterval
// until the context is cancelled or Stop is called. The ticker is always
// released on return.
func (p *Presenter) Run(ctx context.Context) {
	p.observe()

	ticker := p.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.observe()
		}
	}
}

// Stop ends the countdown loop. Idempotent; it has no server-side
// effect, the attempt window keeps running either way.
func (p *Presenter) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
}

// Remaining returns the time left until expiry at this instant, floored
// at zero.
func (p *Presenter) Remaining() time.Duration {
	remaining := p.expiresAt.Sub(p.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// observe recomputes the countdown, notifies the render hook, and fires
// the expiry callback if remaining just reached zero for the first time.
func (p *Presenter) observe() Snapshot {
	remaining := p.Remaining()
	snapshot := Snapshot{
		Remaining: remaining,
		Bucket:    BucketFor(remaining),
		Display:   FormatRemaining(remaining),
	}

	if p.onTick != nil {
		p.onTick(snapshot)
	}

	if remaining == 0 {
		p.mu.Lock()
		first := !p.expired
		p.expired = true
		p.mu.Unlock()
		if first && p.onExpire != nil {
			p.onExpire()
		}
	}

	return snapshot
}
