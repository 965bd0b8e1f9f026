package dispatch

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"antiproxy-go/internal/logging"
	"antiproxy-go/internal/monitoring"
)

// Limiter enforces a minimum spacing between dispatch starts toward the
// upstream provider. It owns the process-wide last-dispatch timestamp.
//
// The limiter is charged once per inbound call, not once per endpoint
// attempt: a dispatch sequence that fails over to a second endpoint still
// spends a single slot. It protects the aggregate call rate to the
// provider, not per-socket rate.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	hasLast  bool

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewLimiter creates a limiter with the given minimum interval.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// SetInterval updates the minimum interval. Used by config hot reload.
func (l *Limiter) SetInterval(interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interval = interval
}

// WaitTurn suspends the caller until the minimum interval since the last
// dispatch has elapsed, then unconditionally records the current instant
// as the new last-dispatch timestamp. It is called once per inbound call,
// after the gate is acquired and before the first endpoint attempt.
func (l *Limiter) WaitTurn() {
	l.mu.Lock()
	interval := l.interval
	var wait time.Duration
	if l.hasLast {
		if elapsed := l.now().Sub(l.last); elapsed < interval {
			wait = interval - elapsed
		}
	}
	l.mu.Unlock()

	if wait > 0 {
		log.WithField("wait_ms", logging.DurationMS(wait)).Info("rate limit: delaying dispatch")
		monitoring.RateLimitWaitDuration.Observe(wait.Seconds())
		l.sleep(wait)
	}

	// Stamp after waking, regardless of whether the attempt that follows
	// succeeds.
	l.mu.Lock()
	l.last = l.now()
	l.hasLast = true
	l.mu.Unlock()
}
