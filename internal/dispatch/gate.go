package dispatch

import "sync"

// Gate is a single-slot mutual-exclusion lock with deterministic FIFO wake
// order. Exactly one dispatch sequence holds the slot at any instant;
// waiters are woken in arrival order, so the latency a caller observes
// under load is determined by its queue position.
//
// A plain sync.Mutex does not guarantee handoff order, and a weighted
// semaphore hides it; the explicit waiter queue keeps the ordering
// observable and testable.
type Gate struct {
	mu      sync.Mutex
	held    bool
	waiters []chan struct{}
}

// NewGate returns a gate with a free slot.
func NewGate() *Gate {
	return &Gate{}
}

// Acquire blocks until the slot is free and this caller is at the head of
// the queue. There is no cancellation: once a caller queues up, it waits
// until every earlier dispatch sequence has released the slot.
func (g *Gate) Acquire() {
	g.mu.Lock()
	if !g.held && len(g.waiters) == 0 {
		g.held = true
		g.mu.Unlock()
		return
	}
	ready := make(chan struct{})
	g.waiters = append(g.waiters, ready)
	g.mu.Unlock()
	<-ready
}

// Release frees the slot, handing it directly to the oldest waiter if one
// exists. It must be called exactly once per Acquire, on every exit path.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.held {
		panic("dispatch: Release of unheld gate")
	}
	if len(g.waiters) == 0 {
		g.held = false
		return
	}
	// Direct handoff: the slot never becomes observable as free, so a
	// late arrival cannot overtake a queued waiter.
	next := g.waiters[0]
	g.waiters = g.waiters[1:]
	close(next)
}
