package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGateMutualExclusion(t *testing.T) {
	g := NewGate()

	var inFlight int32
	var peak int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Acquire()
			defer g.Release()
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got != 1 {
		t.Errorf("peak concurrent holders = %d, want 1", got)
	}
}

func TestGateFIFOOrder(t *testing.T) {
	g := NewGate()
	g.Acquire() // hold so every waiter queues up

	const waiters = 8
	order := make(chan int, waiters)
	for i := 0; i < waiters; i++ {
		i := i
		go func() {
			g.Acquire()
			order <- i
			g.Release()
		}()
		// Wait until this goroutine is queued before starting the next,
		// so arrival order is deterministic.
		waitForQueueLen(t, g, i+1)
	}

	g.Release()
	for want := 0; want < waiters; want++ {
		select {
		case got := <-order:
			if got != want {
				t.Fatalf("wake order: got waiter %d, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for waiter %d", want)
		}
	}
}

func TestGateReleaseUnheldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Release of unheld gate should panic")
		}
	}()
	NewGate().Release()
}

func TestGateHandoffSkipsFreeState(t *testing.T) {
	g := NewGate()
	g.Acquire()

	acquired := make(chan struct{})
	go func() {
		g.Acquire()
		close(acquired)
	}()
	waitForQueueLen(t, g, 1)

	g.Release()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("queued waiter was not handed the slot")
	}
	g.Release()

	// Slot must be free again for an immediate acquire.
	done := make(chan struct{})
	go func() {
		g.Acquire()
		g.Release()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("gate not reusable after handoff")
	}
}

func waitForQueueLen(t *testing.T, g *Gate, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		g.mu.Lock()
		queued := len(g.waiters)
		g.mu.Unlock()
		if queued >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d queued waiters", n)
}
