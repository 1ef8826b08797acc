package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// RunGuard — ensures at most one pipeline run executes at a time
// ─────────────────────────────────────────────────────────────

// RunGuard is a concurrency guard. A scheduled trigger that fires while
// a run is still in flight fails TryLock and is dropped; overlapping
// runs would interleave uncoordinated writes to the destination.
type RunGuard struct {
	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// TryLock attempts to mark a run as in flight. Returns false if one
// already is.
func (g *RunGuard) TryLock() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return false
	}
	g.running = true
	g.wg.Add(1)
	return true
}

// Unlock marks the run as finished. Must be called after TryLock returns true.
func (g *RunGuard) Unlock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running = false
	g.wg.Done()
}

// WaitAll blocks until the in-flight run completes or ctx is cancelled.
func (g *RunGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
