package session

import (
	"sync"
	"testing"
)

func TestBeginRotatesToken(t *testing.T) {
	g := NewGuard()
	first := g.Current()
	second := g.Begin()
	if first == second {
		t.Error("Begin() returned the same token twice")
	}
	if g.IsCurrent(first) {
		t.Error("old token still current after Begin()")
	}
	if !g.IsCurrent(second) {
		t.Error("fresh token not current")
	}
}

func TestInvalidateDropsOldToken(t *testing.T) {
	g := NewGuard()
	tok := g.Current()
	g.Invalidate()
	if g.IsCurrent(tok) {
		t.Error("token still current after Invalidate()")
	}
}

func TestEmptyTokenNeverCurrent(t *testing.T) {
	g := NewGuard()
	if g.IsCurrent("") {
		t.Error("empty token reported current")
	}
}

func TestRequestStopSetsFlagAndInvalidates(t *testing.T) {
	g := NewGuard()
	tok := g.Current()

	g.RequestStop()
	if !g.Stopped() {
		t.Error("Stopped() = false after RequestStop()")
	}
	if g.IsCurrent(tok) {
		t.Error("pre-stop token still current")
	}

	g.Begin()
	if g.Stopped() {
		t.Error("stop flag survived Begin()")
	}
}

// Simulates N slow jobs settling after a mid-flight invalidation: none of
// their captured tokens may pass the guard, so zero writes can occur.
func TestNoTokenPassesAfterMidFlightInvalidation(t *testing.T) {
	g := NewGuard()

	const jobs = 50
	tokens := make([]Token, jobs)
	for i := range tokens {
		tokens[i] = g.Current()
	}

	g.Invalidate()

	var wg sync.WaitGroup
	var mu sync.Mutex
	writes := 0
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func(tok Token) {
			defer wg.Done()
			if g.IsCurrent(tok) {
				mu.Lock()
				writes++
				mu.Unlock()
			}
		}(tokens[i])
	}
	wg.Wait()

	if writes != 0 {
		t.Errorf("%d stale jobs passed the guard, want 0", writes)
	}
}
