// Package session issues the per-run token that decides whether a settling
// job may still write its result. Every job captures the token at launch; a
// result is applied only if that token is still current when the collaborator
// call returns. Anything else is dropped without touching shared state, which
// is what keeps a restarted or stopped run safe from late arrivals.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Token identifies one upload/reset cycle. Opaque to callers.
type Token string

// Guard tracks the current session token and the cooperative stop flag read
// by the batch controller before each admission.
type Guard struct {
	mu      sync.Mutex
	current Token
	stopped bool
}

// NewGuard returns a guard with an initial session already begun.
func NewGuard() *Guard {
	g := &Guard{}
	g.Begin()
	return g
}

// Begin rotates to a fresh token and clears the stop flag. Called on every
// new upload or explicit restart.
func (g *Guard) Begin() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = Token(uuid.NewString())
	g.stopped = false
	log.Debug().Str("session", string(g.current)).Msg("Session started")
	return g.current
}

// Current returns the token a job should capture at launch.
func (g *Guard) Current() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// IsCurrent reports whether a result captured under t may still be applied.
func (g *Guard) IsCurrent(t Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return t != "" && t == g.current
}

// Invalidate rotates the current token without starting a new logical run.
// Exactly one token is current at any time; results launched under the old
// one become unappliable the moment this returns.
func (g *Guard) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = Token(uuid.NewString())
	log.Debug().Msg("Session invalidated")
}

// RequestStop sets the stop flag and invalidates the session, so the
// controller stops admitting jobs and any job already in flight has its
// eventual result discarded.
func (g *Guard) RequestStop() {
	g.mu.Lock()
	g.stopped = true
	g.current = Token(uuid.NewString())
	g.mu.Unlock()
	log.Info().Msg("Stop requested")
}

// Stopped reports whether a stop has been requested since the last Begin.
func (g *Guard) Stopped() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stopped
}
