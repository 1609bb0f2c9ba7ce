// Package health tracks the process readiness state exposed over HTTP.
package health

import "sync"

// State is the mutable readiness flag shared between the server lifecycle
// and the health endpoint. The zero value reports not ready.
type State struct {
	mu       sync.RWMutex
	ready    bool
	stopping bool
}

// NewState creates a not-yet-ready state.
func NewState() *State {
	return &State{}
}

// SetReady marks the process as ready to serve traffic.
func (s *State) SetReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.stopping = false
}

// SetShuttingDown marks the process as draining; readiness reports false
// from this point on.
func (s *State) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	s.stopping = true
}

// Ready reports whether the process should receive traffic.
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// ShuttingDown reports whether the process is draining.
func (s *State) ShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopping
}
