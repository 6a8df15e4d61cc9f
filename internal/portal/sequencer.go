package portal

import "sync"

// Sequencer guards against the last-resolved-wins race on overlapping
// fetches for the same logical key (rapid date-range changes firing
// concurrent report requests). Each fetch begins a new generation for its
// key; a response is applied only if its generation is still current, so
// a superseded in-flight request's result is discarded even when it
// resolves after the newer one.
type Sequencer struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{gens: make(map[string]uint64)}
}

// Begin starts a new generation for key and returns it.
func (s *Sequencer) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	return s.gens[key]
}

// Current reports whether gen is still the latest generation for key.
func (s *Sequencer) Current(key string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key] == gen
}
