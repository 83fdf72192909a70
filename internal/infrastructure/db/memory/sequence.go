// Package memory holds process-local implementations of the repositories.
// All state is lost when the process exits.
package memory

import (
	"context"
	"sync"
)

// Sequence is an in-process ports.Sequence. Counters start at 1.
type Sequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewSequence() *Sequence {
	return &Sequence{counters: make(map[string]int64)}
}

func (s *Sequence) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return s.counters[name], nil
}
