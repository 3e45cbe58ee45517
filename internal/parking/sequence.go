package parking

import "sync"

// Sequence hands out increasing integers starting just above its base.
type Sequence struct {
	mu   sync.Mutex
	last int
}

func NewSequence(base int) *Sequence {
	return &Sequence{last: base}
}

func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Last is the most recently issued value, or the base if none was issued.
func (s *Sequence) Last() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
