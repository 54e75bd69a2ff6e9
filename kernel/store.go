package kernel

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/notargets/tetcomplex/simplex"
)

// store is a generational arena of simplex records. Removal only clears the
// live bit; slots are recycled by collect with a bumped generation so stale
// handles never alias a new record.
//
// Pointers returned by get are invalidated by the next alloc on the same
// store.
type store[R any] struct {
	recs []R
	gens []uint32
	live bitset.BitSet
	dead []int // removed, awaiting collect
	free []int // collected, ready for reuse
}

func (s *store[R]) alloc(r R) simplex.Handle {
	var idx int
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
		s.recs[idx] = r
	} else {
		idx = len(s.recs)
		s.recs = append(s.recs, r)
		s.gens = append(s.gens, 0)
	}
	s.live.Set(uint(idx))
	return simplex.NewHandle(idx, s.gens[idx])
}

func (s *store[R]) get(h simplex.Handle) *R {
	idx := h.Index()
	if idx < 0 || idx >= len(s.recs) {
		return nil
	}
	if !s.live.Test(uint(idx)) || s.gens[idx] != h.Generation() {
		return nil
	}
	return &s.recs[idx]
}

func (s *store[R]) kill(h simplex.Handle) bool {
	if s.get(h) == nil {
		return false
	}
	idx := h.Index()
	s.live.Clear(uint(idx))
	s.dead = append(s.dead, idx)
	return true
}

// collect recycles every removed slot and returns how many were reclaimed
func (s *store[R]) collect() int {
	var zero R
	for _, idx := range s.dead {
		s.recs[idx] = zero
		s.gens[idx]++
		s.free = append(s.free, idx)
	}
	n := len(s.dead)
	s.dead = s.dead[:0]
	return n
}

func (s *store[R]) len() int {
	return int(s.live.Count())
}

// handles lists live handles in slot order
func (s *store[R]) handles() []simplex.Handle {
	out := make([]simplex.Handle, 0, s.len())
	for i, ok := s.live.NextSet(0); ok; i, ok = s.live.NextSet(i + 1) {
		out = append(out, simplex.NewHandle(int(i), s.gens[i]))
	}
	return out
}
