package simplex

import (
	"slices"

	"github.com/notargets/tetcomplex/element"
)

// Set is a per-dimension collection of distinct simplex handles. The zero
// value is an empty set ready for use. Accessors return handles in ascending
// order so that traversal results are reproducible.
type Set struct {
	dims [element.NumDimensions]map[Handle]struct{}
}

// NewSet returns a set holding keys
func NewSet(keys ...Simplex) *Set {
	s := &Set{}
	for _, k := range keys {
		s.Insert(k)
	}
	return s
}

func (s *Set) dim(d element.Dimensionality) map[Handle]struct{} {
	if s.dims[d] == nil {
		s.dims[d] = make(map[Handle]struct{})
	}
	return s.dims[d]
}

// Insert adds k, invalid keys are ignored
func (s *Set) Insert(k Simplex) {
	key := k.Key()
	if !key.IsValid() {
		return
	}
	s.dim(key.Dim)[key.Handle] = struct{}{}
}

func (s *Set) Erase(k Simplex) {
	key := k.Key()
	delete(s.dims[key.Dim], key.Handle)
}

func (s *Set) Contains(k Simplex) bool {
	key := k.Key()
	_, ok := s.dims[key.Dim][key.Handle]
	return ok
}

// Len is the number of simplices of dimension d
func (s *Set) Len(d element.Dimensionality) int {
	return len(s.dims[d])
}

// Size is the total number of simplices over all dimensions
func (s *Set) Size() (n int) {
	for d := range s.dims {
		n += len(s.dims[d])
	}
	return
}

func (s *Set) IsEmpty() bool {
	return s.Size() == 0
}

func (s *Set) handles(d element.Dimensionality) []Handle {
	hs := make([]Handle, 0, len(s.dims[d]))
	for h := range s.dims[d] {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	return hs
}

func (s *Set) Nodes() []NodeKey {
	hs := s.handles(element.D0)
	out := make([]NodeKey, len(hs))
	for i, h := range hs {
		out[i] = NodeKey(h)
	}
	return out
}

func (s *Set) Edges() []EdgeKey {
	hs := s.handles(element.D1)
	out := make([]EdgeKey, len(hs))
	for i, h := range hs {
		out[i] = EdgeKey(h)
	}
	return out
}

func (s *Set) Faces() []FaceKey {
	hs := s.handles(element.D2)
	out := make([]FaceKey, len(hs))
	for i, h := range hs {
		out[i] = FaceKey(h)
	}
	return out
}

func (s *Set) Tets() []TetKey {
	hs := s.handles(element.D3)
	out := make([]TetKey, len(hs))
	for i, h := range hs {
		out[i] = TetKey(h)
	}
	return out
}

// Keys lists every member ordered by dimension, then handle
func (s *Set) Keys() []Key {
	out := make([]Key, 0, s.Size())
	for d := element.D0; d <= element.D3; d++ {
		for _, h := range s.handles(d) {
			out = append(out, Key{Dim: d, Handle: h})
		}
	}
	return out
}

// Union adds every member of o to s and returns s
func (s *Set) Union(o *Set) *Set {
	for d := range o.dims {
		for h := range o.dims[d] {
			s.dim(element.Dimensionality(d))[h] = struct{}{}
		}
	}
	return s
}

// Intersection keeps only the members of s also in o and returns s
func (s *Set) Intersection(o *Set) *Set {
	for d := range s.dims {
		for h := range s.dims[d] {
			if _, ok := o.dims[d][h]; !ok {
				delete(s.dims[d], h)
			}
		}
	}
	return s
}

// Difference removes every member of o from s and returns s
func (s *Set) Difference(o *Set) *Set {
	for d := range o.dims {
		for h := range o.dims[d] {
			delete(s.dims[d], h)
		}
	}
	return s
}

func (s *Set) Clone() *Set {
	c := &Set{}
	return c.Union(s)
}

func (s *Set) Equal(o *Set) bool {
	for d := range s.dims {
		if len(s.dims[d]) != len(o.dims[d]) {
			return false
		}
		for h := range s.dims[d] {
			if _, ok := o.dims[d][h]; !ok {
				return false
			}
		}
	}
	return true
}

// Union of two key lists, keeping first occurrence order
func Union[K comparable](a, b []K) []K {
	out := make([]K, 0, len(a)+len(b))
	seen := make(map[K]struct{}, len(a)+len(b))
	for _, l := range [][]K{a, b} {
		for _, k := range l {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Intersection of two key lists, in the order of a
func Intersection[K comparable](a, b []K) []K {
	var out []K
	for _, k := range a {
		if slices.Contains(b, k) && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// Difference is the symmetric difference of two key lists: members of a not
// in b followed by members of b not in a
func Difference[K comparable](a, b []K) []K {
	var out []K
	for _, k := range a {
		if !slices.Contains(b, k) {
			out = append(out, k)
		}
	}
	for _, k := range b {
		if !slices.Contains(a, k) {
			out = append(out, k)
		}
	}
	return out
}
