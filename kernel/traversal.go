package kernel

import (
	"github.com/notargets/tetcomplex/simplex"
)

// Star is every simplex having s in its transitive boundary, s excluded
func (k *Kernel) Star(s simplex.Simplex) *simplex.Set {
	out := &simplex.Set{}
	k.starInto(s.Key(), out)
	return out
}

// StarOf is the union of the stars of every member of set
func (k *Kernel) StarOf(set *simplex.Set) *simplex.Set {
	out := &simplex.Set{}
	for _, key := range set.Keys() {
		k.starInto(key, out)
	}
	return out
}

func (k *Kernel) starInto(key simplex.Key, out *simplex.Set) {
	for _, c := range k.CoBoundary(key) {
		if out.Contains(c) {
			continue
		}
		out.Insert(c)
		k.starInto(c, out)
	}
}

// Closure is s and every simplex in its transitive boundary
func (k *Kernel) Closure(s simplex.Simplex) *simplex.Set {
	out := &simplex.Set{}
	k.closureInto(s.Key(), out)
	return out
}

// ClosureOf is the union of the closures of every member of set
func (k *Kernel) ClosureOf(set *simplex.Set) *simplex.Set {
	out := &simplex.Set{}
	for _, key := range set.Keys() {
		k.closureInto(key, out)
	}
	return out
}

func (k *Kernel) closureInto(key simplex.Key, out *simplex.Set) {
	if out.Contains(key) || !k.Exists(key) {
		return
	}
	out.Insert(key)
	for _, b := range k.Boundary(key) {
		k.closureInto(b, out)
	}
}

// Link is Closure(Star(s)) without Closure(s) and without anything touching it
func (k *Kernel) Link(s simplex.Simplex) *simplex.Set {
	cl := k.Closure(s)
	touching := k.StarOf(cl).Union(cl)
	return k.ClosureOf(k.Star(s)).Difference(touching)
}

// EdgeTets lists the tetrahedra around e in handle order
func (k *Kernel) EdgeTets(e EdgeKey) []TetKey {
	set := &simplex.Set{}
	for _, f := range k.EdgeFaces(e) {
		for _, t := range k.FaceTets(f) {
			set.Insert(t)
		}
	}
	return set.Tets()
}

// NodeTets lists the tetrahedra around n in handle order
func (k *Kernel) NodeTets(n NodeKey) []TetKey {
	return k.Star(n).Tets()
}

// IsBoundaryEdge reports whether a face around e has a single tetrahedron
func (k *Kernel) IsBoundaryEdge(e EdgeKey) bool {
	for _, f := range k.EdgeFaces(e) {
		if len(k.FaceTets(f)) == 1 {
			return true
		}
	}
	return false
}

// IsBoundaryNode reports whether an edge around n is a boundary edge
func (k *Kernel) IsBoundaryNode(n NodeKey) bool {
	for _, e := range k.NodeEdges(n) {
		if k.IsBoundaryEdge(e) {
			return true
		}
	}
	return false
}
