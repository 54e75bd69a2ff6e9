package mesh

import (
	"github.com/notargets/tetcomplex/kernel"
	"github.com/notargets/tetcomplex/simplex"
)

// IsBoundary reports whether a node, edge or face lies on the outer boundary
func (m *Mesh) IsBoundary(s simplex.Simplex) bool {
	return m.k.Flags(s).Has(kernel.Boundary)
}

// IsInterface reports whether a node, edge or face separates two labels, or
// a nonzero label from the outside
func (m *Mesh) IsInterface(s simplex.Simplex) bool {
	return m.k.Flags(s).Has(kernel.Interface)
}

// IsCrossing reports whether a node or edge is a junction of more than two
// interface sheets
func (m *Mesh) IsCrossing(s simplex.Simplex) bool {
	return m.k.Flags(s).Has(kernel.Crossing)
}

func (m *Mesh) Label(t TetKey) int {
	return m.k.Label(t)
}

// SetLabel relabels t and refreshes the flags of its closure
func (m *Mesh) SetLabel(t TetKey, label int) {
	m.k.SetLabel(t, label)
	m.repair(m.k.Closure(t))
}

// RecomputeFlags derives every flag from scratch
func (m *Mesh) RecomputeFlags() {
	all := &simplex.Set{}
	for _, n := range m.k.Nodes() {
		all.Insert(n)
	}
	for _, e := range m.k.Edges() {
		all.Insert(e)
	}
	for _, f := range m.k.Faces() {
		all.Insert(f)
	}
	m.UpdateFlags(all)
}

// UpdateFlags recomputes the flags of the live members of set: faces, then
// edges, then nodes, since each level reads the one below
func (m *Mesh) UpdateFlags(set *simplex.Set) {
	for _, f := range set.Faces() {
		if m.k.Exists(f) {
			m.k.SetFlags(f, m.faceFlags(f))
		}
	}
	for _, e := range set.Edges() {
		if m.k.Exists(e) {
			m.k.SetFlags(e, m.edgeFlags(e))
		}
	}
	for _, n := range set.Nodes() {
		if m.k.Exists(n) {
			m.k.SetFlags(n, m.nodeFlags(n))
		}
	}
}

func (m *Mesh) faceFlags(f FaceKey) (fl kernel.Flags) {
	tets := m.k.FaceTets(f)
	switch len(tets) {
	case 1:
		fl |= kernel.Boundary
		if m.k.Label(tets[0]) != 0 {
			fl |= kernel.Interface
		}
	case 2:
		if m.k.Label(tets[0]) != m.k.Label(tets[1]) {
			fl |= kernel.Interface
		}
	}
	return
}

func (m *Mesh) edgeFlags(e EdgeKey) (fl kernel.Flags) {
	var nInterface int
	for _, f := range m.k.EdgeFaces(e) {
		ff := m.k.Flags(f)
		fl |= ff & (kernel.Boundary | kernel.Interface)
		if ff.Has(kernel.Interface) {
			nInterface++
		}
	}
	if nInterface > 2 {
		fl |= kernel.Crossing
	}
	return
}

func (m *Mesh) nodeFlags(n NodeKey) (fl kernel.Flags) {
	for _, e := range m.k.NodeEdges(n) {
		fl |= m.k.Flags(e)
	}
	if fl.Has(kernel.Interface) && !fl.Has(kernel.Crossing) && m.labelComponents(n) > 2 {
		fl |= kernel.Crossing
	}
	return
}

// labelComponents counts the groups of tetrahedra around n connected
// through shared faces with equal labels
func (m *Mesh) labelComponents(n NodeKey) int {
	star := m.k.Star(n)
	tets := star.Tets()
	visited := make(map[TetKey]bool, len(tets))
	var count int
	for _, seed := range tets {
		if visited[seed] {
			continue
		}
		count++
		visited[seed] = true
		label := m.k.Label(seed)
		work := []TetKey{seed}
		for len(work) > 0 {
			t := work[len(work)-1]
			work = work[:len(work)-1]
			for _, f := range m.k.TetFaces(t) {
				if !star.Contains(f) {
					continue
				}
				nb := m.GetTet(t, f)
				if nb.IsValid() && !visited[nb] && m.k.Label(nb) == label {
					visited[nb] = true
					work = append(work, nb)
				}
			}
		}
	}
	return count
}
