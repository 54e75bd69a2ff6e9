package mesh

import (
	"slices"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/tetcomplex/element"
)

// ValidityCheck walks every tetrahedron and verifies the incidence relations
// of its closure, the boundary flags of its faces and its orientation.
// Returns an error describing the first violation found.
func (m *Mesh) ValidityCheck() error {
	tets := m.k.Tets()
	glog.V(1).Infof("validity check of %d tetrahedra", len(tets))
	for _, t := range tets {
		if err := m.checkTet(t); err != nil {
			return errors.Wrapf(err, "tetrahedron %v", t)
		}
	}
	return nil
}

func (m *Mesh) checkTet(t TetKey) error {
	if !m.k.Exists(t) {
		return errors.New("does not exist")
	}
	faces := m.k.TetFaces(t)
	for i, f := range faces {
		if !m.k.Exists(f) {
			return errors.Errorf("face %d (%v) does not exist", i, f)
		}
		if err := m.checkFace(f, t); err != nil {
			return errors.Wrapf(err, "face %v", f)
		}
		for _, g := range faces[i+1:] {
			if f == g || !m.GetSharedEdge(f, g).IsValid() {
				return errors.Errorf("faces %v and %v are not adjacent", f, g)
			}
		}
	}
	if n := len(m.TetsEdges([]TetKey{t})); n != 6 {
		return errors.Errorf("%d edges", n)
	}
	if n := len(m.k.Closure(t).Nodes()); n != element.D3.NumVertices() {
		return errors.Errorf("%d nodes", n)
	}
	if v := m.Volume(t); v <= 0 {
		return errors.Errorf("volume %g", v)
	}
	return nil
}

func (m *Mesh) checkFace(f FaceKey, t TetKey) error {
	tets := m.k.FaceTets(f)
	if len(tets) < 1 || len(tets) > 2 {
		return errors.Errorf("%d tetrahedra", len(tets))
	}
	if !slices.Contains(tets, t) {
		return errors.New("co-boundary misses the tetrahedron")
	}
	if m.IsBoundary(f) != (len(tets) == 1) {
		return errors.Errorf("boundary flag %v with %d tetrahedra", m.IsBoundary(f), len(tets))
	}
	if a := m.Area(f); !(a > 0) {
		return errors.Errorf("area %g", a)
	}
	edges := m.k.FaceEdges(f)
	for i, e := range edges {
		if !m.k.Exists(e) {
			return errors.Errorf("edge %d (%v) does not exist", i, e)
		}
		if !slices.Contains(m.k.EdgeFaces(e), f) {
			return errors.Errorf("edge %v co-boundary misses the face", e)
		}
		for _, g := range edges[i+1:] {
			if e == g || !m.IsNeighbour(e, g) {
				return errors.Errorf("edges %v and %v are not adjacent", e, g)
			}
		}
		nodes := m.k.EdgeNodes(e)
		for _, n := range nodes {
			if !m.k.Exists(n) {
				return errors.Errorf("edge %v node %v does not exist", e, n)
			}
			if !slices.Contains(m.k.NodeEdges(n), e) {
				return errors.Errorf("node %v co-boundary misses edge %v", n, e)
			}
		}
		if nodes[0] == nodes[1] || !(m.Length(e) > 0) {
			return errors.Errorf("edge %v is degenerate", e)
		}
	}
	return nil
}
