package mesh

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/notargets/tetcomplex/element"
)

// Collapse contracts e onto its first node. Returns the surviving node, or
// the invalid key with the mesh unchanged when the contraction is rejected.
func (m *Mesh) Collapse(e EdgeKey) NodeKey {
	if !m.k.Exists(e) {
		return 0
	}
	return m.CollapseTo(e, m.k.EdgeNodes(e)[0])
}

// CollapseTo contracts e onto keep, which must be one of its nodes. The
// contraction is rejected when it breaks the link condition, joins two
// boundary nodes through the interior or inverts a tetrahedron.
func (m *Mesh) CollapseTo(e EdgeKey, keep NodeKey) NodeKey {
	if !m.k.Exists(e) {
		return 0
	}
	n := m.k.EdgeNodes(e)
	drop := n[0]
	if drop == keep {
		drop = n[1]
	}
	if m.k.CollapseEdge(e, keep, drop) != keep {
		glog.V(2).Infof("collapse of %v onto %v rejected", e, keep)
		return 0
	}
	m.repair(m.k.ClosureOf(m.k.Star(keep)))
	return keep
}

type collapsePair[K comparable] struct {
	keep, drop K
}

// CollapseMerge contracts e onto its first node by explicit merging. The
// tetrahedra and faces around e are removed and each simplex on the dropped
// side is merged into its partner on the kept side: the node, then the
// edges, then the faces. Inverted tetrahedra around the survivor are
// reoriented and the whole mesh is checked before returning.
func (m *Mesh) CollapseMerge(e EdgeKey) (NodeKey, error) {
	if !m.k.Exists(e) {
		return 0, errors.Errorf("collapse of missing edge %v", e)
	}
	n := m.k.EdgeNodes(e)
	keep, drop := n[0], n[1]
	common := m.k.Link(keep).Intersection(m.k.Link(drop))
	if !common.Equal(m.k.Link(e)) {
		return 0, errors.Errorf("collapse of %v violates the link condition", e)
	}
	around := m.k.Star(keep).Union(m.k.Star(drop))
	if around.Len(element.D3) == len(m.k.EdgeTets(e)) {
		return 0, errors.Errorf("collapse of %v leaves no tetrahedron", e)
	}

	var edges []collapsePair[EdgeKey]
	for _, f := range m.EdgeFaces(e) {
		x := m.GetFaceApex(f, e)
		edges = append(edges, collapsePair[EdgeKey]{m.GetEdge(keep, x), m.GetEdge(drop, x)})
	}
	var faces []collapsePair[FaceKey]
	tets := m.k.EdgeTets(e)
	for _, t := range tets {
		opp := m.k.Closure(t).Difference(m.k.Closure(e)).Nodes()
		faces = append(faces, collapsePair[FaceKey]{
			m.GetFace(keep, opp[0], opp[1]),
			m.GetFace(drop, opp[0], opp[1]),
		})
	}

	for _, t := range tets {
		m.k.Remove(t)
	}
	for _, f := range m.k.EdgeFaces(e) {
		m.k.Remove(f)
	}
	m.k.Remove(e)

	if err := m.k.Merge(keep, drop); err != nil {
		return 0, errors.Wrapf(err, "collapse of %v", e)
	}
	for _, p := range edges {
		if err := m.k.Merge(p.keep, p.drop); err != nil {
			return 0, errors.Wrapf(err, "collapse of %v", e)
		}
	}
	for _, p := range faces {
		if err := m.k.Merge(p.keep, p.drop); err != nil {
			return 0, errors.Wrapf(err, "collapse of %v", e)
		}
	}
	m.sweep(keep)

	if n := m.orientStar(keep); n > 0 {
		glog.V(2).Infof("collapse of %v reoriented %d tetrahedra", e, n)
	}
	m.repair(m.k.ClosureOf(m.k.Star(keep)))
	if err := m.ValidityCheck(); err != nil {
		return 0, errors.Wrapf(err, "collapse of %v", e)
	}
	return keep, nil
}

// sweep removes the simplices around n left without co-boundary
func (m *Mesh) sweep(n NodeKey) {
	star := m.k.ClosureOf(m.k.Star(n))
	for _, f := range star.Faces() {
		if len(m.k.FaceTets(f)) == 0 {
			m.k.Remove(f)
		}
	}
	for _, e := range star.Edges() {
		if len(m.k.EdgeFaces(e)) == 0 {
			m.k.Remove(e)
		}
	}
	for _, x := range star.Nodes() {
		if len(m.k.NodeEdges(x)) == 0 {
			m.k.Remove(x)
		}
	}
}
