package mesh

import (
	"github.com/golang/glog"
)

// Split inserts a node at the midpoint of e and bisects every tetrahedron
// around e. Children inherit their parent's label. Returns the new node, the
// invalid key when e does not exist.
func (m *Mesh) Split(e EdgeKey) NodeKey {
	if !m.k.Exists(e) {
		return 0
	}
	labels := m.labelsOf(m.k.EdgeTets(e))
	n, parents := m.k.SplitEdge(e)
	return m.finishSplit(n, parents, labels)
}

// SplitFace inserts a node at the centroid of f and splits each tetrahedron
// on f in three
func (m *Mesh) SplitFace(f FaceKey) NodeKey {
	if !m.k.Exists(f) {
		return 0
	}
	labels := m.labelsOf(m.k.FaceTets(f))
	n, parents := m.k.SplitFace(f)
	return m.finishSplit(n, parents, labels)
}

// SplitTet inserts a node at the centroid of t and splits it in four
func (m *Mesh) SplitTet(t TetKey) NodeKey {
	if !m.k.Exists(t) {
		return 0
	}
	labels := m.labelsOf([]TetKey{t})
	n, parents := m.k.SplitTetrahedron(t)
	return m.finishSplit(n, parents, labels)
}

func (m *Mesh) labelsOf(tets []TetKey) map[TetKey]int {
	labels := make(map[TetKey]int, len(tets))
	for _, t := range tets {
		labels[t] = m.k.Label(t)
	}
	return labels
}

func (m *Mesh) finishSplit(n NodeKey, parents map[TetKey]TetKey, labels map[TetKey]int) NodeKey {
	if !n.IsValid() {
		return 0
	}
	for child, parent := range parents {
		m.k.SetLabel(child, labels[parent])
	}
	m.repair(m.k.ClosureOf(m.k.Star(n)))
	glog.V(2).Infof("split: new node %v, %d tetrahedra", n, len(parents))
	return n
}
