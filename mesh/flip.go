package mesh

import (
	"github.com/golang/glog"
)

// Flip32 replaces the three tetrahedra around e by two sharing the face
// spanned by the link of e. The edge is split and the new node collapsed
// onto the first link node, which is returned. Returns the invalid key when
// e is not surrounded by exactly three tetrahedra or the collapse is
// rejected; a rejected collapse leaves the split in place.
func (m *Mesh) Flip32(e EdgeKey) NodeKey {
	if !m.k.Exists(e) {
		return 0
	}
	m.assert(!m.IsBoundary(e) && !m.IsInterface(e), "flip 3-2 on boundary or interface edge %v", e)
	link := m.k.Link(e).Nodes()
	if len(m.k.EdgeTets(e)) != 3 || len(link) != 3 {
		glog.V(2).Infof("flip 3-2 of %v rejected: %d link nodes", e, len(link))
		return 0
	}
	return m.splitAndCollapse("3-2", m.Split(e), link[0])
}

// Flip23 replaces the two tetrahedra on f by three around the edge joining
// their apices. The face is split and the new node collapsed onto the first
// apex, which is returned. The new tetrahedra carry the label of the
// tetrahedron opposite that apex. Returns the invalid key when f does not
// have exactly two apices or the collapse is rejected; a rejected collapse
// leaves the split in place.
func (m *Mesh) Flip23(f FaceKey) NodeKey {
	if !m.k.Exists(f) {
		return 0
	}
	m.assert(!m.IsBoundary(f), "flip 2-3 on boundary face %v", f)
	apices := m.GetApices(f)
	if len(m.k.FaceTets(f)) != 2 || len(apices) != 2 {
		glog.V(2).Infof("flip 2-3 of %v rejected: %d apices", f, len(apices))
		return 0
	}
	return m.splitAndCollapse("2-3", m.SplitFace(f), apices[0])
}

// Flip44 swaps the edge shared by f1 and f2 for the diagonal joining their
// apices. The shared edge is split and the new node collapsed onto the apex
// of f1, which is returned. f1 and f2 must agree on boundary and interface
// status. Returns the invalid key when the faces share no edge or their
// apices are already joined, and when the collapse is rejected; a rejected
// collapse leaves the split in place.
func (m *Mesh) Flip44(f1, f2 FaceKey) NodeKey {
	e := m.GetSharedEdge(f1, f2)
	if !e.IsValid() {
		return 0
	}
	m.assert(m.IsBoundary(f1) == m.IsBoundary(f2) && m.IsInterface(f1) == m.IsInterface(f2),
		"flip of faces %v and %v with different boundary or interface status", f1, f2)
	apex1, apex2 := m.GetFaceApex(f1, e), m.GetFaceApex(f2, e)
	if !apex1.IsValid() || !apex2.IsValid() || m.GetEdge(apex1, apex2).IsValid() {
		glog.V(2).Infof("flip of %v rejected: apices %v %v already joined", e, apex1, apex2)
		return 0
	}
	return m.splitAndCollapse("4-4", m.Split(e), apex1)
}

// Flip22 is Flip44 on an edge with two tetrahedra
func (m *Mesh) Flip22(f1, f2 FaceKey) NodeKey {
	return m.Flip44(f1, f2)
}

func (m *Mesh) splitAndCollapse(name string, mid, target NodeKey) NodeKey {
	if !mid.IsValid() {
		return 0
	}
	e := m.GetEdge(target, mid)
	if !e.IsValid() {
		glog.Warningf("flip %s: no edge from %v to %v after split", name, mid, target)
		return 0
	}
	if n := m.CollapseTo(e, target); n != target {
		glog.Warningf("flip %s: collapse of %v onto %v failed, split node %v remains", name, e, target, mid)
		return 0
	}
	return target
}
