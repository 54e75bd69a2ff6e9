package mesh

// IsInverted reports whether the stored node order of t has negative volume
func (m *Mesh) IsInverted(t TetKey) bool {
	return m.k.SignedVolume(t) < 0
}

// OrientFace winds a boundary face out of its tetrahedron and an interior
// face out of the tetrahedron with the lower label, so interface normals
// point from low to high label. Equal labels fall back to the lower handle.
func (m *Mesh) OrientFace(f FaceKey) {
	tets := m.FaceTets(f)
	switch len(tets) {
	case 1:
		m.k.OrientFaceOutward(f, tets[0])
	case 2:
		t := tets[0]
		if m.k.Label(tets[1]) < m.k.Label(t) {
			t = tets[1]
		}
		m.k.OrientFaceOutward(f, t)
	default:
		m.assert(false, "face %v has %d tetrahedra", f, len(tets))
	}
}

// orientStar corrects every inverted tetrahedron around n
func (m *Mesh) orientStar(n NodeKey) (inverted int) {
	for _, t := range m.k.NodeTets(n) {
		if m.IsInverted(t) {
			m.k.InvertOrientation(t)
			inverted++
		}
	}
	return
}
