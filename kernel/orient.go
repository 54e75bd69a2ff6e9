package kernel

import (
	"slices"

	"github.com/notargets/tetcomplex/element"
	"github.com/notargets/tetcomplex/simplex"
)

// InvertOrientation reverses the node order of t by swapping its first two
// nodes. Faces are reindexed so face i still spans TetFaceVertices[i].
func (k *Kernel) InvertOrientation(t TetKey) bool {
	r := k.tets.get(simplex.Handle(t))
	if r == nil {
		return false
	}
	r.nodes[0], r.nodes[1] = r.nodes[1], r.nodes[0]
	r.faces[2], r.faces[3] = r.faces[3], r.faces[2]
	return true
}

// OutwardWinding is the node order of f that points out of t, the invalid
// triple when f does not bound t
func (k *Kernel) OutwardWinding(f FaceKey, t TetKey) (w [3]NodeKey) {
	r := k.tets.get(simplex.Handle(t))
	if r == nil {
		return
	}
	i := slices.Index(r.faces[:], f)
	if i < 0 {
		return
	}
	fv := element.TetFaceVertices[i]
	return [3]NodeKey{r.nodes[fv[0]], r.nodes[fv[1]], r.nodes[fv[2]]}
}

// IsOutward reports whether the winding of f points out of t
func (k *Kernel) IsOutward(f FaceKey, t TetKey) bool {
	w := k.OutwardWinding(f, t)
	if !w[0].IsValid() {
		return false
	}
	return sameCycle(k.FaceNodes(f), w)
}

// OrientFaceOutward rewinds f so that its normal points out of t
func (k *Kernel) OrientFaceOutward(f FaceKey, t TetKey) bool {
	w := k.OutwardWinding(f, t)
	if !w[0].IsValid() {
		return false
	}
	return k.setWinding(f, w)
}

// OrientFacesConsistently winds every face of t outward of t
func (k *Kernel) OrientFacesConsistently(t TetKey) {
	for _, f := range k.TetFaces(t) {
		k.OrientFaceOutward(f, t)
	}
}

// setWinding stores nodes as the winding of f, reordering its edges to match
func (k *Kernel) setWinding(f FaceKey, nodes [3]NodeKey) bool {
	r := k.faces.get(simplex.Handle(f))
	if r == nil || !sameNodes(r.nodes, nodes) {
		return false
	}
	var edges [3]EdgeKey
	for i := range 3 {
		a, b := nodes[i], nodes[(i+1)%3]
		for _, e := range r.edges {
			n := k.EdgeNodes(e)
			if (n[0] == a && n[1] == b) || (n[0] == b && n[1] == a) {
				edges[i] = e
			}
		}
	}
	r.nodes, r.edges = nodes, edges
	return true
}

// sameCycle reports whether b is a cyclic rotation of a
func sameCycle(a, b [3]NodeKey) bool {
	for s := range 3 {
		if a[0] == b[s] && a[1] == b[(s+1)%3] && a[2] == b[(s+2)%3] {
			return true
		}
	}
	return false
}
