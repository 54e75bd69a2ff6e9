package kernel

import (
	"slices"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/tetcomplex/element"
	"github.com/notargets/tetcomplex/simplex"
)

type tetSpec struct {
	nodes  [4]NodeKey
	label  int
	parent TetKey
}

// replaceTetrahedra creates the tetrahedra of specs, removes old, then
// removes every face, edge and node left without co-boundary
func (k *Kernel) replaceTetrahedra(old []TetKey, specs []tetSpec) []TetKey {
	created := make([]TetKey, len(specs))
	for i, sp := range specs {
		created[i] = k.tetFromNodes(sp.nodes, sp.label)
	}
	var faces []FaceKey
	for _, t := range old {
		f := k.TetFaces(t)
		faces = append(faces, f[:]...)
		k.removeTet(t)
	}
	k.sweep(faces)
	return created
}

func (k *Kernel) sweep(faces []FaceKey) {
	var edges []EdgeKey
	for _, f := range faces {
		r := k.faces.get(simplex.Handle(f))
		if r == nil || len(r.tets) > 0 {
			continue
		}
		edges = append(edges, r.edges[:]...)
		k.removeFace(f)
	}
	var nodes []NodeKey
	for _, e := range edges {
		r := k.edges.get(simplex.Handle(e))
		if r == nil || len(r.faces) > 0 {
			continue
		}
		nodes = append(nodes, r.nodes[:]...)
		k.removeEdge(e)
	}
	for _, n := range nodes {
		r := k.nodes.get(simplex.Handle(n))
		if r == nil || len(r.edges) > 0 {
			continue
		}
		k.removeNode(n)
	}
}

func (k *Kernel) splitTets(tets []TetKey, at r3.Vec, corners []NodeKey) (NodeKey, map[TetKey]TetKey) {
	if len(tets) == 0 {
		return 0, nil
	}
	m := k.InsertNode(at)
	var specs []tetSpec
	for _, t := range tets {
		r := *k.tets.get(simplex.Handle(t))
		for _, c := range corners {
			sp := tetSpec{nodes: r.nodes, parent: t}
			substitute(sp.nodes[:], c, m)
			specs = append(specs, sp)
		}
	}
	created := k.replaceTetrahedra(tets, specs)
	parents := make(map[TetKey]TetKey, len(created))
	for i, t := range created {
		parents[t] = specs[i].parent
	}
	return m, parents
}

// SplitEdge inserts a node at the midpoint of e and bisects every
// tetrahedron around e. Returns the new node and a new → parent tetrahedron
// map; the invalid key when e does not exist. New tetrahedra are unlabeled,
// callers inherit labels through the parent map.
func (k *Kernel) SplitEdge(e EdgeKey) (NodeKey, map[TetKey]TetKey) {
	if !k.Exists(e) {
		return 0, nil
	}
	n := k.EdgeNodes(e)
	at := element.Barycenter(k.Position(n[0]), k.Position(n[1]))
	return k.splitTets(k.EdgeTets(e), at, n[:])
}

// SplitFace inserts a node at the centroid of f and replaces each of the one
// or two tetrahedra on f by three
func (k *Kernel) SplitFace(f FaceKey) (NodeKey, map[TetKey]TetKey) {
	if !k.Exists(f) {
		return 0, nil
	}
	n := k.FaceNodes(f)
	at := element.Barycenter(k.Position(n[0]), k.Position(n[1]), k.Position(n[2]))
	tets := k.FaceTets(f)
	slices.Sort(tets)
	return k.splitTets(tets, at, n[:])
}

// SplitTetrahedron inserts a node at the centroid of t and replaces it by
// four tetrahedra
func (k *Kernel) SplitTetrahedron(t TetKey) (NodeKey, map[TetKey]TetKey) {
	if !k.Exists(t) {
		return 0, nil
	}
	n := k.TetNodes(t)
	at := element.Barycenter(k.Position(n[0]), k.Position(n[1]), k.Position(n[2]), k.Position(n[3]))
	return k.splitTets([]TetKey{t}, at, n[:])
}

// CollapseEdge contracts e by moving drop onto keep. Tetrahedra around e
// vanish, the rest of drop's star is reattached to keep, and simplices left
// without co-boundary are removed. The contraction is rejected, leaving the
// complex untouched, when
//   - e is interior but both of its nodes are on the boundary,
//   - the link condition Lk(keep) ∩ Lk(drop) = Lk(e) fails,
//   - a surviving tetrahedron would not have positive volume,
//   - no tetrahedron would survive.
func (k *Kernel) CollapseEdge(e EdgeKey, keep, drop NodeKey) NodeKey {
	n := k.EdgeNodes(e)
	if keep == drop || !slices.Contains(n[:], keep) || !slices.Contains(n[:], drop) {
		return 0
	}
	if !k.IsBoundaryEdge(e) && k.IsBoundaryNode(keep) && k.IsBoundaryNode(drop) {
		glog.V(2).Infof("collapse %v rejected: interior edge joins two boundary nodes", e)
		return 0
	}
	if !k.linkCondition(e, keep, drop) {
		glog.V(2).Infof("collapse %v rejected: link condition", e)
		return 0
	}
	star := k.NodeTets(drop)
	var specs []tetSpec
	for _, t := range star {
		r := *k.tets.get(simplex.Handle(t))
		if slices.Contains(r.nodes[:], keep) {
			continue
		}
		sp := tetSpec{nodes: r.nodes, label: r.label, parent: t}
		substitute(sp.nodes[:], drop, keep)
		if k.flat(sp.nodes) {
			glog.V(2).Infof("collapse %v rejected: %v would flatten or invert", e, t)
			return 0
		}
		specs = append(specs, sp)
	}
	if len(specs) == 0 {
		glog.V(2).Infof("collapse %v rejected: no tetrahedron would remain", e)
		return 0
	}
	k.replaceTetrahedra(star, specs)
	return keep
}

// minVolumeRatio is the smallest signed volume, relative to the cube of the
// longest edge, of a tetrahedron left by a collapse
const minVolumeRatio = 1e-10

// flat reports whether the tetrahedron on nodes is inverted or too thin to
// tell from a coplanar one
func (k *Kernel) flat(nodes [4]NodeKey) bool {
	var p [4]r3.Vec
	for i, n := range nodes {
		p[i] = k.Position(n)
	}
	var l float64
	for _, ev := range element.TetEdgeVertices {
		l = max(l, element.Length(p[ev[0]], p[ev[1]]))
	}
	return element.SignedVolume(p[0], p[1], p[2], p[3]) <= minVolumeRatio*l*l*l
}

func (k *Kernel) linkCondition(e EdgeKey, a, b NodeKey) bool {
	common := k.Link(a).Intersection(k.Link(b))
	return common.Equal(k.Link(e))
}
