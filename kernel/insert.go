package kernel

import (
	"slices"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/tetcomplex/element"
	"github.com/notargets/tetcomplex/simplex"
)

func (k *Kernel) InsertNode(p r3.Vec) NodeKey {
	return NodeKey(k.nodes.alloc(nodeRec{pos: p}))
}

// InsertEdge links a new edge between two distinct live nodes
func (k *Kernel) InsertEdge(n1, n2 NodeKey) EdgeKey {
	if n1 == n2 || !k.Exists(n1) || !k.Exists(n2) {
		glog.V(2).Infof("insert edge rejected: %v %v", n1, n2)
		return 0
	}
	return k.newEdge(n1, n2)
}

// InsertFace links a new face bounded by three edges forming a triangle.
// The winding follows e1, then the edge sharing e1's second node.
func (k *Kernel) InsertFace(e1, e2, e3 EdgeKey) FaceKey {
	in := [3]EdgeKey{e1, e2, e3}
	var nodes [2][2]NodeKey
	for i := range 2 {
		if !k.Exists(in[i]) {
			return 0
		}
		nodes[i] = k.EdgeNodes(in[i])
	}
	if !k.Exists(e3) || e1 == e2 || e2 == e3 || e1 == e3 {
		return 0
	}
	n0, n1 := nodes[0][0], nodes[0][1]
	var n2 NodeKey
	for _, n := range nodes[1] {
		if n != n0 && n != n1 {
			n2 = n
		}
	}
	fn := [3]NodeKey{n0, n1, n2}
	var fe [3]EdgeKey
	for i := range 3 {
		a, b := fn[i], fn[(i+1)%3]
		for _, e := range in {
			en := k.EdgeNodes(e)
			if (en[0] == a && en[1] == b) || (en[0] == b && en[1] == a) {
				fe[i] = e
			}
		}
		if !fe[i].IsValid() {
			glog.V(2).Infof("insert face rejected: edges %v do not form a triangle", in)
			return 0
		}
	}
	return k.newFace(fn, fe)
}

// InsertTetrahedron links a new tetrahedron bounded by four faces. Node order
// assumes f1's winding points out of the new tetrahedron; callers check the
// orientation with SignedVolume and invert when needed.
func (k *Kernel) InsertTetrahedron(f1, f2, f3, f4 FaceKey, label int) TetKey {
	in := [4]FaceKey{f1, f2, f3, f4}
	for i, f := range in {
		if !k.Exists(f) || slices.Contains(in[:i], f) {
			return 0
		}
	}
	base := k.FaceNodes(f1)
	var apex NodeKey
	for _, n := range k.FaceNodes(f2) {
		if !slices.Contains(base[:], n) {
			apex = n
		}
	}
	if !apex.IsValid() {
		return 0
	}
	tr := tetRec{nodes: [4]NodeKey{base[0], base[2], base[1], apex}, label: label}
	for i, fv := range element.TetFaceVertices {
		want := [3]NodeKey{tr.nodes[fv[0]], tr.nodes[fv[1]], tr.nodes[fv[2]]}
		for _, f := range in {
			if sameNodes(k.FaceNodes(f), want) {
				tr.faces[i] = f
			}
		}
		if !tr.faces[i].IsValid() {
			glog.V(2).Infof("insert tetrahedron rejected: faces %v do not close", in)
			return 0
		}
	}
	return k.newTet(tr)
}

func (k *Kernel) newEdge(n1, n2 NodeKey) EdgeKey {
	e := EdgeKey(k.edges.alloc(edgeRec{nodes: [2]NodeKey{n1, n2}}))
	for _, n := range []NodeKey{n1, n2} {
		r := k.nodes.get(simplex.Handle(n))
		r.edges = append(r.edges, e)
	}
	return e
}

func (k *Kernel) newFace(nodes [3]NodeKey, edges [3]EdgeKey) FaceKey {
	f := FaceKey(k.faces.alloc(faceRec{nodes: nodes, edges: edges}))
	for _, e := range edges {
		r := k.edges.get(simplex.Handle(e))
		r.faces = append(r.faces, f)
	}
	return f
}

func (k *Kernel) newTet(tr tetRec) TetKey {
	t := TetKey(k.tets.alloc(tr))
	for _, f := range tr.faces {
		r := k.faces.get(simplex.Handle(f))
		r.tets = append(r.tets, t)
	}
	return t
}

func (k *Kernel) findEdge(a, b NodeKey) EdgeKey {
	r := k.nodes.get(simplex.Handle(a))
	if r == nil || a == b {
		return 0
	}
	for _, e := range r.edges {
		en := k.EdgeNodes(e)
		if en[0] == b || en[1] == b {
			return e
		}
	}
	return 0
}

func (k *Kernel) findFace(a, b, c NodeKey) FaceKey {
	e := k.findEdge(a, b)
	if !e.IsValid() {
		return 0
	}
	for _, f := range k.edges.get(simplex.Handle(e)).faces {
		if fn := k.FaceNodes(f); slices.Contains(fn[:], c) {
			return f
		}
	}
	return 0
}

func (k *Kernel) edgeOf(a, b NodeKey) EdgeKey {
	if e := k.findEdge(a, b); e.IsValid() {
		return e
	}
	return k.newEdge(a, b)
}

// faceOf finds the face on nodes, creating it with the given winding
func (k *Kernel) faceOf(nodes [3]NodeKey) FaceKey {
	if f := k.findFace(nodes[0], nodes[1], nodes[2]); f.IsValid() {
		return f
	}
	return k.newFace(nodes, [3]EdgeKey{
		k.edgeOf(nodes[0], nodes[1]),
		k.edgeOf(nodes[1], nodes[2]),
		k.edgeOf(nodes[2], nodes[0]),
	})
}

// tetFromNodes creates a tetrahedron on existing nodes, reusing any edges
// and faces already present. New faces are wound outward of the tetrahedron.
func (k *Kernel) tetFromNodes(nodes [4]NodeKey, label int) TetKey {
	tr := tetRec{nodes: nodes, label: label}
	for i, fv := range element.TetFaceVertices {
		tr.faces[i] = k.faceOf([3]NodeKey{nodes[fv[0]], nodes[fv[1]], nodes[fv[2]]})
	}
	return k.newTet(tr)
}

func sameNodes[N comparable](a, b [3]N) bool {
	for _, n := range a {
		if !slices.Contains(b[:], n) {
			return false
		}
	}
	return true
}

// Remove logically deletes a simplex and detaches it from its boundary and
// co-boundary. Co-simplices keep an invalid slot where s was referenced.
func (k *Kernel) Remove(s simplex.Simplex) bool {
	key := s.Key()
	switch key.Dim {
	case element.D0:
		return k.removeNode(NodeKey(key.Handle))
	case element.D1:
		return k.removeEdge(EdgeKey(key.Handle))
	case element.D2:
		return k.removeFace(FaceKey(key.Handle))
	case element.D3:
		return k.removeTet(TetKey(key.Handle))
	}
	return false
}

func (k *Kernel) removeTet(t TetKey) bool {
	r := k.tets.get(simplex.Handle(t))
	if r == nil {
		return false
	}
	for _, f := range r.faces {
		if fr := k.faces.get(simplex.Handle(f)); fr != nil {
			fr.tets = remove(fr.tets, t)
		}
	}
	return k.tets.kill(simplex.Handle(t))
}

func (k *Kernel) removeFace(f FaceKey) bool {
	r := k.faces.get(simplex.Handle(f))
	if r == nil {
		return false
	}
	for _, e := range r.edges {
		if er := k.edges.get(simplex.Handle(e)); er != nil {
			er.faces = remove(er.faces, f)
		}
	}
	for _, t := range r.tets {
		if tr := k.tets.get(simplex.Handle(t)); tr != nil {
			substitute(tr.faces[:], f, 0)
		}
	}
	return k.faces.kill(simplex.Handle(f))
}

func (k *Kernel) removeEdge(e EdgeKey) bool {
	r := k.edges.get(simplex.Handle(e))
	if r == nil {
		return false
	}
	for _, n := range r.nodes {
		if nr := k.nodes.get(simplex.Handle(n)); nr != nil {
			nr.edges = remove(nr.edges, e)
		}
	}
	for _, f := range r.faces {
		if fr := k.faces.get(simplex.Handle(f)); fr != nil {
			substitute(fr.edges[:], e, 0)
		}
	}
	return k.edges.kill(simplex.Handle(e))
}

func (k *Kernel) removeNode(n NodeKey) bool {
	if !k.Exists(n) {
		return false
	}
	star := k.Star(n)
	for _, t := range star.Tets() {
		tr := k.tets.get(simplex.Handle(t))
		substitute(tr.nodes[:], n, 0)
	}
	for _, f := range star.Faces() {
		fr := k.faces.get(simplex.Handle(f))
		substitute(fr.nodes[:], n, 0)
	}
	for _, e := range star.Edges() {
		er := k.edges.get(simplex.Handle(e))
		substitute(er.nodes[:], n, 0)
	}
	return k.nodes.kill(simplex.Handle(n))
}

// Merge fuses drop into keep, redirecting all adjacency of drop to keep.
// Edges and faces must span the same nodes once merged; nodes are merged by
// substitution in every simplex of drop's star. Tetrahedra cannot be merged.
func (k *Kernel) Merge(keep, drop simplex.Simplex) error {
	kk, dk := keep.Key(), drop.Key()
	if kk.Dim != dk.Dim {
		return errors.Errorf("merge across dimensions: %v into %v", dk, kk)
	}
	if kk == dk {
		return errors.Errorf("merge of %v with itself", kk)
	}
	if !k.Exists(kk) || !k.Exists(dk) {
		return errors.Errorf("merge of missing simplex: %v into %v", dk, kk)
	}
	switch kk.Dim {
	case element.D0:
		k.mergeNodes(NodeKey(kk.Handle), NodeKey(dk.Handle))
	case element.D1:
		return k.mergeEdges(EdgeKey(kk.Handle), EdgeKey(dk.Handle))
	case element.D2:
		return k.mergeFaces(FaceKey(kk.Handle), FaceKey(dk.Handle))
	default:
		return errors.Errorf("tetrahedra cannot be merged: %v into %v", dk, kk)
	}
	return nil
}

func (k *Kernel) mergeNodes(keep, drop NodeKey) {
	star := k.Star(drop)
	for _, t := range star.Tets() {
		tr := k.tets.get(simplex.Handle(t))
		substitute(tr.nodes[:], drop, keep)
	}
	for _, f := range star.Faces() {
		fr := k.faces.get(simplex.Handle(f))
		substitute(fr.nodes[:], drop, keep)
	}
	dr := k.nodes.get(simplex.Handle(drop))
	kr := k.nodes.get(simplex.Handle(keep))
	for _, e := range dr.edges {
		er := k.edges.get(simplex.Handle(e))
		substitute(er.nodes[:], drop, keep)
		if !slices.Contains(kr.edges, e) {
			kr.edges = append(kr.edges, e)
		}
	}
	dr.edges = nil
	k.nodes.kill(simplex.Handle(drop))
}

func (k *Kernel) mergeEdges(keep, drop EdgeKey) error {
	kn, dn := k.EdgeNodes(keep), k.EdgeNodes(drop)
	if !(kn == dn || kn == [2]NodeKey{dn[1], dn[0]}) {
		return errors.Errorf("merge of edges on different nodes: %v %v into %v %v", drop, dn, keep, kn)
	}
	dr := *k.edges.get(simplex.Handle(drop))
	kr := k.edges.get(simplex.Handle(keep))
	for _, f := range dr.faces {
		fr := k.faces.get(simplex.Handle(f))
		substitute(fr.edges[:], drop, keep)
		if !slices.Contains(kr.faces, f) {
			kr.faces = append(kr.faces, f)
		}
	}
	for _, n := range dr.nodes {
		nr := k.nodes.get(simplex.Handle(n))
		nr.edges = remove(nr.edges, drop)
	}
	k.edges.kill(simplex.Handle(drop))
	return nil
}

func (k *Kernel) mergeFaces(keep, drop FaceKey) error {
	kn, dn := k.FaceNodes(keep), k.FaceNodes(drop)
	if !sameNodes(kn, dn) || !sameNodes(dn, kn) {
		return errors.Errorf("merge of faces on different nodes: %v %v into %v %v", drop, dn, keep, kn)
	}
	dr := *k.faces.get(simplex.Handle(drop))
	kr := k.faces.get(simplex.Handle(keep))
	for _, t := range dr.tets {
		tr := k.tets.get(simplex.Handle(t))
		substitute(tr.faces[:], drop, keep)
		if !slices.Contains(kr.tets, t) {
			kr.tets = append(kr.tets, t)
		}
	}
	for _, e := range dr.edges {
		if er := k.edges.get(simplex.Handle(e)); er != nil {
			er.faces = remove(er.faces, drop)
		}
	}
	k.faces.kill(simplex.Handle(drop))
	return nil
}

func remove[K comparable](list []K, k K) []K {
	return slices.DeleteFunc(list, func(x K) bool { return x == k })
}

// substitute replaces every old in s with with
func substitute[K comparable](s []K, old, with K) {
	for i := range s {
		if s[i] == old {
			s[i] = with
		}
	}
}
