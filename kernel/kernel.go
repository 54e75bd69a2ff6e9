// Package kernel owns the simplex records of a tetrahedral complex and their
// boundary / co-boundary adjacency. It offers the primitive create, remove,
// merge, subdivide and contract operations that the mesh package composes
// into invariant preserving operators.
//
// Boundary relations are: edge → 2 nodes, face → 3 edges (and the 3 nodes of
// its winding), tetrahedron → 4 faces (and its 4 positively ordered nodes).
// Co-boundary relations run the other way: node → edges, edge → faces,
// face → tetrahedra.
package kernel

import (
	"slices"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/tetcomplex/element"
	"github.com/notargets/tetcomplex/simplex"
	"github.com/notargets/tetcomplex/utils"
)

type (
	NodeKey = simplex.NodeKey
	EdgeKey = simplex.EdgeKey
	FaceKey = simplex.FaceKey
	TetKey  = simplex.TetKey
)

// Flags classify nodes, edges and faces
type Flags uint8

const (
	Boundary Flags = 1 << iota
	Interface
	Crossing
)

func (f Flags) Has(o Flags) bool {
	return f&o == o
}

type nodeRec struct {
	pos   r3.Vec
	edges []EdgeKey
	flags Flags
}

type edgeRec struct {
	nodes [2]NodeKey
	faces []FaceKey
	flags Flags
}

// faceRec edges[i] joins nodes[i] and nodes[(i+1)%3]
type faceRec struct {
	nodes [3]NodeKey
	edges [3]EdgeKey
	tets  []TetKey
	flags Flags
}

// tetRec faces[i] spans the nodes of element.TetFaceVertices[i]
type tetRec struct {
	nodes [4]NodeKey
	faces [4]FaceKey
	label int
}

// Kernel is the incidence store. It is not safe for concurrent use.
type Kernel struct {
	nodes store[nodeRec]
	edges store[edgeRec]
	faces store[faceRec]
	tets  store[tetRec]
}

func New() *Kernel {
	return &Kernel{}
}

// Build inserts points as nodes and EToV as positively oriented tetrahedra.
// Returned keys are parallel to points and EToV.
func (k *Kernel) Build(points []r3.Vec, EToV [][]int, labels []int) (nodes []NodeKey, tets []TetKey, err error) {
	if labels != nil && len(labels) != len(EToV) {
		return nil, nil, errors.Errorf("%d labels for %d tetrahedra", len(labels), len(EToV))
	}
	fc, err := utils.NewFaceConnector(EToV)
	if err != nil {
		return nil, nil, errors.Wrap(err, "face connectivity")
	}
	if fc.Nv > len(points) {
		return nil, nil, errors.Errorf("elements reference vertex %d, only %d points", fc.Nv-1, len(points))
	}
	if err = fc.Verify(); err != nil {
		return nil, nil, errors.Wrap(err, "face connectivity")
	}
	glog.V(1).Infof("connectivity of %d tetrahedra: %d faces, %d on the boundary",
		len(EToV), len(fc.Faces), fc.NumBoundaryFaces())
	for i, elem := range EToV {
		v := element.SignedVolume(points[elem[0]], points[elem[1]], points[elem[2]], points[elem[3]])
		if v <= 0 {
			return nil, nil, errors.Errorf("tetrahedron %d %v has non-positive volume %g", i, elem, v)
		}
	}

	nodes = make([]NodeKey, len(points))
	for i, p := range points {
		nodes[i] = k.InsertNode(p)
	}

	edgeMap := make(map[[2]int]EdgeKey)
	edgeOf := func(a, b int) EdgeKey {
		key := [2]int{min(a, b), max(a, b)}
		if e, ok := edgeMap[key]; ok {
			return e
		}
		e := k.newEdge(nodes[a], nodes[b])
		edgeMap[key] = e
		return e
	}

	faces := make([]FaceKey, len(fc.Faces))
	tets = make([]TetKey, len(EToV))
	for t, elem := range EToV {
		var tr tetRec
		for i := range 4 {
			tr.nodes[i] = nodes[elem[i]]
		}
		for f := range 4 {
			gf := fc.EToGF[t][f]
			if !faces[gf].IsValid() {
				var fn [3]int
				for i := range 3 {
					fn[i] = elem[element.TetFaceVertices[f][i]]
				}
				faces[gf] = k.newFace(
					[3]NodeKey{nodes[fn[0]], nodes[fn[1]], nodes[fn[2]]},
					[3]EdgeKey{edgeOf(fn[0], fn[1]), edgeOf(fn[1], fn[2]), edgeOf(fn[2], fn[0])})
			}
			tr.faces[f] = faces[gf]
		}
		if labels != nil {
			tr.label = labels[t]
		}
		tets[t] = k.newTet(tr)
	}
	return nodes, tets, nil
}

// Exists reports whether s refers to a live simplex
func (k *Kernel) Exists(s simplex.Simplex) bool {
	key := s.Key()
	switch key.Dim {
	case element.D0:
		return k.nodes.get(key.Handle) != nil
	case element.D1:
		return k.edges.get(key.Handle) != nil
	case element.D2:
		return k.faces.get(key.Handle) != nil
	case element.D3:
		return k.tets.get(key.Handle) != nil
	}
	return false
}

func (k *Kernel) NumNodes() int { return k.nodes.len() }
func (k *Kernel) NumEdges() int { return k.edges.len() }
func (k *Kernel) NumFaces() int { return k.faces.len() }
func (k *Kernel) NumTets() int  { return k.tets.len() }

func (k *Kernel) Nodes() []NodeKey { return keysOf[NodeKey](k.nodes.handles()) }
func (k *Kernel) Edges() []EdgeKey { return keysOf[EdgeKey](k.edges.handles()) }
func (k *Kernel) Faces() []FaceKey { return keysOf[FaceKey](k.faces.handles()) }
func (k *Kernel) Tets() []TetKey   { return keysOf[TetKey](k.tets.handles()) }

func keysOf[K ~uint64](hs []simplex.Handle) []K {
	out := make([]K, len(hs))
	for i, h := range hs {
		out[i] = K(h)
	}
	return out
}

func (k *Kernel) Position(n NodeKey) r3.Vec {
	if r := k.nodes.get(simplex.Handle(n)); r != nil {
		return r.pos
	}
	return r3.Vec{}
}

func (k *Kernel) SetPosition(n NodeKey, p r3.Vec) {
	if r := k.nodes.get(simplex.Handle(n)); r != nil {
		r.pos = p
	}
}

func (k *Kernel) Label(t TetKey) int {
	if r := k.tets.get(simplex.Handle(t)); r != nil {
		return r.label
	}
	return 0
}

func (k *Kernel) SetLabel(t TetKey, label int) {
	if r := k.tets.get(simplex.Handle(t)); r != nil {
		r.label = label
	}
}

// Flags of a node, edge or face. Tetrahedra carry no flags.
func (k *Kernel) Flags(s simplex.Simplex) Flags {
	key := s.Key()
	switch key.Dim {
	case element.D0:
		if r := k.nodes.get(key.Handle); r != nil {
			return r.flags
		}
	case element.D1:
		if r := k.edges.get(key.Handle); r != nil {
			return r.flags
		}
	case element.D2:
		if r := k.faces.get(key.Handle); r != nil {
			return r.flags
		}
	}
	return 0
}

func (k *Kernel) SetFlags(s simplex.Simplex, f Flags) {
	key := s.Key()
	switch key.Dim {
	case element.D0:
		if r := k.nodes.get(key.Handle); r != nil {
			r.flags = f
		}
	case element.D1:
		if r := k.edges.get(key.Handle); r != nil {
			r.flags = f
		}
	case element.D2:
		if r := k.faces.get(key.Handle); r != nil {
			r.flags = f
		}
	}
}

func (k *Kernel) EdgeNodes(e EdgeKey) (nodes [2]NodeKey) {
	if r := k.edges.get(simplex.Handle(e)); r != nil {
		nodes = r.nodes
	}
	return
}

// FaceNodes in winding order
func (k *Kernel) FaceNodes(f FaceKey) (nodes [3]NodeKey) {
	if r := k.faces.get(simplex.Handle(f)); r != nil {
		nodes = r.nodes
	}
	return
}

// FaceEdges in winding order, edge i joins FaceNodes i and i+1
func (k *Kernel) FaceEdges(f FaceKey) (edges [3]EdgeKey) {
	if r := k.faces.get(simplex.Handle(f)); r != nil {
		edges = r.edges
	}
	return
}

// TetNodes in positive orientation order
func (k *Kernel) TetNodes(t TetKey) (nodes [4]NodeKey) {
	if r := k.tets.get(simplex.Handle(t)); r != nil {
		nodes = r.nodes
	}
	return
}

// TetFaces where face i spans element.TetFaceVertices[i] of TetNodes
func (k *Kernel) TetFaces(t TetKey) (faces [4]FaceKey) {
	if r := k.tets.get(simplex.Handle(t)); r != nil {
		faces = r.faces
	}
	return
}

func (k *Kernel) NodeEdges(n NodeKey) []EdgeKey {
	if r := k.nodes.get(simplex.Handle(n)); r != nil {
		return slices.Clone(r.edges)
	}
	return nil
}

func (k *Kernel) EdgeFaces(e EdgeKey) []FaceKey {
	if r := k.edges.get(simplex.Handle(e)); r != nil {
		return slices.Clone(r.faces)
	}
	return nil
}

func (k *Kernel) FaceTets(f FaceKey) []TetKey {
	if r := k.faces.get(simplex.Handle(f)); r != nil {
		return slices.Clone(r.tets)
	}
	return nil
}

// Boundary lists the (d-1)-simplices bounding s, in stored order
func (k *Kernel) Boundary(s simplex.Simplex) []simplex.Key {
	key := s.Key()
	var out []simplex.Key
	switch key.Dim {
	case element.D1:
		for _, n := range k.EdgeNodes(EdgeKey(key.Handle)) {
			out = appendValid(out, n)
		}
	case element.D2:
		for _, e := range k.FaceEdges(FaceKey(key.Handle)) {
			out = appendValid(out, e)
		}
	case element.D3:
		for _, f := range k.TetFaces(TetKey(key.Handle)) {
			out = appendValid(out, f)
		}
	}
	return out
}

// CoBoundary lists the (d+1)-simplices incident on s
func (k *Kernel) CoBoundary(s simplex.Simplex) []simplex.Key {
	key := s.Key()
	var out []simplex.Key
	switch key.Dim {
	case element.D0:
		if r := k.nodes.get(key.Handle); r != nil {
			for _, e := range r.edges {
				out = appendValid(out, e)
			}
		}
	case element.D1:
		if r := k.edges.get(key.Handle); r != nil {
			for _, f := range r.faces {
				out = appendValid(out, f)
			}
		}
	case element.D2:
		if r := k.faces.get(key.Handle); r != nil {
			for _, t := range r.tets {
				out = appendValid(out, t)
			}
		}
	}
	return out
}

func appendValid(out []simplex.Key, s simplex.Simplex) []simplex.Key {
	if key := s.Key(); key.IsValid() {
		out = append(out, key)
	}
	return out
}

// SignedVolume of t in its stored node order
func (k *Kernel) SignedVolume(t TetKey) float64 {
	n := k.TetNodes(t)
	return element.SignedVolume(k.Position(n[0]), k.Position(n[1]), k.Position(n[2]), k.Position(n[3]))
}

// GarbageCollect physically reclaims removed records and returns how many
// slots were recycled. Handles to removed simplices stay invalid afterwards.
func (k *Kernel) GarbageCollect() int {
	return k.nodes.collect() + k.edges.collect() + k.faces.collect() + k.tets.collect()
}
