package mesh

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/tetcomplex/element"
	"github.com/notargets/tetcomplex/simplex"
)

// Star is every simplex having s in its boundary, s excluded
func (m *Mesh) Star(s simplex.Simplex) *simplex.Set { return m.k.Star(s) }

// Closure is s and every simplex in its boundary
func (m *Mesh) Closure(s simplex.Simplex) *simplex.Set { return m.k.Closure(s) }

// Link is the set of simplices surrounding s without touching it
func (m *Mesh) Link(s simplex.Simplex) *simplex.Set { return m.k.Link(s) }

func (m *Mesh) StarOf(set *simplex.Set) *simplex.Set    { return m.k.StarOf(set) }
func (m *Mesh) ClosureOf(set *simplex.Set) *simplex.Set { return m.k.ClosureOf(set) }

// EdgeNodes returns the 2 nodes of e
func (m *Mesh) EdgeNodes(e EdgeKey) []NodeKey {
	if !m.k.Exists(e) {
		return nil
	}
	n := m.k.EdgeNodes(e)
	return n[:]
}

// FaceNodes returns the 3 nodes of f in winding order
func (m *Mesh) FaceNodes(f FaceKey) []NodeKey {
	if !m.k.Exists(f) {
		return nil
	}
	n := m.k.FaceNodes(f)
	return n[:]
}

// TetNodes returns the 4 nodes of t ordered with positive orientation
func (m *Mesh) TetNodes(t TetKey) []NodeKey {
	if !m.k.Exists(t) {
		return nil
	}
	n := m.k.TetNodes(t)
	return n[:]
}

func (m *Mesh) NodeEdges(n NodeKey) []EdgeKey {
	edges := m.k.NodeEdges(n)
	slices.Sort(edges)
	return edges
}

// FaceEdges returns the 3 edges of f, edge i joining FaceNodes i and i+1
func (m *Mesh) FaceEdges(f FaceKey) []EdgeKey {
	if !m.k.Exists(f) {
		return nil
	}
	e := m.k.FaceEdges(f)
	return e[:]
}

// TetEdges returns the 6 edges of t joining the node pairs (0,1), (1,2),
// (2,0), (0,3), (1,3), (2,3) of TetNodes
func (m *Mesh) TetEdges(t TetKey) []EdgeKey {
	if !m.k.Exists(t) {
		return nil
	}
	nodes := m.k.TetNodes(t)
	edges := make([]EdgeKey, 0, 6)
	for _, ev := range element.TetEdgeVertices {
		edges = append(edges, m.edgeBetween(nodes[ev[0]], nodes[ev[1]]))
	}
	return edges
}

// TetsEdges returns the distinct edges of tets in handle order
func (m *Mesh) TetsEdges(tets []TetKey) []EdgeKey {
	set := &simplex.Set{}
	for _, t := range tets {
		for _, e := range m.TetEdges(t) {
			set.Insert(e)
		}
	}
	return set.Edges()
}

func (m *Mesh) EdgeFaces(e EdgeKey) []FaceKey {
	faces := m.k.EdgeFaces(e)
	slices.Sort(faces)
	return faces
}

// TetFaces returns the 4 faces of t, face i spanning the local nodes
// element.TetFaceVertices[i]
func (m *Mesh) TetFaces(t TetKey) []FaceKey {
	if !m.k.Exists(t) {
		return nil
	}
	f := m.k.TetFaces(t)
	return f[:]
}

// TetsFaces returns the distinct faces of tets in handle order
func (m *Mesh) TetsFaces(tets []TetKey) []FaceKey {
	set := &simplex.Set{}
	for _, t := range tets {
		for _, f := range m.TetFaces(t) {
			set.Insert(f)
		}
	}
	return set.Faces()
}

func (m *Mesh) NodeTets(n NodeKey) []TetKey { return m.k.NodeTets(n) }
func (m *Mesh) EdgeTets(e EdgeKey) []TetKey { return m.k.EdgeTets(e) }

func (m *Mesh) FaceTets(f FaceKey) []TetKey {
	tets := m.k.FaceTets(f)
	slices.Sort(tets)
	return tets
}

func (m *Mesh) edgeBetween(a, b NodeKey) EdgeKey {
	for _, e := range m.k.NodeEdges(a) {
		n := m.k.EdgeNodes(e)
		if (n[0] == a && n[1] == b) || (n[0] == b && n[1] == a) {
			return e
		}
	}
	return 0
}

// GetEdge returns the edge joining n1 and n2, invalid when there is none
func (m *Mesh) GetEdge(n1, n2 NodeKey) EdgeKey {
	if n1 == n2 {
		return 0
	}
	edges := m.k.Star(n1).Intersection(m.k.Star(n2)).Edges()
	if len(edges) != 1 {
		return 0
	}
	return edges[0]
}

// GetSharedEdge returns the edge bounding both f1 and f2
func (m *Mesh) GetSharedEdge(f1, f2 FaceKey) EdgeKey {
	if f1 == f2 {
		return 0
	}
	edges := m.k.Closure(f1).Intersection(m.k.Closure(f2)).Edges()
	if len(edges) != 1 {
		return 0
	}
	return edges[0]
}

// GetFace returns the face spanning n1, n2 and n3, invalid when there is none
func (m *Mesh) GetFace(n1, n2, n3 NodeKey) FaceKey {
	if n1 == n2 || n2 == n3 || n1 == n3 {
		return 0
	}
	shared := m.k.Star(n1).Intersection(m.k.Star(n2)).Intersection(m.k.Star(n3))
	faces := shared.Faces()
	if len(faces) != 1 {
		return 0
	}
	return faces[0]
}

// GetSharedFace returns the face bounding both t1 and t2
func (m *Mesh) GetSharedFace(t1, t2 TetKey) FaceKey {
	if t1 == t2 {
		return 0
	}
	faces := m.k.Closure(t1).Intersection(m.k.Closure(t2)).Faces()
	if len(faces) != 1 {
		return 0
	}
	return faces[0]
}

// GetTet returns the tetrahedron across f from t
func (m *Mesh) GetTet(t TetKey, f FaceKey) TetKey {
	var other []TetKey
	for _, c := range m.k.FaceTets(f) {
		if c != t {
			other = append(other, c)
		}
	}
	if len(other) != 1 {
		return 0
	}
	return other[0]
}

// GetApex returns the node of t not on f
func (m *Mesh) GetApex(t TetKey, f FaceKey) NodeKey {
	nodes := m.k.Closure(t).Difference(m.k.Closure(f)).Nodes()
	if len(nodes) != 1 {
		return 0
	}
	return nodes[0]
}

// GetFaceApex returns the node of f not on e
func (m *Mesh) GetFaceApex(f FaceKey, e EdgeKey) NodeKey {
	nodes := m.k.Closure(f).Difference(m.k.Closure(e)).Nodes()
	if len(nodes) != 1 {
		return 0
	}
	return nodes[0]
}

// GetApices returns the link nodes of f: the apex of each tetrahedron on f
func (m *Mesh) GetApices(f FaceKey) []NodeKey {
	return m.k.Link(f).Nodes()
}

// IsNeighbour reports whether two distinct simplices of the same dimension
// share a bounding simplex
func (m *Mesh) IsNeighbour(a, b simplex.Simplex) bool {
	ka, kb := a.Key(), b.Key()
	if ka.Dim != kb.Dim || ka == kb {
		return false
	}
	for _, x := range m.k.Boundary(ka) {
		if slices.Contains(m.k.Boundary(kb), x) {
			return true
		}
	}
	return false
}

// FaceNormal is the unit normal of f's winding
func (m *Mesh) FaceNormal(f FaceKey) r3.Vec {
	n := m.k.FaceNodes(f)
	normal := element.Normal(m.k.Position(n[0]), m.k.Position(n[1]), m.k.Position(n[2]))
	m.assert(!element.HasNaN(normal), "face %v has a NaN normal", f)
	return normal
}

// Length of edge e
func (m *Mesh) Length(e EdgeKey) float64 {
	n := m.k.EdgeNodes(e)
	return element.Length(m.k.Position(n[0]), m.k.Position(n[1]))
}

// Area of face f
func (m *Mesh) Area(f FaceKey) float64 {
	n := m.k.FaceNodes(f)
	return element.Area(m.k.Position(n[0]), m.k.Position(n[1]), m.k.Position(n[2]))
}

// Barycenter of any simplex
func (m *Mesh) Barycenter(s simplex.Simplex) r3.Vec {
	nodes := m.k.Closure(s).Nodes()
	pts := make([]r3.Vec, len(nodes))
	for i, n := range nodes {
		pts[i] = m.k.Position(n)
	}
	return element.Barycenter(pts...)
}
