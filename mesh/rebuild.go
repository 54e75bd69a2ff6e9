package mesh

import (
	"math"
	"slices"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/notargets/tetcomplex/element"
	"github.com/notargets/tetcomplex/simplex"
)

const volumeTol = 1e-12

// rebuildPlan describes a flip carried out by tearing out a cavity and
// reconnecting its boundary
type rebuildPlan struct {
	name  string
	old   []TetKey
	faces []FaceKey // interior faces of the cavity
	edge  EdgeKey   // interior edge of the cavity, may be invalid
	// diagonal is the new interior edge; when invalid, face is the new
	// interior face
	diagonal [2]NodeKey
	face     [3]NodeKey
	tets     [][4]NodeKey // expected new tetrahedra
	label    int
}

// Flip23Rebuild replaces the two tetrahedra on f by three around the edge
// joining their apices, reconnecting the cavity directly. Returns the new
// tetrahedra, nil with the mesh untouched when the cavity is not convex or
// carries more than one label.
func (m *Mesh) Flip23Rebuild(f FaceKey) []TetKey {
	tets := m.FaceTets(f)
	apices := m.GetApices(f)
	if len(tets) != 2 || len(apices) != 2 || m.GetEdge(apices[0], apices[1]).IsValid() {
		return nil
	}
	a, b := apices[0], apices[1]
	x := m.FaceNodes(f)
	p := &rebuildPlan{
		name:     "2-3",
		old:      tets,
		faces:    []FaceKey{f},
		diagonal: [2]NodeKey{a, b},
	}
	sign := 0.
	for i := range 3 {
		nodes := [4]NodeKey{x[i], x[(i+1)%3], a, b}
		v := m.volumeOf(nodes)
		if math.Abs(v) < volumeTol || v*sign < 0 {
			glog.V(2).Infof("flip 2-3 rebuild of %v rejected: cavity not convex", f)
			return nil
		}
		sign = v
		p.tets = append(p.tets, nodes)
	}
	return m.rebuild(p)
}

// Flip32Rebuild replaces the three tetrahedra around e by two sharing the
// face spanned by the link of e
func (m *Mesh) Flip32Rebuild(e EdgeKey) []TetKey {
	tets := m.EdgeTets(e)
	link := m.k.Link(e).Nodes()
	if len(tets) != 3 || len(link) != 3 || m.GetFace(link[0], link[1], link[2]).IsValid() {
		return nil
	}
	for i := range 3 {
		if !m.GetEdge(link[i], link[(i+1)%3]).IsValid() {
			return nil
		}
	}
	n := m.EdgeNodes(e)
	r := [3]NodeKey{link[0], link[1], link[2]}
	p := &rebuildPlan{
		name:  "3-2",
		old:   tets,
		faces: m.EdgeFaces(e),
		edge:  e,
		face:  r,
		tets: [][4]NodeKey{
			{r[0], r[1], r[2], n[0]},
			{r[0], r[1], r[2], n[1]},
		},
	}
	va, vb := m.volumeOf(p.tets[0]), m.volumeOf(p.tets[1])
	if math.Abs(va) < volumeTol || math.Abs(vb) < volumeTol || va*vb > 0 {
		glog.V(2).Infof("flip 3-2 rebuild of %v rejected: edge does not cross the link", e)
		return nil
	}
	return m.rebuild(p)
}

// Flip44Rebuild swaps the edge shared by f1 and f2 for the diagonal joining
// their apices, rebuilding the four tetrahedra around it. It also serves an
// edge with two tetrahedra on the boundary.
func (m *Mesh) Flip44Rebuild(f1, f2 FaceKey) []TetKey {
	return m.flipEdgeRebuild("4-4", f1, f2, 4)
}

// Flip22Rebuild swaps a boundary edge with two tetrahedra for the diagonal
// joining the apices of f1 and f2
func (m *Mesh) Flip22Rebuild(f1, f2 FaceKey) []TetKey {
	return m.flipEdgeRebuild("2-2", f1, f2, 2)
}

func (m *Mesh) flipEdgeRebuild(name string, f1, f2 FaceKey, nTets int) []TetKey {
	e := m.GetSharedEdge(f1, f2)
	if !e.IsValid() {
		return nil
	}
	a, b := m.GetFaceApex(f1, e), m.GetFaceApex(f2, e)
	tets := m.EdgeTets(e)
	if len(tets) != nTets || !a.IsValid() || !b.IsValid() || m.GetEdge(a, b).IsValid() {
		return nil
	}
	n := m.EdgeNodes(e)
	p := &rebuildPlan{
		name:     name,
		old:      tets,
		faces:    m.EdgeFaces(e),
		edge:     e,
		diagonal: [2]NodeKey{a, b},
	}
	for _, q := range m.k.Link(e).Nodes() {
		if q == a || q == b {
			continue
		}
		for _, end := range n {
			nodes := [4]NodeKey{a, b, end, q}
			if math.Abs(m.volumeOf(nodes)) < volumeTol {
				glog.V(2).Infof("flip %s rebuild of %v rejected: degenerate tetrahedron", name, e)
				return nil
			}
			p.tets = append(p.tets, nodes)
		}
	}
	if len(p.tets) != nTets {
		return nil
	}
	return m.rebuild(p)
}

// rebuild checks that the planned tetrahedra fill the cavity exactly, tears
// the cavity out and reconnects it
func (m *Mesh) rebuild(p *rebuildPlan) []TetKey {
	p.label = m.k.Label(p.old[0])
	var before, after float64
	for _, t := range p.old {
		if m.k.Label(t) != p.label {
			glog.V(2).Infof("flip %s rebuild rejected: mixed labels", p.name)
			return nil
		}
		before += math.Abs(m.Volume(t))
	}
	for _, nodes := range p.tets {
		after += math.Abs(m.volumeOf(nodes))
	}
	if !scalar.EqualWithinAbsOrRel(before, after, volumeTol, 1e-9) {
		glog.V(2).Infof("flip %s rebuild rejected: cavity is not convex", p.name)
		return nil
	}

	exterior := slices.DeleteFunc(m.TetsFaces(p.old), func(f FaceKey) bool {
		return slices.Contains(p.faces, f)
	})
	candidates := slices.DeleteFunc(m.TetsEdges(p.old), func(e EdgeKey) bool {
		return e == p.edge
	})
	for _, t := range p.old {
		m.k.Remove(t)
	}
	for _, f := range p.faces {
		m.k.Remove(f)
	}
	if p.edge.IsValid() {
		m.k.Remove(p.edge)
	}

	var created []FaceKey
	if p.diagonal[0].IsValid() {
		e := m.k.InsertEdge(p.diagonal[0], p.diagonal[1])
		created = m.createFaces(e, candidates)
	} else {
		r := p.face
		created = []FaceKey{m.k.InsertFace(
			m.GetEdge(r[0], r[1]), m.GetEdge(r[1], r[2]), m.GetEdge(r[2], r[0]))}
	}
	var interior []FaceKey
	for _, f := range created {
		if p.sharedBy(m.k.FaceNodes(f)) == 2 {
			interior = append(interior, f)
		} else {
			exterior = append(exterior, f)
		}
	}

	tets := m.createTetrahedra(interior, exterior, p.label)
	m.assert(len(tets) == len(p.tets), "flip %s rebuild created %d of %d tetrahedra", p.name, len(tets), len(p.tets))
	m.repair(m.k.ClosureOf(m.k.StarOf(m.k.ClosureOf(simplex.NewSet(keysOf(tets)...)))))
	glog.V(2).Infof("flip %s rebuild: %d tetrahedra replaced by %d", p.name, len(p.old), len(tets))
	return tets
}

// sharedBy counts the planned tetrahedra containing the nodes of a face
func (p *rebuildPlan) sharedBy(face [3]NodeKey) (n int) {
	for _, t := range p.tets {
		if containsAll(t[:], face[:]) {
			n++
		}
	}
	return
}

// createFaces builds the faces through edge e, pairing the candidate edges
// that leave its two nodes toward a common third node
func (m *Mesh) createFaces(e EdgeKey, candidates []EdgeKey) []FaceKey {
	ends := m.k.EdgeNodes(e)
	type spokes struct {
		node  NodeKey
		edges [2]EdgeKey
	}
	var groups []*spokes
	for _, c := range candidates {
		n := m.k.EdgeNodes(c)
		side := slices.Index(ends[:], n[0])
		other := n[1]
		if side < 0 {
			side = slices.Index(ends[:], n[1])
			other = n[0]
		}
		if side < 0 || slices.Contains(ends[:], other) {
			continue
		}
		i := slices.IndexFunc(groups, func(g *spokes) bool { return g.node == other })
		if i < 0 {
			groups = append(groups, &spokes{node: other})
			i = len(groups) - 1
		}
		groups[i].edges[side] = c
	}
	var faces []FaceKey
	for _, g := range groups {
		if !g.edges[0].IsValid() || !g.edges[1].IsValid() {
			continue
		}
		if f := m.k.InsertFace(e, g.edges[1], g.edges[0]); f.IsValid() {
			faces = append(faces, f)
		}
	}
	return faces
}

// createTetrahedra fills a cavity bounded by exterior faces and partitioned
// by interior faces, using every exterior face once
func (m *Mesh) createTetrahedra(interior, exterior []FaceKey, label int) []TetKey {
	want := (2*len(interior) + len(exterior)) / 4
	used := make(map[FaceKey]bool, len(exterior))
	var tets []TetKey
	for _, seed := range exterior {
		if used[seed] {
			continue
		}
		t := m.createTetrahedron(seed, interior, exterior, used, label)
		if !t.IsValid() {
			glog.Warningf("no tetrahedron closes on face %v", seed)
			continue
		}
		tets = append(tets, t)
	}
	m.assert(len(tets) == want, "created %d tetrahedra, expected %d", len(tets), want)
	return tets
}

// createTetrahedron closes a tetrahedron on seed with a new face sharing one
// of its edges, then collects the other faces on the same four nodes
func (m *Mesh) createTetrahedron(seed FaceKey, interior, exterior []FaceKey, used map[FaceKey]bool, label int) TetKey {
	base := m.k.FaceNodes(seed)
	pool := append(slices.Clone(interior), exterior...)
	for _, f := range pool {
		if f == seed || used[f] {
			continue
		}
		fn := m.k.FaceNodes(f)
		if len(simplex.Intersection(base[:], fn[:])) != 2 {
			continue
		}
		nodes := simplex.Union(base[:], fn[:])
		var faces []FaceKey
		for _, g := range pool {
			gn := m.k.FaceNodes(g)
			if !used[g] && containsAll(nodes, gn[:]) {
				faces = append(faces, g)
			}
		}
		if len(faces) != 4 {
			continue
		}
		t := m.insertTetrahedron(faces, label)
		if !t.IsValid() {
			continue
		}
		for _, g := range faces {
			if slices.Contains(exterior, g) {
				used[g] = true
			}
		}
		return t
	}
	return 0
}

// insertTetrahedron links a tetrahedron on four faces and inverts it at once
// when it comes out inverted
func (m *Mesh) insertTetrahedron(faces []FaceKey, label int) TetKey {
	t := m.k.InsertTetrahedron(faces[0], faces[1], faces[2], faces[3], label)
	if t.IsValid() && m.IsInverted(t) {
		m.k.InvertOrientation(t)
	}
	return t
}

func (m *Mesh) volumeOf(n [4]NodeKey) float64 {
	return element.SignedVolume(m.k.Position(n[0]), m.k.Position(n[1]), m.k.Position(n[2]), m.k.Position(n[3]))
}

func containsAll[K comparable](set, sub []K) bool {
	for _, k := range sub {
		if !slices.Contains(set, k) {
			return false
		}
	}
	return true
}

func keysOf[K simplex.Simplex](keys []K) []simplex.Simplex {
	out := make([]simplex.Simplex, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
