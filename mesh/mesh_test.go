package mesh

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/tetcomplex/element"
	"github.com/notargets/tetcomplex/partitions"
	"github.com/notargets/tetcomplex/simplex"
)

var unitTet = []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}}

// ring is three tetrahedra around the edge (0,1)
var (
	ringPoints = []r3.Vec{
		{X: 0, Y: 0, Z: -1},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 0},
		{X: -0.5, Y: 0.866, Z: 0},
		{X: -0.5, Y: -0.866, Z: 0},
	}
	ringTets = [][]int{{0, 1, 2, 3}, {0, 1, 3, 4}, {0, 1, 4, 2}}
)

// pair is two tetrahedra on the face (0,1,2) with apices 3 above and 4 below
var (
	pairPoints = []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 1.0 / 3, Y: 1.0 / 3, Z: 1},
		{X: 1.0 / 3, Y: 1.0 / 3, Z: -1},
	}
	pairTets = [][]int{{0, 1, 2, 3}, {0, 1, 2, 4}}
)

// octahedron is four tetrahedra around the edge (0,2) with equator 0,1,2,3
// and poles 4 above and 5 below
var (
	octaPoints = []r3.Vec{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: -1, Y: 0, Z: 0},
		{X: 0, Y: -1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: 0, Z: -1},
	}
	octaTets = [][]int{{0, 2, 4, 1}, {0, 2, 1, 5}, {0, 2, 5, 3}, {0, 2, 3, 4}}
)

func testConfig() Config {
	return Config{Debug: true, ValidateOnBuild: true, ReorientInput: true}
}

func newMesh(t *testing.T, points []r3.Vec, EToV [][]int, labels []int) (*Mesh, []NodeKey, []TetKey) {
	t.Helper()
	m, err := New(points, EToV, labels, testConfig())
	require.NoError(t, err)
	return m, m.Nodes(), m.Tets()
}

func counts(m *Mesh) [4]int {
	return [4]int{m.NumNodes(), m.NumEdges(), m.NumFaces(), m.NumTets()}
}

type flagState struct {
	Boundary, Interface, Crossing bool
}

func snapshot(m *Mesh) map[simplex.Key]flagState {
	out := make(map[simplex.Key]flagState)
	add := func(s simplex.Simplex) {
		out[s.Key()] = flagState{m.IsBoundary(s), m.IsInterface(s), m.IsCrossing(s)}
	}
	for _, n := range m.Nodes() {
		add(n)
	}
	for _, e := range m.Edges() {
		add(e)
	}
	for _, f := range m.Faces() {
		add(f)
	}
	return out
}

// requireConsistent checks the mesh and that incremental flags match flags
// derived from scratch
func requireConsistent(t *testing.T, m *Mesh) {
	t.Helper()
	require.NoError(t, m.ValidityCheck())
	before := snapshot(m)
	m.RecomputeFlags()
	if diff := cmp.Diff(before, snapshot(m)); diff != "" {
		t.Errorf("incremental flags differ from recomputed (-incremental +recomputed):\n%s", diff)
	}
	for _, f := range m.Faces() {
		assertOriented(t, m, f)
	}
}

// assertOriented checks that a face normal points out of its boundary
// tetrahedron or from the lower to the higher label
func assertOriented(t *testing.T, m *Mesh, f FaceKey) {
	t.Helper()
	tets := m.FaceTets(f)
	from := tets[0]
	if len(tets) == 2 && m.Label(tets[1]) < m.Label(tets[0]) {
		from = tets[1]
	}
	out := r3.Sub(m.Barycenter(f), m.Barycenter(from))
	assert.Greater(t, r3.Dot(m.FaceNormal(f), out), 0.0, "face %v", f)
}

func TestNew(t *testing.T) {
	m, nodes, tets := newMesh(t, unitTet, [][]int{{0, 1, 2, 3}}, []int{4})
	assert.Equal(t, [4]int{4, 6, 4, 1}, counts(m))
	assert.Equal(t, 4, m.Label(tets[0]))
	assert.InDelta(t, 1.0/6, m.Volume(tets[0]), 1e-12)
	assert.Equal(t, unitTet[2], m.Position(nodes[2]))
	for _, f := range m.Faces() {
		assert.True(t, m.IsBoundary(f))
		assert.True(t, m.IsInterface(f), "nonzero label against the outside")
	}
	for _, n := range nodes {
		assert.True(t, m.IsBoundary(n))
		assert.False(t, m.IsCrossing(n))
	}
	requireConsistent(t, m)

	m, _, _ = newMesh(t, ringPoints, ringTets, nil)
	assert.Equal(t, [4]int{5, 10, 9, 3}, counts(m))
	for _, f := range m.Faces() {
		assert.False(t, m.IsInterface(f))
	}
	requireConsistent(t, m)
}

func TestNewErrors(t *testing.T) {
	cfg := DefaultConfig()
	_, err := New(unitTet, [][]int{{0, 1, 2}}, nil, cfg)
	assert.Error(t, err, "three vertices")
	_, err = New(unitTet, [][]int{{0, 1, 2, 4}}, nil, cfg)
	assert.Error(t, err, "out of range")
	_, err = New(unitTet, [][]int{{1, 0, 2, 3}}, nil, cfg)
	assert.Error(t, err, "inverted")
	_, err = New(unitTet, [][]int{{0, 1, 2, 3}}, []int{1, 2}, cfg)
	assert.Error(t, err, "labels")

	cfg.ReorientInput = true
	m, err := New(unitTet, [][]int{{1, 0, 2, 3}}, nil, cfg)
	require.NoError(t, err)
	assert.False(t, m.IsInverted(m.Tets()[0]))
}

func TestQueries(t *testing.T) {
	m, n, tets := newMesh(t, ringPoints, ringTets, nil)

	axis := m.GetEdge(n[0], n[1])
	require.True(t, axis.IsValid())
	assert.ElementsMatch(t, []NodeKey{n[0], n[1]}, m.EdgeNodes(axis))
	assert.False(t, m.GetEdge(n[2], n[2]).IsValid())
	assert.Equal(t, tets, m.EdgeTets(axis))
	assert.Len(t, m.EdgeFaces(axis), 3)
	assert.Len(t, m.NodeEdges(n[0]), 4)
	assert.Len(t, m.NodeTets(n[2]), 2)

	assert.False(t, m.GetFace(n[2], n[3], n[4]).IsValid(), "the ring is not a face")
	shared := m.GetSharedFace(tets[0], tets[1])
	require.True(t, shared.IsValid())
	assert.Equal(t, m.GetFace(n[0], n[1], n[3]), shared)
	assert.Equal(t, tets[1], m.GetTet(tets[0], shared))
	assert.Equal(t, tets[0], m.GetTet(tets[1], shared))
	assert.Equal(t, n[2], m.GetApex(tets[0], shared))
	assert.Equal(t, n[3], m.GetFaceApex(shared, axis))
	assert.Equal(t, []NodeKey{n[2], n[4]}, m.GetApices(shared))
	assert.Equal(t, axis, m.GetSharedEdge(shared, m.GetFace(n[0], n[1], n[2])))
	assert.False(t, m.GetSharedFace(tets[0], tets[0]).IsValid())

	boundary := m.GetFace(n[0], n[2], n[3])
	assert.False(t, m.GetTet(tets[0], boundary).IsValid())
	assert.ElementsMatch(t, []TetKey{tets[0]}, m.FaceTets(boundary))

	edges := m.TetEdges(tets[0])
	require.Len(t, edges, 6)
	tn := m.TetNodes(tets[0])
	for i, ev := range element.TetEdgeVertices {
		assert.ElementsMatch(t, []NodeKey{tn[ev[0]], tn[ev[1]]}, m.EdgeNodes(edges[i]))
	}
	assert.Len(t, m.TetsEdges(tets), 10)
	assert.Len(t, m.TetsFaces(tets), 9)
	for i, f := range m.TetFaces(tets[0]) {
		fv := element.TetFaceVertices[i]
		assert.ElementsMatch(t, []NodeKey{tn[fv[0]], tn[fv[1]], tn[fv[2]]}, m.FaceNodes(f))
	}
	fe := m.FaceEdges(shared)
	fn := m.FaceNodes(shared)
	for i := range 3 {
		assert.ElementsMatch(t, []NodeKey{fn[i], fn[(i+1)%3]}, m.EdgeNodes(fe[i]))
	}

	assert.True(t, m.IsNeighbour(tets[0], tets[1]))
	assert.True(t, m.IsNeighbour(axis, m.GetEdge(n[0], n[2])))
	assert.False(t, m.IsNeighbour(m.GetEdge(n[0], n[2]), m.GetEdge(n[1], n[3])))
	assert.False(t, m.IsNeighbour(axis, shared), "different dimensions")

	assert.InDelta(t, 1.0, r3.Norm(m.FaceNormal(shared)), 1e-12)
	assert.Equal(t, r3.Vec{}, m.Barycenter(axis))
	assert.InDelta(t, 2.0, m.Length(axis), 1e-12)
	assert.InDelta(t, 1.0, m.Area(m.GetFace(n[0], n[1], n[2])), 1e-12)
	assert.Nil(t, m.TetNodes(0))
}

func TestUniqueQueries(t *testing.T) {
	m, n, _ := newMesh(t, pairPoints, pairTets, nil)
	apices := map[NodeKey]bool{n[3]: true, n[4]: true}

	var edges int
	for i := range n {
		for j := i + 1; j < len(n); j++ {
			e := m.GetEdge(n[i], n[j])
			assert.Equal(t, e, m.GetEdge(n[j], n[i]))
			if apices[n[i]] && apices[n[j]] {
				assert.False(t, e.IsValid(), "apices %d and %d are not joined", i, j)
				continue
			}
			require.True(t, e.IsValid(), "edge %d-%d", i, j)
			assert.ElementsMatch(t, []NodeKey{n[i], n[j]}, m.EdgeNodes(e))
			edges++
		}
	}
	assert.Equal(t, m.NumEdges(), edges)

	var faces int
	for i := range n {
		for j := i + 1; j < len(n); j++ {
			for k := j + 1; k < len(n); k++ {
				f := m.GetFace(n[i], n[j], n[k])
				assert.Equal(t, f, m.GetFace(n[k], n[i], n[j]))
				assert.Equal(t, f, m.GetFace(n[j], n[k], n[i]))
				if apices[n[i]] && apices[n[j]] || apices[n[i]] && apices[n[k]] || apices[n[j]] && apices[n[k]] {
					assert.False(t, f.IsValid(), "face %d-%d-%d", i, j, k)
					continue
				}
				require.True(t, f.IsValid(), "face %d-%d-%d", i, j, k)
				assert.ElementsMatch(t, []NodeKey{n[i], n[j], n[k]}, m.FaceNodes(f))
				faces++
			}
		}
	}
	assert.Equal(t, m.NumFaces(), faces)
}

func TestFlags(t *testing.T) {
	m, n, tets := newMesh(t, pairPoints, pairTets, []int{0, 1})
	f := m.GetSharedFace(tets[0], tets[1])
	assert.True(t, m.IsInterface(f))
	assert.False(t, m.IsBoundary(f))
	for _, e := range m.FaceEdges(f) {
		assert.True(t, m.IsInterface(e), "edge %v of the interface", e)
		assert.False(t, m.IsCrossing(e))
	}

	want := map[NodeKey]flagState{
		n[0]: {Boundary: true, Interface: true},
		n[1]: {Boundary: true, Interface: true},
		n[2]: {Boundary: true, Interface: true},
		n[3]: {Boundary: true},
		n[4]: {Boundary: true, Interface: true},
	}
	got := make(map[NodeKey]flagState)
	for _, x := range n {
		got[x] = flagState{m.IsBoundary(x), m.IsInterface(x), m.IsCrossing(x)}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("node flags (-want +got):\n%s", diff)
	}
	for _, x := range m.TetFaces(tets[1]) {
		assert.True(t, m.IsInterface(x), "label 1 faces separate it from the outside")
	}
	requireConsistent(t, m)

	m.SetLabel(tets[1], 0)
	assert.False(t, m.IsInterface(f))
	assert.False(t, m.IsInterface(n[4]))
	requireConsistent(t, m)
}

func TestCrossing(t *testing.T) {
	m, n, tets := newMesh(t, ringPoints, ringTets, nil)
	axis := m.GetEdge(n[0], n[1])

	m.SetLabel(tets[0], 5)
	assert.True(t, m.IsInterface(axis))
	assert.False(t, m.IsCrossing(axis), "two interface sheets meet along the axis")
	requireConsistent(t, m)

	m.SetLabel(tets[1], 7)
	assert.True(t, m.IsCrossing(axis), "three labels meet along the axis")
	assert.True(t, m.IsCrossing(n[0]))
	assert.True(t, m.IsCrossing(n[1]))
	requireConsistent(t, m)

	m.SetLabel(tets[1], 5)
	assert.False(t, m.IsCrossing(axis))
	requireConsistent(t, m)
}

func TestOrientFace(t *testing.T) {
	m, _, tets := newMesh(t, pairPoints, pairTets, []int{2, 1})
	f := m.GetSharedFace(tets[0], tets[1])
	toward := r3.Sub(m.Barycenter(tets[0]), m.Barycenter(f))
	assert.Greater(t, r3.Dot(m.FaceNormal(f), toward), 0.0, "normal points into the higher label")

	m.SetLabel(tets[0], 0)
	assert.Less(t, r3.Dot(m.FaceNormal(f), toward), 0.0)
	requireConsistent(t, m)
}

func TestValidityCheck(t *testing.T) {
	m, n, tets := newMesh(t, unitTet, [][]int{{0, 1, 2, 3}}, nil)
	require.NoError(t, m.ValidityCheck())

	m.SetPosition(n[3], r3.Vec{Z: -1})
	assert.True(t, m.IsInverted(tets[0]))
	assert.Error(t, m.ValidityCheck())

	m.SetPosition(n[3], r3.Vec{Z: 1})
	require.NoError(t, m.ValidityCheck())
	m.k.Remove(m.GetFace(n[0], n[1], n[2]))
	assert.Error(t, m.ValidityCheck())
}

func TestRegions(t *testing.T) {
	m, _, tets := newMesh(t, pairPoints, pairTets, []int{0, 1})
	mc, order := m.Connectivity()
	assert.Equal(t, tets, order)
	for k := range mc.NumElements {
		for f := range 4 {
			nb, nf := mc.EToE[k][f], mc.EToF[k][f]
			assert.Equal(t, k, mc.EToE[nb][nf], "element %d face %d", k, f)
		}
	}

	layout, _, err := m.Regions()
	require.NoError(t, err)
	assert.Equal(t, 2, layout.NumPartitions)
	assert.Len(t, layout.InterfaceFaces(mc), 1)

	m.SetLabel(tets[1], 0)
	layout, _, err = m.Regions()
	require.NoError(t, err)
	assert.Equal(t, 1, layout.NumPartitions)
}

func TestPartition(t *testing.T) {
	m, _, _ := newMesh(t, ringPoints, ringTets, []int{1, 2, 1})

	layout, tets, err := m.Partition(partitions.BlockPartition, 2)
	require.NoError(t, err)
	assert.Len(t, tets, 3)
	assert.Equal(t, []int{0, 0, 1}, layout.EToP)

	layout, _, err = m.Partition(partitions.RoundRobin, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, layout.EToP)
	stats := layout.PartitionStatistics()
	assert.Equal(t, 1, stats.MinElements)
	assert.Equal(t, 1, stats.MaxElements)

	layout, _, err = m.Partition(partitions.LabelRegions, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, layout.NumPartitions, "the two label 1 tetrahedra share a face")

	_, _, err = m.Partition(partitions.PartitionStrategy(9), 0)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	m, _, _ := newMesh(t, pairPoints, pairTets, []int{0, 1})
	s := m.String()
	assert.Contains(t, s, "Tetrahedra: 2")
	assert.Contains(t, s, "Interface faces: 4")
	assert.Contains(t, s, "1: 1 tetrahedra")
	assert.Contains(t, s, "Regions: 2 (1 to 1 tetrahedra)")
}
