package mesh

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func sortedLabels(m *Mesh) []int {
	var labels []int
	for _, t := range m.Tets() {
		labels = append(labels, m.Label(t))
	}
	slices.Sort(labels)
	return labels
}

// wedge is two tetrahedra of the octahedron sharing the face (0,1,2),
// leaving (0,2) a boundary edge
var (
	wedgePoints = []r3.Vec{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: -1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: 0, Z: -1},
	}
	wedgeTets = [][]int{{0, 2, 3, 1}, {0, 2, 1, 4}}
)

func TestSplit(t *testing.T) {
	t.Run("edge", func(t *testing.T) {
		m, n, _ := newMesh(t, unitTet, [][]int{{0, 1, 2, 3}}, []int{4})
		mid := m.Split(m.GetEdge(n[0], n[1]))
		require.True(t, mid.IsValid())
		assert.Equal(t, [4]int{5, 9, 7, 2}, counts(m))
		assert.Equal(t, r3.Vec{X: 0.5}, m.Position(mid))
		assert.Equal(t, []int{4, 4}, sortedLabels(m))
		assert.False(t, m.GetEdge(n[0], n[1]).IsValid())
		for _, e := range m.NodeEdges(mid) {
			assert.True(t, m.IsBoundary(e))
		}
		var boundary, interior int
		for _, f := range m.Star(mid).Faces() {
			if m.IsBoundary(f) {
				boundary++
			} else {
				interior++
			}
		}
		assert.Equal(t, 4, boundary)
		assert.Equal(t, 1, interior)
		requireConsistent(t, m)
	})

	t.Run("face", func(t *testing.T) {
		m, n, _ := newMesh(t, pairPoints, pairTets, []int{0, 1})
		mid := m.SplitFace(m.GetFace(n[0], n[1], n[2]))
		require.True(t, mid.IsValid())
		assert.Equal(t, [4]int{6, 14, 15, 6}, counts(m))
		assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, sortedLabels(m))
		assert.False(t, m.IsBoundary(mid))
		assert.True(t, m.IsInterface(mid))
		requireConsistent(t, m)
	})

	t.Run("tetrahedron", func(t *testing.T) {
		m, _, tets := newMesh(t, unitTet, [][]int{{0, 1, 2, 3}}, []int{3})
		mid := m.SplitTet(tets[0])
		require.True(t, mid.IsValid())
		assert.Equal(t, [4]int{5, 10, 10, 4}, counts(m))
		assert.Equal(t, []int{3, 3, 3, 3}, sortedLabels(m))
		assert.False(t, m.IsBoundary(mid))
		assert.False(t, m.IsInterface(mid))
		assert.False(t, m.Exists(tets[0]))
		requireConsistent(t, m)
	})

	t.Run("missing", func(t *testing.T) {
		m, _, tets := newMesh(t, unitTet, [][]int{{0, 1, 2, 3}}, nil)
		require.True(t, m.SplitTet(tets[0]).IsValid())
		assert.False(t, m.SplitTet(tets[0]).IsValid())
		assert.False(t, m.Split(0).IsValid())
		assert.False(t, m.SplitFace(0).IsValid())
	})
}

func TestCollapse(t *testing.T) {
	t.Run("undo split", func(t *testing.T) {
		m, n, _ := newMesh(t, ringPoints, ringTets, []int{1, 2, 3})
		mid := m.Split(m.GetEdge(n[0], n[1]))
		require.True(t, mid.IsValid())
		assert.Equal(t, 6, m.NumTets())

		assert.Equal(t, n[0], m.CollapseTo(m.GetEdge(n[0], mid), n[0]))
		assert.Equal(t, [4]int{5, 10, 9, 3}, counts(m))
		assert.False(t, m.Exists(mid))
		assert.True(t, m.GetEdge(n[0], n[1]).IsValid())
		assert.Equal(t, []int{1, 2, 3}, sortedLabels(m))
		assert.Equal(t, ringPoints[0], m.Position(n[0]))
		requireConsistent(t, m)
	})

	t.Run("first node survives", func(t *testing.T) {
		m, n, _ := newMesh(t, ringPoints, ringTets, nil)
		mid := m.Split(m.GetEdge(n[0], n[1]))
		e := m.GetEdge(n[1], mid)
		keep := m.EdgeNodes(e)[0]
		assert.Equal(t, keep, m.Collapse(e))
		assert.Equal(t, 3, m.NumTets())
		requireConsistent(t, m)
	})

	t.Run("rejected", func(t *testing.T) {
		m, n, _ := newMesh(t, ringPoints, ringTets, nil)
		before := counts(m)
		assert.False(t, m.Collapse(m.GetEdge(n[0], n[1])).IsValid(), "interior edge joining boundary nodes")
		assert.Equal(t, before, counts(m))

		m, n, _ = newMesh(t, unitTet, [][]int{{0, 1, 2, 3}}, nil)
		assert.False(t, m.Collapse(m.GetEdge(n[0], n[1])).IsValid(), "nothing would remain")
		assert.Equal(t, [4]int{4, 6, 4, 1}, counts(m))
		assert.False(t, m.Collapse(0).IsValid())
		requireConsistent(t, m)
	})
}

func TestCollapseMerge(t *testing.T) {
	m, n, _ := newMesh(t, ringPoints, ringTets, []int{1, 1, 2})
	mid := m.Split(m.GetEdge(n[0], n[1]))
	require.True(t, mid.IsValid())
	e := m.GetEdge(n[0], mid)
	keep := m.EdgeNodes(e)[0]

	got, err := m.CollapseMerge(e)
	require.NoError(t, err)
	assert.Equal(t, keep, got)
	assert.Equal(t, [4]int{5, 10, 9, 3}, counts(m))
	assert.Equal(t, []int{1, 1, 2}, sortedLabels(m))
	requireConsistent(t, m)

	before := counts(m)
	_, err = m.CollapseMerge(m.GetEdge(n[1], keep))
	assert.Error(t, err, "nothing would remain")
	assert.Equal(t, before, counts(m))

	_, err = m.CollapseMerge(0)
	assert.Error(t, err)
}

func TestFlip32(t *testing.T) {
	m, n, _ := newMesh(t, ringPoints, ringTets, nil)
	axis := m.GetEdge(n[0], n[1])

	assert.Equal(t, n[2], m.Flip32(axis))
	assert.Equal(t, 2, m.NumTets())
	assert.Equal(t, 5, m.NumNodes())
	assert.False(t, m.GetEdge(n[0], n[1]).IsValid())
	f := m.GetFace(n[2], n[3], n[4])
	require.True(t, f.IsValid())
	assert.False(t, m.IsBoundary(f))
	assert.Equal(t, ringPoints[2], m.Position(n[2]))
	requireConsistent(t, m)

	assert.Positive(t, m.GarbageCollect())
}

func TestFlip32FlatResult(t *testing.T) {
	// the lower pole sits a rounding error below the ring plane, so the
	// collapse would leave a flat tetrahedron on the ring
	flat := slices.Clone(ringPoints)
	flat[0] = r3.Vec{Z: -1e-12}
	m, n, _ := newMesh(t, flat, ringTets, nil)

	assert.False(t, m.Flip32(m.GetEdge(n[0], n[1])).IsValid())
	assert.Equal(t, 6, m.NumTets(), "the split stays in place")
	for _, tet := range m.Tets() {
		assert.Greater(t, m.Volume(tet), 1e-3)
	}
	requireConsistent(t, m)
}

func TestFlip32Preconditions(t *testing.T) {
	m, n, _ := newMesh(t, unitTet, [][]int{{0, 1, 2, 3}}, nil)
	assert.Panics(t, func() { m.Flip32(m.GetEdge(n[0], n[1])) }, "boundary edge in debug mode")

	m.cfg.Debug = false
	assert.False(t, m.Flip32(m.GetEdge(n[0], n[1])).IsValid())
	assert.Equal(t, [4]int{4, 6, 4, 1}, counts(m))
	assert.False(t, m.Flip32(0).IsValid())
}

func TestFlip23(t *testing.T) {
	m, n, _ := newMesh(t, pairPoints, pairTets, []int{0, 1})
	f := m.GetFace(n[0], n[1], n[2])

	assert.Equal(t, n[3], m.Flip23(f))
	assert.Equal(t, 3, m.NumTets())
	assert.Equal(t, 5, m.NumNodes())
	assert.Equal(t, []int{1, 1, 1}, sortedLabels(m))
	assert.False(t, m.Exists(f))
	axis := m.GetEdge(n[3], n[4])
	require.True(t, axis.IsValid())
	assert.Len(t, m.EdgeTets(axis), 3)
	requireConsistent(t, m)

	boundary := m.GetFace(n[0], n[1], n[3])
	assert.Panics(t, func() { m.Flip23(boundary) })
}

func TestFlip44(t *testing.T) {
	m, n, _ := newMesh(t, octaPoints, octaTets, nil)
	f1, f2 := m.GetFace(n[0], n[2], n[4]), m.GetFace(n[0], n[2], n[5])

	before := counts(m)
	assert.False(t, m.Flip44(f1, m.GetFace(n[0], n[2], n[1])).IsValid(), "apices already joined")
	assert.False(t, m.Flip44(f1, f1).IsValid())
	assert.Equal(t, before, counts(m))

	assert.Equal(t, n[4], m.Flip44(f1, f2))
	assert.Equal(t, before, counts(m))
	assert.False(t, m.GetEdge(n[0], n[2]).IsValid())
	diagonal := m.GetEdge(n[4], n[5])
	require.True(t, diagonal.IsValid())
	assert.Len(t, m.EdgeTets(diagonal), 4)
	requireConsistent(t, m)
}

func TestFlip22(t *testing.T) {
	m, n, _ := newMesh(t, wedgePoints, wedgeTets, nil)
	f1, f2 := m.GetFace(n[0], n[2], n[3]), m.GetFace(n[0], n[2], n[4])
	require.True(t, m.IsBoundary(f1))
	before := counts(m)

	assert.Equal(t, n[3], m.Flip22(f1, f2))
	assert.Equal(t, before, counts(m))
	assert.False(t, m.GetEdge(n[0], n[2]).IsValid())
	assert.True(t, m.GetEdge(n[3], n[4]).IsValid())
	requireConsistent(t, m)
}

func TestFlipRoundTrip(t *testing.T) {
	m, n, _ := newMesh(t, pairPoints, pairTets, nil)
	require.Equal(t, n[3], m.Flip23(m.GetFace(n[0], n[1], n[2])))
	require.Equal(t, 3, m.NumTets())

	axis := m.GetEdge(n[3], n[4])
	link := m.Link(axis).Nodes()
	require.Len(t, link, 3)
	assert.Equal(t, link[0], m.Flip32(axis))
	assert.Equal(t, 2, m.NumTets())
	assert.Equal(t, 5, m.NumNodes())
	assert.True(t, m.GetFace(n[0], n[1], n[2]).IsValid())
	requireConsistent(t, m)
}

func TestFlip23Rebuild(t *testing.T) {
	m, n, _ := newMesh(t, pairPoints, pairTets, []int{0, 1})
	f := m.GetFace(n[0], n[1], n[2])
	assert.Nil(t, m.Flip23Rebuild(f), "mixed labels")
	assert.Equal(t, [4]int{5, 9, 7, 2}, counts(m))

	m, n, _ = newMesh(t, pairPoints, pairTets, []int{2, 2})
	tets := m.Flip23Rebuild(m.GetFace(n[0], n[1], n[2]))
	require.Len(t, tets, 3)
	assert.Equal(t, [4]int{5, 10, 9, 3}, counts(m))
	assert.Equal(t, []int{2, 2, 2}, sortedLabels(m))
	assert.True(t, m.GetEdge(n[3], n[4]).IsValid())
	assert.False(t, m.GetFace(n[0], n[1], n[2]).IsValid())
	requireConsistent(t, m)

	skew := slices.Clone(pairPoints)
	skew[4] = r3.Vec{X: 2, Y: 2, Z: -1}
	m, n, _ = newMesh(t, skew, pairTets, nil)
	assert.Nil(t, m.Flip23Rebuild(m.GetFace(n[0], n[1], n[2])), "apices do not straddle the face")
	assert.Equal(t, 2, m.NumTets())
	requireConsistent(t, m)
}

func TestFlip32Rebuild(t *testing.T) {
	m, n, _ := newMesh(t, ringPoints, ringTets, nil)
	tets := m.Flip32Rebuild(m.GetEdge(n[0], n[1]))
	require.Len(t, tets, 2)
	assert.Equal(t, [4]int{5, 9, 7, 2}, counts(m))
	assert.True(t, m.GetFace(n[2], n[3], n[4]).IsValid())
	assert.False(t, m.GetEdge(n[0], n[1]).IsValid())
	requireConsistent(t, m)

	short := slices.Clone(ringPoints)
	short[1] = r3.Vec{Z: -0.5}
	m, n, _ = newMesh(t, short, ringTets, nil)
	assert.Nil(t, m.Flip32Rebuild(m.GetEdge(n[0], n[1])), "edge does not cross the link")
	assert.Equal(t, 3, m.NumTets())
}

func TestFlip44Rebuild(t *testing.T) {
	m, n, _ := newMesh(t, octaPoints, octaTets, nil)
	f1, f2 := m.GetFace(n[0], n[2], n[4]), m.GetFace(n[0], n[2], n[5])
	assert.Nil(t, m.Flip22Rebuild(f1, f2), "four tetrahedra around the edge")
	before := counts(m)

	tets := m.Flip44Rebuild(f1, f2)
	require.Len(t, tets, 4)
	assert.Equal(t, before, counts(m))
	assert.True(t, m.GetEdge(n[4], n[5]).IsValid())
	assert.False(t, m.GetEdge(n[0], n[2]).IsValid())
	requireConsistent(t, m)
}

func TestFlip22Rebuild(t *testing.T) {
	m, n, _ := newMesh(t, wedgePoints, wedgeTets, []int{3, 3})
	f1, f2 := m.GetFace(n[0], n[2], n[3]), m.GetFace(n[0], n[2], n[4])
	assert.Nil(t, m.Flip44Rebuild(f1, f2), "two tetrahedra around the edge")
	before := counts(m)

	tets := m.Flip22Rebuild(f1, f2)
	require.Len(t, tets, 2)
	assert.Equal(t, before, counts(m))
	assert.Equal(t, []int{3, 3}, sortedLabels(m))
	ab := m.GetEdge(n[3], n[4])
	require.True(t, ab.IsValid())
	assert.True(t, m.IsBoundary(ab))
	assert.False(t, m.GetEdge(n[0], n[2]).IsValid())
	requireConsistent(t, m)
}
