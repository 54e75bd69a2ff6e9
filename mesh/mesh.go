// Package mesh maintains a labeled tetrahedral simplicial complex and the
// local editing operators used to re-mesh it: split, collapse and the 2-3,
// 3-2, 4-4 and 2-2 flips. Every operator leaves the boundary, interface and
// crossing flags and the face orientation consistent with the incidence and
// tetrahedron labels.
//
// A Mesh is not safe for concurrent use.
package mesh

import (
	"fmt"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/tetcomplex/element"
	"github.com/notargets/tetcomplex/kernel"
	"github.com/notargets/tetcomplex/simplex"
)

type (
	NodeKey = simplex.NodeKey
	EdgeKey = simplex.EdgeKey
	FaceKey = simplex.FaceKey
	TetKey  = simplex.TetKey
)

// Config controls construction and debug checking
type Config struct {
	// Debug enables precondition assertions in the operators. A failed
	// assertion panics.
	Debug bool

	// ValidateOnBuild runs ValidityCheck after construction
	ValidateOnBuild bool

	// ReorientInput reorders input tetrahedra given with negative volume
	// instead of rejecting them
	ReorientInput bool
}

// DefaultConfig validates the initial mesh and rejects inverted input
func DefaultConfig() Config {
	return Config{ValidateOnBuild: true}
}

type Mesh struct {
	k   *kernel.Kernel
	cfg Config
}

// New builds a mesh from points and tetrahedra given as 4 point indices.
// labels may be nil, in which case every tetrahedron has label 0.
func New(points []r3.Vec, EToV [][]int, labels []int, cfg Config) (*Mesh, error) {
	elems := make([][]int, len(EToV))
	for i, elem := range EToV {
		if len(elem) != 4 {
			return nil, errors.Errorf("tetrahedron %d has %d vertices", i, len(elem))
		}
		for _, v := range elem {
			if v < 0 || v >= len(points) {
				return nil, errors.Errorf("tetrahedron %d references point %d of %d", i, v, len(points))
			}
		}
		elems[i] = append([]int(nil), elem...)
		p := func(j int) r3.Vec { return points[elems[i][j]] }
		if cfg.ReorientInput && element.SignedVolume(p(0), p(1), p(2), p(3)) < 0 {
			elems[i][0], elems[i][1] = elems[i][1], elems[i][0]
		}
	}

	m := &Mesh{k: kernel.New(), cfg: cfg}
	if _, _, err := m.k.Build(points, elems, labels); err != nil {
		return nil, errors.Wrap(err, "building mesh")
	}
	m.RecomputeFlags()
	for _, f := range m.k.Faces() {
		m.OrientFace(f)
	}
	if cfg.ValidateOnBuild {
		if err := m.ValidityCheck(); err != nil {
			return nil, errors.Wrap(err, "initial mesh")
		}
	}
	glog.V(1).Infof("built mesh: %d nodes, %d edges, %d faces, %d tetrahedra",
		m.k.NumNodes(), m.k.NumEdges(), m.k.NumFaces(), m.k.NumTets())
	return m, nil
}

// Nodes lists live nodes in handle order. On a freshly built mesh the order
// matches the input points.
func (m *Mesh) Nodes() []NodeKey { return m.k.Nodes() }
func (m *Mesh) Edges() []EdgeKey { return m.k.Edges() }
func (m *Mesh) Faces() []FaceKey { return m.k.Faces() }

// Tets lists live tetrahedra in handle order. On a freshly built mesh the
// order matches the input elements.
func (m *Mesh) Tets() []TetKey { return m.k.Tets() }

func (m *Mesh) NumNodes() int { return m.k.NumNodes() }
func (m *Mesh) NumEdges() int { return m.k.NumEdges() }
func (m *Mesh) NumFaces() int { return m.k.NumFaces() }
func (m *Mesh) NumTets() int  { return m.k.NumTets() }

func (m *Mesh) Exists(s simplex.Simplex) bool { return m.k.Exists(s) }

func (m *Mesh) Position(n NodeKey) r3.Vec { return m.k.Position(n) }

// SetPosition moves a node. Moving nodes can invert tetrahedra; drivers
// check IsInverted on the node's star.
func (m *Mesh) SetPosition(n NodeKey, p r3.Vec) { m.k.SetPosition(n, p) }

// Volume of t, negative when t is inverted
func (m *Mesh) Volume(t TetKey) float64 { return m.k.SignedVolume(t) }

// GarbageCollect reclaims storage of removed simplices. Handles of removed
// simplices remain invalid.
func (m *Mesh) GarbageCollect() int {
	n := m.k.GarbageCollect()
	glog.V(1).Infof("garbage collected %d records", n)
	return n
}

// assert panics when cond fails and the mesh is in debug mode
func (m *Mesh) assert(cond bool, format string, args ...interface{}) {
	if m.cfg.Debug && !cond {
		panic(errors.Errorf(format, args...))
	}
}

// repair recomputes flags and face orientation over set
func (m *Mesh) repair(set *simplex.Set) {
	m.UpdateFlags(set)
	for _, f := range set.Faces() {
		if m.k.Exists(f) {
			m.OrientFace(f)
		}
	}
}

// String returns a summary of the mesh properties
func (m *Mesh) String() string {
	var sb strings.Builder

	sb.WriteString("=== Mesh Summary ===\n")
	sb.WriteString(fmt.Sprintf("  Nodes: %d\n", m.k.NumNodes()))
	sb.WriteString(fmt.Sprintf("  Edges: %d\n", m.k.NumEdges()))
	sb.WriteString(fmt.Sprintf("  Faces: %d\n", m.k.NumFaces()))
	sb.WriteString(fmt.Sprintf("  Tetrahedra: %d\n", m.k.NumTets()))

	var nBoundary, nInterface int
	for _, f := range m.k.Faces() {
		if m.IsBoundary(f) {
			nBoundary++
		}
		if m.IsInterface(f) {
			nInterface++
		}
	}
	var nCrossing int
	for _, n := range m.k.Nodes() {
		if m.IsCrossing(n) {
			nCrossing++
		}
	}
	sb.WriteString(fmt.Sprintf("  Boundary faces: %d\n", nBoundary))
	sb.WriteString(fmt.Sprintf("  Interface faces: %d\n", nInterface))
	sb.WriteString(fmt.Sprintf("  Crossing nodes: %d\n", nCrossing))

	tets := m.k.Tets()
	if len(tets) == 0 {
		return sb.String()
	}
	counts := make(map[int]int)
	vols := make([]float64, len(tets))
	for i, t := range tets {
		counts[m.Label(t)]++
		vols[i] = m.Volume(t)
	}
	labels := make([]int, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	sb.WriteString("\n--- Labels ---\n")
	for _, l := range labels {
		sb.WriteString(fmt.Sprintf("  %d: %d tetrahedra\n", l, counts[l]))
	}
	if layout, _, err := m.Regions(); err == nil {
		stats := layout.PartitionStatistics()
		sb.WriteString(fmt.Sprintf("  Regions: %d (%d to %d tetrahedra)\n",
			stats.NumPartitions, stats.MinElements, stats.MaxElements))
	}
	sb.WriteString("\n--- Volume ---\n")
	sb.WriteString(fmt.Sprintf("  Total: %.6g\n", floats.Sum(vols)))
	sb.WriteString(fmt.Sprintf("  Min: %.6g  Max: %.6g\n", floats.Min(vols), floats.Max(vols)))

	return sb.String()
}
