package partitions

import (
	"math"
	"slices"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// PartitionBuilder constructs partitions from mesh connectivity
type PartitionBuilder struct {
	// Mesh connectivity
	Mesh *MeshConnectivity

	// Desired elements per partition, used by the block and round robin
	// strategies
	TargetPartitionSize int
	Strategy            PartitionStrategy
}

// MeshConnectivity provides the mesh topology needed for partitioning
type MeshConnectivity struct {
	NumElements int

	// Face connectivity: EToE[k][f] is the element across face f of k, k
	// itself on the boundary; EToF[k][f] is the face index on that element
	EToE [][]int
	EToF [][]int

	// Material label of each element
	Labels []int
}

// PartitionStrategy defines how elements are grouped
type PartitionStrategy int

const (
	// LabelRegions groups face-connected elements of equal label
	LabelRegions PartitionStrategy = iota

	// Simple strategies
	BlockPartition // Consecutive elements
	RoundRobin     // Distribute cyclically
)

func (s PartitionStrategy) String() string {
	switch s {
	case LabelRegions:
		return "LabelRegions"
	case BlockPartition:
		return "BlockPartition"
	case RoundRobin:
		return "RoundRobin"
	}
	return "Unknown"
}

// BuildPartitions creates a partition layout from mesh connectivity
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if err := pb.Mesh.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid mesh connectivity")
	}

	var (
		eToP          []int
		numPartitions int
	)
	switch pb.Strategy {
	case LabelRegions:
		eToP, numPartitions = pb.labelRegions()
	case BlockPartition, RoundRobin:
		numPartitions = pb.calculateNumPartitions()
		eToP = pb.partitionElements(numPartitions)
	default:
		return nil, errors.Errorf("unknown partition strategy %d", pb.Strategy)
	}

	layout := &PartitionLayout{
		Partitions:    pb.createPartitions(eToP, numPartitions),
		TotalElements: pb.Mesh.NumElements,
		NumPartitions: numPartitions,
		EToP:          eToP,
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, errors.Wrap(err, "invalid partition layout")
	}
	glog.V(1).Infof("%v: %d elements in %d partitions", pb.Strategy, layout.TotalElements, numPartitions)

	return layout, nil
}

func (mc *MeshConnectivity) validate() error {
	if len(mc.EToE) != mc.NumElements || len(mc.EToF) != mc.NumElements {
		return errors.Errorf("%d elements with %d EToE and %d EToF rows",
			mc.NumElements, len(mc.EToE), len(mc.EToF))
	}
	if mc.Labels != nil && len(mc.Labels) != mc.NumElements {
		return errors.Errorf("%d labels for %d elements", len(mc.Labels), mc.NumElements)
	}
	for k, row := range mc.EToE {
		for f, nb := range row {
			if nb < 0 || nb >= mc.NumElements {
				return errors.Errorf("element %d face %d: neighbor %d out of range", k, f, nb)
			}
		}
	}
	return nil
}

func (mc *MeshConnectivity) label(k int) int {
	if mc.Labels == nil {
		return 0
	}
	return mc.Labels[k]
}

// labelRegions assigns one partition per connected component of the graph
// joining face neighbors with equal labels. Partitions are numbered by their
// lowest element.
func (pb *PartitionBuilder) labelRegions() ([]int, int) {
	g := simple.NewUndirectedGraph()
	for k := 0; k < pb.Mesh.NumElements; k++ {
		g.AddNode(simple.Node(k))
	}
	for k, row := range pb.Mesh.EToE {
		for _, nb := range row {
			if nb == k || pb.Mesh.label(nb) != pb.Mesh.label(k) {
				continue
			}
			if !g.HasEdgeBetween(int64(k), int64(nb)) {
				g.SetEdge(g.NewEdge(simple.Node(k), simple.Node(nb)))
			}
		}
	}

	components := topo.ConnectedComponents(g)
	lowest := func(c []graph.Node) int64 {
		m := c[0].ID()
		for _, n := range c[1:] {
			m = min(m, n.ID())
		}
		return m
	}
	slices.SortFunc(components, func(a, b []graph.Node) int {
		return int(lowest(a) - lowest(b))
	})

	eToP := make([]int, pb.Mesh.NumElements)
	for p, c := range components {
		for _, n := range c {
			eToP[n.ID()] = p
		}
	}
	return eToP, len(components)
}

// calculateNumPartitions determines the partition count from the target size
func (pb *PartitionBuilder) calculateNumPartitions() int {
	if pb.TargetPartitionSize < 1 {
		return 1
	}
	numPartitions := int(math.Ceil(float64(pb.Mesh.NumElements) / float64(pb.TargetPartitionSize)))

	// Ensure at least one partition
	if numPartitions < 1 {
		numPartitions = 1
	}

	return numPartitions
}

// partitionElements assigns elements to partitions
func (pb *PartitionBuilder) partitionElements(numPartitions int) []int {
	eToP := make([]int, pb.Mesh.NumElements)

	switch pb.Strategy {
	case RoundRobin:
		// Distribute elements cyclically
		for i := 0; i < pb.Mesh.NumElements; i++ {
			eToP[i] = i % numPartitions
		}

	default:
		// Simple block partitioning
		elementsPerPartition := int(math.Ceil(float64(pb.Mesh.NumElements) / float64(numPartitions)))
		for i := 0; i < pb.Mesh.NumElements; i++ {
			eToP[i] = i / elementsPerPartition
			if eToP[i] >= numPartitions {
				eToP[i] = numPartitions - 1
			}
		}
	}

	return eToP
}

// createPartitions builds partition structures from element assignments
func (pb *PartitionBuilder) createPartitions(eToP []int, numPartitions int) []Partition {
	partitions := make([]Partition, numPartitions)

	for i := range partitions {
		partitions[i] = Partition{
			ID:       i,
			Label:    -1,
			Elements: make([]int, 0),
		}
	}

	mixed := make([]bool, numPartitions)
	for elem, part := range eToP {
		p := &partitions[part]
		l := pb.Mesh.label(elem)
		if p.NumElements == 0 {
			p.Label = l
		} else if p.Label != l {
			mixed[part] = true
		}
		p.Elements = append(p.Elements, elem)
		p.NumElements++
	}
	for i := range partitions {
		if mixed[i] {
			partitions[i].Label = -1
		}
	}

	return partitions
}
