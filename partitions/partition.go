package partitions

import (
	"math"

	"github.com/pkg/errors"
)

// Partition is a set of tetrahedra grouped together, for example a connected
// region of one material label
type Partition struct {
	// Unique identifier for this partition
	ID int

	// Label shared by every element, -1 when the partition mixes labels
	Label int

	// Element membership
	Elements    []int // Global element indices in this partition
	NumElements int
}

// PartitionLayout manages the complete mesh decomposition
type PartitionLayout struct {
	// All partitions in the mesh
	Partitions []Partition

	TotalElements int // Sum of all actual elements across partitions
	NumPartitions int // Total number of partitions

	// Element to partition mapping
	EToP []int // Length TotalElements: element k belongs to partition EToP[k]
}

// InterfaceFace is a face whose two elements sit in different partitions
type InterfaceFace struct {
	Element, Face                int
	Neighbor, NeighborFace       int
	Partition, NeighborPartition int
}

// ValidateLayout checks partition consistency
func (pl *PartitionLayout) ValidateLayout() error {
	if len(pl.Partitions) != pl.NumPartitions {
		return errors.Errorf("%d partitions, NumPartitions %d", len(pl.Partitions), pl.NumPartitions)
	}
	if len(pl.EToP) != pl.TotalElements {
		return errors.Errorf("EToP has %d entries for %d elements", len(pl.EToP), pl.TotalElements)
	}
	seen := make([]bool, pl.TotalElements)
	var total int
	for i, p := range pl.Partitions {
		if p.ID != i {
			return errors.Errorf("partition %d has ID %d", i, p.ID)
		}
		if p.NumElements != len(p.Elements) {
			return errors.Errorf("partition %d: NumElements %d != %d elements",
				p.ID, p.NumElements, len(p.Elements))
		}
		for _, k := range p.Elements {
			if k < 0 || k >= pl.TotalElements {
				return errors.Errorf("partition %d: element %d out of range", p.ID, k)
			}
			if seen[k] {
				return errors.Errorf("element %d appears in more than one partition", k)
			}
			seen[k] = true
			if pl.EToP[k] != p.ID {
				return errors.Errorf("element %d: EToP %d != partition %d", k, pl.EToP[k], p.ID)
			}
		}
		total += p.NumElements
	}
	if total != pl.TotalElements {
		return errors.Errorf("partitions hold %d of %d elements", total, pl.TotalElements)
	}
	return nil
}

// InterfaceFaces lists each face between two partitions once, from the side
// of the lower element index
func (pl *PartitionLayout) InterfaceFaces(mesh *MeshConnectivity) (faces []InterfaceFace) {
	for k := 0; k < mesh.NumElements; k++ {
		for f, nb := range mesh.EToE[k] {
			if nb <= k {
				continue
			}
			if pl.EToP[k] == pl.EToP[nb] {
				continue
			}
			faces = append(faces, InterfaceFace{
				Element:           k,
				Face:              f,
				Neighbor:          nb,
				NeighborFace:      mesh.EToF[k][f],
				Partition:         pl.EToP[k],
				NeighborPartition: pl.EToP[nb],
			})
		}
	}
	return
}

// PartitionStatistics computes load balance metrics
func (pl *PartitionLayout) PartitionStatistics() PartitionStats {
	stats := PartitionStats{
		NumPartitions: pl.NumPartitions,
		MinElements:   math.MaxInt32,
	}
	if pl.NumPartitions == 0 {
		stats.MinElements = 0
		return stats
	}
	stats.AvgElements = float64(pl.TotalElements) / float64(pl.NumPartitions)

	for _, p := range pl.Partitions {
		if p.NumElements < stats.MinElements {
			stats.MinElements = p.NumElements
		}
		if p.NumElements > stats.MaxElements {
			stats.MaxElements = p.NumElements
		}
	}

	if stats.AvgElements > 0 {
		stats.Imbalance = float64(stats.MaxElements) / stats.AvgElements
	}

	return stats
}

type PartitionStats struct {
	NumPartitions int
	MinElements   int
	MaxElements   int
	AvgElements   float64
	Imbalance     float64 // MaxElements / AvgElements
}
