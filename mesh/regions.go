package mesh

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/notargets/tetcomplex/partitions"
)

// Connectivity numbers the live tetrahedra in handle order and returns their
// face connectivity and labels, along with the numbering
func (m *Mesh) Connectivity() (*partitions.MeshConnectivity, []TetKey) {
	tets := m.k.Tets()
	index := make(map[TetKey]int, len(tets))
	for i, t := range tets {
		index[t] = i
	}
	mc := &partitions.MeshConnectivity{
		NumElements: len(tets),
		EToE:        make([][]int, len(tets)),
		EToF:        make([][]int, len(tets)),
		Labels:      make([]int, len(tets)),
	}
	for i, t := range tets {
		mc.EToE[i] = make([]int, 4)
		mc.EToF[i] = make([]int, 4)
		mc.Labels[i] = m.k.Label(t)
		for j, f := range m.k.TetFaces(t) {
			mc.EToE[i][j], mc.EToF[i][j] = i, j
			nb := m.GetTet(t, f)
			if !nb.IsValid() {
				continue
			}
			nf := m.k.TetFaces(nb)
			mc.EToE[i][j] = index[nb]
			mc.EToF[i][j] = slices.Index(nf[:], f)
		}
	}
	return mc, tets
}

// Regions decomposes the mesh into face-connected regions of equal label.
// Partition elements index into the returned tetrahedra.
func (m *Mesh) Regions() (*partitions.PartitionLayout, []TetKey, error) {
	return m.Partition(partitions.LabelRegions, 0)
}

// Partition groups the tetrahedra with the given strategy. targetSize is the
// number of tetrahedra per partition for the block and round robin
// strategies and is ignored by LabelRegions.
func (m *Mesh) Partition(strategy partitions.PartitionStrategy, targetSize int) (*partitions.PartitionLayout, []TetKey, error) {
	mc, tets := m.Connectivity()
	pb := &partitions.PartitionBuilder{Mesh: mc, TargetPartitionSize: targetSize, Strategy: strategy}
	layout, err := pb.BuildPartitions()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%v partitioning", strategy)
	}
	return layout, tets, nil
}
