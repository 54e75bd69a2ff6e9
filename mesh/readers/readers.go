// Package readers imports tetrahedral meshes written by mesh generators
// (Gmsh, Gambit neutral, SU2) through the gocfd mesh readers.
package readers

import (
	"github.com/golang/glog"
	gmesh "github.com/notargets/gocfd/DG3D/mesh"
	greaders "github.com/notargets/gocfd/DG3D/mesh/readers"
	"github.com/notargets/gocfd/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/tetcomplex/mesh"
)

// Options control the conversion of a file mesh
type Options struct {
	// Config is passed to mesh.New
	Config mesh.Config

	// LabelFromTag takes each tetrahedron's label from its first element
	// tag, the physical group in Gmsh files. Otherwise every label is 0.
	LabelFromTag bool
}

// DefaultOptions accept either tetrahedron orientation and validate the
// result
func DefaultOptions() Options {
	cfg := mesh.DefaultConfig()
	cfg.ReorientInput = true
	return Options{Config: cfg, LabelFromTag: true}
}

// NewMeshFromFile reads a mesh file and builds a mesh from its tetrahedra
func NewMeshFromFile(filename string, opts Options) (*mesh.Mesh, error) {
	gm, err := greaders.ReadMeshFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return FromGocfd(gm, opts)
}

// FromGocfd builds a mesh from the tetrahedra of a gocfd mesh. Other element
// types are skipped; quadratic tetrahedra contribute their corner vertices.
// Vertices not referenced by a tetrahedron are dropped.
func FromGocfd(gm *gmesh.Mesh, opts Options) (*mesh.Mesh, error) {
	var (
		points  []r3.Vec
		EToV    [][]int
		labels  []int
		index   = make(map[int]int)
		skipped int
	)
	for i, etype := range gm.ElementTypes {
		if etype != utils.Tet && etype != utils.Tet10 {
			skipped++
			continue
		}
		verts := gm.EtoV[i]
		if len(verts) < 4 {
			return nil, errors.Errorf("element %d: %v with %d vertices", i, etype, len(verts))
		}
		elem := make([]int, 4)
		for j, v := range verts[:4] {
			if v < 0 || v >= len(gm.Vertices) {
				return nil, errors.Errorf("element %d references vertex %d of %d", i, v, len(gm.Vertices))
			}
			id, ok := index[v]
			if !ok {
				c := gm.Vertices[v]
				if len(c) < 3 {
					return nil, errors.Errorf("vertex %d has %d coordinates", v, len(c))
				}
				id = len(points)
				index[v] = id
				points = append(points, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
			}
			elem[j] = id
		}
		EToV = append(EToV, elem)
		labels = append(labels, elementLabel(gm, i, opts))
	}
	if len(EToV) == 0 {
		return nil, errors.New("no tetrahedra in mesh")
	}
	if skipped > 0 {
		glog.V(1).Infof("skipped %d non-tetrahedral elements", skipped)
	}
	m, err := mesh.New(points, EToV, labels, opts.Config)
	if err != nil {
		return nil, errors.Wrap(err, "converting mesh")
	}
	return m, nil
}

func elementLabel(gm *gmesh.Mesh, i int, opts Options) int {
	if !opts.LabelFromTag || i >= len(gm.ElementTags) || len(gm.ElementTags[i]) == 0 {
		return 0
	}
	return gm.ElementTags[i][0]
}
