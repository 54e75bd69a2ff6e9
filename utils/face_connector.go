package utils

import (
	"sort"

	"github.com/pkg/errors"
)

// FaceConnector matches the faces of a tetrahedral element list and assigns
// every distinct face a global number
type FaceConnector struct {
	// Mesh dimensions
	K      int // Total elements
	Nfaces int // Faces per element
	Nv     int // Vertices referenced by EToV

	// Element connectivity, boundary faces are self connected
	EToE [][]int // Element to neighbor element [K][Nfaces]
	EToF [][]int // Element to neighbor local face [K][Nfaces]

	// Global face numbering
	EToGF [][]int // Element local face → global face [K][Nfaces]
	Faces []Face  // Distinct faces, indexed by global face number
}

// Face is one distinct triangle of the element list
type Face struct {
	Vertices   [3]int // Sorted vertex indices
	Elements   []int  // One (boundary) or two (interior) elements
	LocalFaces []int  // Local face number within each element
}

// IsBoundary reports whether only one element owns the face
func (f Face) IsBoundary() bool {
	return len(f.Elements) == 1
}

// FaceVertices is the vertex set of each local tetrahedron face, compatible
// with element.TetFaceVertices
var FaceVertices = [4][3]int{
	{0, 1, 2}, // Face 0
	{0, 1, 3}, // Face 1
	{1, 2, 3}, // Face 2
	{0, 2, 3}, // Face 3
}

// NewFaceConnector builds face connectivity for the tetrahedra in EToV
func NewFaceConnector(EToV [][]int) (*FaceConnector, error) {
	const Nfaces = 4
	K := len(EToV)
	if K == 0 {
		return nil, errors.New("empty element list")
	}

	// Validate element definitions and size the vertex range
	Nv := 0
	for k, elem := range EToV {
		if len(elem) != 4 {
			return nil, errors.Errorf("element %d has %d vertices, want 4", k, len(elem))
		}
		for i, v := range elem {
			if v < 0 {
				return nil, errors.Errorf("element %d references negative vertex %d", k, v)
			}
			for _, w := range elem[:i] {
				if v == w {
					return nil, errors.Errorf("element %d repeats vertex %d", k, v)
				}
			}
			if v+1 > Nv {
				Nv = v + 1
			}
		}
	}

	type faceEntry struct {
		nodes    [3]int // sorted node indices
		elem     int    // element index
		faceNum  int    // local face number (0-3)
		globalID int64  // unique face identifier
	}

	// Extract all faces from all elements
	entries := make([]faceEntry, 0, K*Nfaces)
	for k := 0; k < K; k++ {
		for f := 0; f < Nfaces; f++ {
			var fn [3]int
			for i := 0; i < 3; i++ {
				fn[i] = EToV[k][FaceVertices[f][i]]
			}
			sort.Ints(fn[:])
			// id = n1*Nv^2 + n2*Nv + n3
			id := int64(fn[0])*int64(Nv)*int64(Nv) + int64(fn[1])*int64(Nv) + int64(fn[2])
			entries = append(entries, faceEntry{nodes: fn, elem: k, faceNum: f, globalID: id})
		}
	}

	// Stable so that faces sharing an ID stay in element order
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].globalID < entries[j].globalID
	})

	fc := &FaceConnector{
		K:      K,
		Nfaces: Nfaces,
		Nv:     Nv,
		EToE:   make([][]int, K),
		EToF:   make([][]int, K),
		EToGF:  make([][]int, K),
	}
	for k := 0; k < K; k++ {
		fc.EToE[k] = []int{k, k, k, k}
		fc.EToF[k] = []int{0, 1, 2, 3}
		fc.EToGF[k] = make([]int, Nfaces)
	}

	// Group matching faces
	for i := 0; i < len(entries); {
		j := i + 1
		for j < len(entries) && entries[j].globalID == entries[i].globalID {
			j++
		}
		if j-i > 2 {
			return nil, errors.Errorf("face %v is shared by %d elements, the mesh is not a manifold",
				entries[i].nodes, j-i)
		}
		gf := len(fc.Faces)
		face := Face{Vertices: entries[i].nodes}
		for _, e := range entries[i:j] {
			face.Elements = append(face.Elements, e.elem)
			face.LocalFaces = append(face.LocalFaces, e.faceNum)
			fc.EToGF[e.elem][e.faceNum] = gf
		}
		if j-i == 2 {
			e1, e2 := entries[i], entries[i+1]
			if e1.elem == e2.elem {
				return nil, errors.Errorf("element %d contains face %v twice", e1.elem, e1.nodes)
			}
			fc.EToE[e1.elem][e1.faceNum] = e2.elem
			fc.EToF[e1.elem][e1.faceNum] = e2.faceNum
			fc.EToE[e2.elem][e2.faceNum] = e1.elem
			fc.EToF[e2.elem][e2.faceNum] = e1.faceNum
		}
		fc.Faces = append(fc.Faces, face)
		i = j
	}

	return fc, nil
}

// TiConnect3D returns element-to-element and element-to-face connectivity.
// For boundary faces, elements remain self-connected (EToE[k][f] = k, EToF[k][f] = f)
func TiConnect3D(EToV [][]int) (EToE, EToF [][]int, err error) {
	fc, err := NewFaceConnector(EToV)
	if err != nil {
		return nil, nil, err
	}
	return fc.EToE, fc.EToF, nil
}

// NumBoundaryFaces counts faces owned by a single element
func (fc *FaceConnector) NumBoundaryFaces() (n int) {
	for _, f := range fc.Faces {
		if f.IsBoundary() {
			n++
		}
	}
	return
}

// Verify checks that the connectivity is symmetric
func (fc *FaceConnector) Verify() error {
	for k := 0; k < fc.K; k++ {
		for f := 0; f < fc.Nfaces; f++ {
			nk, nf := fc.EToE[k][f], fc.EToF[k][f]
			if nk == k {
				if nf != f {
					return errors.Errorf("boundary face %d of element %d maps to face %d", f, k, nf)
				}
				continue
			}
			if fc.EToE[nk][nf] != k || fc.EToF[nk][nf] != f {
				return errors.Errorf("asymmetric connection: element %d face %d -> element %d face %d",
					k, f, nk, nf)
			}
			if fc.EToGF[k][f] != fc.EToGF[nk][nf] {
				return errors.Errorf("elements %d and %d disagree on global face number", k, nk)
			}
		}
	}
	return nil
}
