package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to build connectivity arrays (EToE, EToF) from a face map,
// used as an independent reference for the sorted-ID matcher
func buildConnectivity(EToV [][]int) (EToE, EToF [][]int) {
	K := len(EToV)
	EToE = make([][]int, K)
	EToF = make([][]int, K)
	for e := 0; e < K; e++ {
		EToE[e] = []int{e, e, e, e}
		EToF[e] = []int{0, 1, 2, 3}
	}

	type faceSignature struct {
		elem, face int
	}
	faceMap := make(map[[3]int]faceSignature)
	for e := 0; e < K; e++ {
		for f := 0; f < 4; f++ {
			var v [3]int
			for i := 0; i < 3; i++ {
				v[i] = EToV[e][FaceVertices[f][i]]
			}
			if v[0] > v[1] {
				v[0], v[1] = v[1], v[0]
			}
			if v[1] > v[2] {
				v[1], v[2] = v[2], v[1]
			}
			if v[0] > v[1] {
				v[0], v[1] = v[1], v[0]
			}
			if existing, found := faceMap[v]; found {
				EToE[e][f] = existing.elem
				EToF[e][f] = existing.face
				EToE[existing.elem][existing.face] = e
				EToF[existing.elem][existing.face] = f
			} else {
				faceMap[v] = faceSignature{e, f}
			}
		}
	}
	return EToE, EToF
}

// Four tets around the edge (0,1) of an octahedron
var octahedron = [][]int{
	{0, 1, 2, 3},
	{0, 1, 3, 4},
	{0, 1, 4, 5},
	{0, 1, 5, 2},
}

func TestFaceConnectorSingleTet(t *testing.T) {
	fc, err := NewFaceConnector([][]int{{0, 1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 4, len(fc.Faces))
	assert.Equal(t, 4, fc.NumBoundaryFaces())
	assert.Equal(t, []int{0, 0, 0, 0}, fc.EToE[0])
	assert.Equal(t, []int{0, 1, 2, 3}, fc.EToF[0])
	require.NoError(t, fc.Verify())
}

func TestFaceConnectorTwoTets(t *testing.T) {
	EToV := [][]int{{0, 1, 2, 3}, {0, 2, 1, 4}}
	fc, err := NewFaceConnector(EToV)
	require.NoError(t, err)

	// 4 + 4 faces, one shared
	assert.Equal(t, 7, len(fc.Faces))
	assert.Equal(t, 6, fc.NumBoundaryFaces())
	assert.Equal(t, 1, fc.EToE[0][0])
	assert.Equal(t, 0, fc.EToF[0][0])
	assert.Equal(t, 0, fc.EToE[1][0])
	assert.Equal(t, fc.EToGF[0][0], fc.EToGF[1][0])

	shared := fc.Faces[fc.EToGF[0][0]]
	assert.Equal(t, [3]int{0, 1, 2}, shared.Vertices)
	assert.Equal(t, []int{0, 1}, shared.Elements)
	assert.False(t, shared.IsBoundary())
	require.NoError(t, fc.Verify())
}

func TestTiConnect3DMatchesReference(t *testing.T) {
	EToE, EToF, err := TiConnect3D(octahedron)
	require.NoError(t, err)
	refE, refF := buildConnectivity(octahedron)
	assert.Equal(t, refE, EToE)
	assert.Equal(t, refF, EToF)
}

func TestFaceConnectorErrors(t *testing.T) {
	tests := []struct {
		name string
		EToV [][]int
	}{
		{"empty", nil},
		{"short element", [][]int{{0, 1, 2}}},
		{"negative vertex", [][]int{{0, 1, 2, -1}}},
		{"repeated vertex", [][]int{{0, 1, 1, 3}}},
		{"non manifold face", [][]int{{0, 1, 2, 3}, {0, 2, 1, 4}, {0, 1, 2, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFaceConnector(tt.EToV)
			assert.Error(t, err)
		})
	}
}
