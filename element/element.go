package element

import "fmt"

// Dimensionality is the topological dimension of a simplex
type Dimensionality uint8

const (
	D0 Dimensionality = iota // Node
	D1                       // Edge
	D2                       // Face (triangle)
	D3                       // Tetrahedron
)

// NumDimensions is the number of simplex dimensions in a tetrahedral complex
const NumDimensions = 4

// NumVertices is the number of corner nodes of a simplex of dimension d
func (d Dimensionality) NumVertices() int {
	return int(d) + 1
}

func (d Dimensionality) String() string {
	switch d {
	case D0:
		return "Node"
	case D1:
		return "Edge"
	case D2:
		return "Face"
	case D3:
		return "Tet"
	}
	return fmt.Sprintf("Dimensionality(%d)", uint8(d))
}
