package element

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tetrahedron vertex tables shared by the kernel and connectivity builders.
//
// TetFaceVertices lists the local vertices of each face, wound so the face
// normal (right hand rule) points out of a positively oriented tetrahedron.
// Face f uses the same vertex set as face f of the gocfd tiConnect3D table
// {0,1,2},{0,1,3},{1,2,3},{0,2,3}, so face numbers are interchangeable.
var TetFaceVertices = [4][3]int{
	{0, 2, 1}, // Face 0, opposite vertex 3
	{0, 1, 3}, // Face 1, opposite vertex 2
	{1, 2, 3}, // Face 2, opposite vertex 0
	{0, 3, 2}, // Face 3, opposite vertex 1
}

// TetEdgeVertices lists the local vertex pairs of the six tetrahedron edges
var TetEdgeVertices = [6][2]int{
	{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3},
}

// SignedVolume of the tetrahedron (a,b,c,d). Positive when d lies on the
// side of triangle (a,b,c) that its counter clockwise normal points to.
func SignedVolume(a, b, c, d r3.Vec) float64 {
	return r3.Dot(r3.Sub(b, a), r3.Cross(r3.Sub(c, a), r3.Sub(d, a))) / 6
}

// Barycenter of an arbitrary set of points, the zero vector if empty
func Barycenter(pts ...r3.Vec) (bc r3.Vec) {
	if len(pts) == 0 {
		return
	}
	for _, p := range pts {
		bc = r3.Add(bc, p)
	}
	return r3.Scale(1/float64(len(pts)), bc)
}

// AreaNormal is the non-normalized normal of triangle (a,b,c), with length
// equal to twice the triangle area
func AreaNormal(a, b, c r3.Vec) r3.Vec {
	return r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
}

// Normal is the unit normal of triangle (a,b,c). Degenerate triangles yield
// NaN components.
func Normal(a, b, c r3.Vec) r3.Vec {
	n := AreaNormal(a, b, c)
	return r3.Scale(1/r3.Norm(n), n)
}

// Area of triangle (a,b,c)
func Area(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(AreaNormal(a, b, c))
}

// Length of segment (a,b)
func Length(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// HasNaN reports whether any component of v is NaN
func HasNaN(v r3.Vec) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}
