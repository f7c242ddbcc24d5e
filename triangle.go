package spherevis

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultHover        = 1.0
	DefaultEdgeVertices = 50
)

// SphericalTriangle is an indexed triangle patch covering the spherical triangle
// between three corners.
type SphericalTriangle struct {
	Vertices []mgl64.Vec3
	Indices  []uint32
	Color    color.RGBA
}

// NewSphericalTriangle tessellates the spherical triangle a-b-c. Vertices are
// laid out column by column on a triangular lattice with edgeVertices+2 points
// along each side, then pushed out to distance hover from the origin.
//
// Column 0 runs along edge a-b. Collinear or coincident corners are not
// rejected.
func NewSphericalTriangle(a, b, c mgl64.Vec3, hover float64, edgeVertices int, clr color.RGBA) *SphericalTriangle {
	if edgeVertices < 0 {
		edgeVertices = 0
	}

	vectorA := setLength(a, 1)
	vectorB := setLength(b, 1)
	vectorC := setLength(c, 1)

	n := edgeVertices
	side := n + 2
	vertices := make([]mgl64.Vec3, 0, side*(side+1)/2)

	for col := 0; col < side; col++ {
		for row := 0; row < side-col; row++ {
			rowT := float64(row) / float64(n+1)
			curr := lerp(vectorA, vectorB, rowT)
			ghost := lerp(vectorC, vectorB, rowT)

			curr = lerp(curr, ghost, float64(col)/math.Max(float64(n+1-row), 1))
			vertices = append(vertices, setLength(curr, hover))
		}
	}

	indices := make([]uint32, 0, 3*(n+1)*(n+1))
	for col := 0; col < n+1; col++ {
		prevColStart := ColumnStartIndex(col-1, n)
		colStart := ColumnStartIndex(col, n)
		nextColStart := ColumnStartIndex(col+1, n)
		for row := 0; row < n+1-col; row++ {
			indices = append(indices,
				uint32(colStart+row), uint32(colStart+row+1), uint32(nextColStart+row))
			if col > 0 {
				indices = append(indices,
					uint32(colStart+row), uint32(colStart+row+1), uint32(prevColStart+row+1))
			}
		}
	}

	return &SphericalTriangle{
		Vertices: vertices,
		Indices:  indices,
		Color:    clr,
	}
}

// ColumnStartIndex returns the flat index of the first vertex of a lattice
// column. Each column is one row shorter than the one before it.
func ColumnStartIndex(col, edgeVertices int) int {
	return col*(edgeVertices+2) - col*(col-1)/2
}

func (t *SphericalTriangle) TriangleCount() int {
	return len(t.Indices) / 3
}

// Triangle returns the corner positions of the i-th triangle.
func (t *SphericalTriangle) Triangle(i int) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{
		t.Vertices[t.Indices[3*i]],
		t.Vertices[t.Indices[3*i+1]],
		t.Vertices[t.Indices[3*i+2]],
	}
}
