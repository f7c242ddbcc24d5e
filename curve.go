package spherevis

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

const DefaultArcSegments = 100

// SphericalCurve is a line strip hugging a sphere between two directions.
type SphericalCurve struct {
	Points []mgl64.Vec3
	Color  color.RGBA
}

// NewSphericalCurve builds segments+1 points between the directions of pointA
// and pointB, each at distance radius+add from the origin.
//
// Each point is a straight lerp between the two unit directions pushed back out
// onto the sphere. That only matches the great circle at the end points; the
// deviation grows with the angle between A and B and shrinks with more
// segments. Zero-length inputs or antipodal directions yield NaN points.
func NewSphericalCurve(pointA, pointB mgl64.Vec3, radius, add float64, segments int, clr color.RGBA) *SphericalCurve {
	if segments < 1 {
		segments = 1
	}

	v0 := pointA.Normalize()
	v1 := pointB.Normalize()

	points := make([]mgl64.Vec3, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		p := lerp(v0, v1, t).Normalize().Mul(radius + add)
		points = append(points, p)
	}

	return &SphericalCurve{Points: points, Color: clr}
}

func (c *SphericalCurve) SegmentCount() int {
	if len(c.Points) == 0 {
		return 0
	}
	return len(c.Points) - 1
}
