package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	globeSegments = 48
	globeRings    = 24
)

// uvSphere generates the vertices and triangle indices of a UV sphere with
// its poles on the z axis.
func uvSphere(radius float64, segments, rings int) ([]mgl64.Vec3, []uint32) {
	if segments <= 0 {
		segments = globeSegments
	}
	if rings <= 0 {
		rings = globeRings
	}

	vertices := make([]mgl64.Vec3, 0, (rings+1)*(segments+1))
	for ring := 0; ring <= rings; ring++ {
		theta := float64(ring) * math.Pi / float64(rings)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)

		for seg := 0; seg <= segments; seg++ {
			phi := float64(seg) * 2 * math.Pi / float64(segments)
			vertices = append(vertices, mgl64.Vec3{
				math.Cos(phi) * sinTheta * radius,
				math.Sin(phi) * sinTheta * radius,
				cosTheta * radius,
			})
		}
	}

	indices := make([]uint32, 0, rings*segments*6)
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments) + 1

			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	return vertices, indices
}
