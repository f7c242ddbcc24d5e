package spherevis

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// Face is a polygon given as indices into a mesh's vertex list.
type Face []int

// Fan splits the face into triangles that all share its first vertex. The
// triples index into the face itself, not into the mesh.
func (f Face) Fan() [][3]int {
	if len(f) < 3 {
		return nil
	}
	tris := make([][3]int, 0, len(f)-2)
	for t := 1; t < len(f)-1; t++ {
		tris = append(tris, [3]int{0, t, t + 1})
	}
	return tris
}

// Edges returns consecutive vertex pairs, including the closing edge back to
// the first vertex.
func (f Face) Edges() [][2]int {
	if len(f) < 2 {
		return nil
	}
	edges := make([][2]int, len(f))
	for j := range f {
		edges[j] = [2]int{f[j], f[(j+1)%len(f)]}
	}
	return edges
}

// StarShaped reports whether every fan triangle of the polygon turns the same
// way on the sphere. Degenerate (collinear) fan triangles are ignored.
func StarShaped(points []mgl64.Vec3) bool {
	if len(points) < 4 {
		return true
	}
	origin := toS2(points[0])
	var want s2.Direction
	for t := 1; t < len(points)-1; t++ {
		dir := s2.RobustSign(origin, toS2(points[t]), toS2(points[t+1]))
		if dir == s2.Indeterminate {
			continue
		}
		if want == s2.Indeterminate {
			want = dir
			continue
		}
		if dir != want {
			return false
		}
	}
	return true
}

func toS2(v mgl64.Vec3) s2.Point {
	return s2.Point{Vector: r3.Vector{X: v[0], Y: v[1], Z: v[2]}.Normalize()}
}
