package spherevis

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFaceFan(t *testing.T) {
	testCases := []struct {
		name     string
		face     Face
		expected [][3]int
	}{
		{"degenerate", Face{0, 1}, nil},
		{"triangle", Face{4, 5, 6}, [][3]int{{0, 1, 2}}},
		{"square", Face{0, 1, 2, 3}, [][3]int{{0, 1, 2}, {0, 2, 3}}},
		{"pentagon", Face{9, 8, 7, 6, 5}, [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.face.Fan(); !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Fan() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestFaceEdges(t *testing.T) {
	got := Face{3, 7, 1, 2}.Edges()
	want := [][2]int{{3, 7}, {7, 1}, {1, 2}, {2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
	if (Face{1}).Edges() != nil {
		t.Error("single vertex face should have no edges")
	}
}

func geoPoints(pts ...GeoPoint) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(pts))
	for i, p := range pts {
		out[i] = p.Cartesian(1)
	}
	return out
}

func TestStarShaped(t *testing.T) {
	testCases := []struct {
		name   string
		points []mgl64.Vec3
		want   bool
	}{
		{
			name:   "triangle",
			points: geoPoints(GeoPoint{0, 0}, GeoPoint{0, 10}, GeoPoint{10, 0}),
			want:   true,
		},
		{
			name:   "convex square",
			points: geoPoints(GeoPoint{0, 0}, GeoPoint{0, 10}, GeoPoint{10, 10}, GeoPoint{10, 0}),
			want:   true,
		},
		{
			name:   "reflex at second fan triangle",
			points: geoPoints(GeoPoint{0, 0}, GeoPoint{0, 10}, GeoPoint{10, 10}, GeoPoint{2, 6}, GeoPoint{10, 0}),
			want:   false,
		},
		{
			name: "concave but star from first vertex",
			points: geoPoints(
				GeoPoint{0, 0}, GeoPoint{0, 10}, GeoPoint{10, 10}, GeoPoint{8, 5}, GeoPoint{10, 0}),
			want: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StarShaped(tc.points); got != tc.want {
				t.Errorf("StarShaped() = %v, want %v", got, tc.want)
			}
		})
	}
}
