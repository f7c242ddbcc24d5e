package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const float64EqualityThreshold = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

func TestProjectOriginIsScreenCentre(t *testing.T) {
	c := NewCamera(800, 600)
	sp, ok := c.Projector().Project(mgl64.Vec3{})
	if !ok {
		t.Fatal("origin should be in front of the camera")
	}
	if !almostEqual(float64(sp.X), 400) || !almostEqual(float64(sp.Y), 300) {
		t.Errorf("origin projected to (%f, %f), want (400, 300)", sp.X, sp.Y)
	}
	if !almostEqual(sp.Depth, c.Distance) {
		t.Errorf("depth = %f, want %f", sp.Depth, c.Distance)
	}
}

func TestProjectOrientation(t *testing.T) {
	p := NewCamera(800, 600).Projector()

	up, _ := p.Project(mgl64.Vec3{0, 0.5, 0})
	if up.Y >= 300 {
		t.Errorf("point above origin projected to y=%f, want < 300", up.Y)
	}
	right, _ := p.Project(mgl64.Vec3{0.5, 0, 0})
	if right.X <= 400 {
		t.Errorf("point right of origin projected to x=%f, want > 400", right.X)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	c := NewCamera(800, 600)
	if _, ok := c.Projector().Project(mgl64.Vec3{0, 0, c.Distance + 1}); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestFacing(t *testing.T) {
	p := NewCamera(800, 600).Projector()

	testCases := []struct {
		name  string
		point mgl64.Vec3
		want  bool
	}{
		{"near pole", mgl64.Vec3{0, 0, 1}, true},
		{"far pole", mgl64.Vec3{0, 0, -1}, false},
		{"just in front of the limb", mgl64.Vec3{0.9, 0, 0.4}, true},
		{"just behind the limb", mgl64.Vec3{0.9, 0, -0.1}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Facing(tc.point); got != tc.want {
				t.Errorf("Facing(%v) = %v, want %v", tc.point, got, tc.want)
			}
		})
	}
}

func TestRotateKeepsUnitQuaternion(t *testing.T) {
	c := NewCamera(800, 600)
	for i := 0; i < 100; i++ {
		c.Rotate(13, -7)
	}
	if !almostEqual(c.Orientation.Len(), 1) {
		t.Errorf("orientation length = %f, want 1", c.Orientation.Len())
	}
}

func TestRotateTurnsWorld(t *testing.T) {
	c := NewCamera(800, 600)
	c.Rotate(math.Pi/2/rotateSpeed, 0)

	// a quarter turn about y brings -x to the near side
	sp, ok := c.Projector().Project(mgl64.Vec3{-1, 0, 0})
	if !ok {
		t.Fatal("point should project")
	}
	if !almostEqual(sp.Depth, c.Distance-1) {
		t.Errorf("depth = %f, want %f", sp.Depth, c.Distance-1)
	}
}

func TestZoomClamps(t *testing.T) {
	c := NewCamera(800, 600)
	c.Zoom(1000)
	if c.Distance != minDistance {
		t.Errorf("distance = %f, want %f", c.Distance, minDistance)
	}
	c.Zoom(-1000)
	if c.Distance != maxDistance {
		t.Errorf("distance = %f, want %f", c.Distance, maxDistance)
	}
}

func TestPixelSize(t *testing.T) {
	p := NewCamera(800, 600).Projector()
	near := p.PixelSize(0.1, 2)
	far := p.PixelSize(0.1, 4)
	if !almostEqual(float64(near), 2*float64(far)) {
		t.Errorf("pixel size should halve with double depth, got %f and %f", near, far)
	}
	if p.PixelSize(1, 0) != 0 {
		t.Error("zero depth should give zero size")
	}
}
