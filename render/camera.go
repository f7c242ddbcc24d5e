package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	defaultDistance = 3.0
	minDistance     = 1.2
	maxDistance     = 20.0
	rotateSpeed     = 0.005
	zoomStep        = 0.9
)

// Camera orbits the origin. The world is turned by Orientation and viewed
// from Distance along +z.
type Camera struct {
	Width, Height int
	FovY          float64
	Near, Far     float64
	Distance      float64
	Orientation   mgl64.Quat
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Width:       width,
		Height:      height,
		FovY:        mgl64.DegToRad(45),
		Near:        0.1,
		Far:         100,
		Distance:    defaultDistance,
		Orientation: mgl64.QuatIdent(),
	}
}

func (c *Camera) Eye() mgl64.Vec3 {
	return mgl64.Vec3{0, 0, c.Distance}
}

// ViewMatrix maps world space to camera space.
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	lookAt := mgl64.LookAtV(c.Eye(), mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	return lookAt.Mul4(c.Orientation.Mat4())
}

func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	aspect := 1.0
	if c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}
	return mgl64.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// Rotate turns the world by a mouse drag of dx, dy pixels.
func (c *Camera) Rotate(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	yaw := mgl64.QuatRotate(dx*rotateSpeed, mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(dy*rotateSpeed, mgl64.Vec3{1, 0, 0})
	c.Orientation = yaw.Mul(pitch).Mul(c.Orientation).Normalize()
}

// Zoom moves the camera in for positive steps and out for negative ones.
func (c *Camera) Zoom(steps float64) {
	c.Distance *= math.Pow(zoomStep, steps)
	c.Distance = mgl64.Clamp(c.Distance, minDistance, maxDistance)
}

// Projector is a per-frame snapshot of the camera transforms.
type Projector struct {
	view   mgl64.Mat4
	mvp    mgl64.Mat4
	near   float64
	width  float64
	height float64
	focal  float64
	center mgl64.Vec3
}

func (c *Camera) Projector() *Projector {
	view := c.ViewMatrix()
	return &Projector{
		view:   view,
		mvp:    c.ProjectionMatrix().Mul4(view),
		near:   c.Near,
		width:  float64(c.Width),
		height: float64(c.Height),
		focal:  float64(c.Height) / 2 / math.Tan(c.FovY/2),
		center: mgl64.TransformCoordinate(mgl64.Vec3{}, view),
	}
}

// ScreenPoint is a projected position. Depth is the distance in front of the
// camera.
type ScreenPoint struct {
	X, Y  float32
	Depth float64
}

// Project maps a world point onto the screen. ok is false for points behind
// the near plane.
func (p *Projector) Project(v mgl64.Vec3) (ScreenPoint, bool) {
	clip := p.mvp.Mul4x1(v.Vec4(1))
	w := clip[3]
	if w <= p.near {
		return ScreenPoint{}, false
	}
	ndcX := clip[0] / w
	ndcY := clip[1] / w
	return ScreenPoint{
		X:     float32((ndcX + 1) * 0.5 * p.width),
		Y:     float32((1 - ndcY) * 0.5 * p.height),
		Depth: w,
	}, true
}

// Facing reports whether a point on a shell around the origin faces the
// camera, i.e. lies on the near side of the horizon.
func (p *Projector) Facing(v mgl64.Vec3) bool {
	q := mgl64.TransformCoordinate(v, p.view)
	normal := q.Sub(p.center)
	return normal.Dot(q) < 0
}

// PixelSize returns the on-screen size of a world length at the given depth.
func (p *Projector) PixelSize(length, depth float64) float32 {
	if depth <= 0 {
		return 0
	}
	return float32(length * p.focal / depth)
}

func (p *Projector) viewSpace(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(v, p.view)
}
