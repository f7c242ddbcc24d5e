package spherevis

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Default scene colours.
var (
	ColorBackground  = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	ColorGlobe       = color.RGBA{A: 0xff}
	ColorFace        = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ColorFaceEdge    = color.RGBA{R: 0x8b, A: 0xff}
	ColorNode        = color.RGBA{R: 0x91, G: 0x62, B: 0x48, A: 0xff}
	ColorResultPath  = color.RGBA{R: 0x30, G: 0x19, B: 0x34, A: 0xff}
	ColorLabel       = color.RGBA{B: 0xff, A: 0xff}
	ColorVertexPoint = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Label is a text annotation anchored at a world-space position.
type Label interface {
	Text() string
	Position() mgl64.Vec3
}

// Labeler creates labels for the scene. Renderers that need a native handle
// (a DOM node, a sprite) supply their own.
type Labeler interface {
	CreateLabel(text string, position mgl64.Vec3) Label
}

type TextLabel struct {
	text     string
	position mgl64.Vec3
	Color    color.RGBA
}

func (l *TextLabel) Text() string         { return l.text }
func (l *TextLabel) Position() mgl64.Vec3 { return l.position }

// TextLabeler is the default Labeler. It produces plain TextLabels.
type TextLabeler struct {
	Color color.RGBA
}

func (t TextLabeler) CreateLabel(text string, position mgl64.Vec3) Label {
	c := t.Color
	if c == (color.RGBA{}) {
		c = ColorLabel
	}
	return &TextLabel{text: text, position: position, Color: c}
}

// Marker is a small sphere drawn at a node position.
type Marker struct {
	Position mgl64.Vec3
	Radius   float64
	Color    color.RGBA
}

// PointCloud is a set of screen-sized dots, one per position.
type PointCloud struct {
	Positions []mgl64.Vec3
	Size      float64
	Color     color.RGBA
}

// Globe is the opaque sphere drawn under everything else.
type Globe struct {
	Radius float64
	Color  color.RGBA
}

// Layer groups the primitives of one visualisation concern.
type Layer struct {
	Name      string
	Triangles []*SphericalTriangle
	Curves    []*SphericalCurve
	Markers   []Marker
	Points    *PointCloud
	Labels    []Label
}

func (l *Layer) TriangleCount() int {
	n := 0
	for _, t := range l.Triangles {
		n += t.TriangleCount()
	}
	return n
}

// Scene is the renderer-agnostic output of the assembler. It is not modified
// after Build returns.
type Scene struct {
	Background color.RGBA
	Globe      Globe
	Layers     []*Layer
}

func (s *Scene) Layer(name string) *Layer {
	for _, l := range s.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

func (s *Scene) TriangleCount() int {
	n := 0
	for _, l := range s.Layers {
		n += l.TriangleCount()
	}
	return n
}
