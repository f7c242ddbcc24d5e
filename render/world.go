package render

import (
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	spherevis "github.com/kat-mg/spherical-pf-vis"
)

const (
	lineWidth     = 2.0
	markerSides   = 12
	minMarkerSize = 2.0
)

// polygon is one screen-space primitive waiting to be painted.
type polygon struct {
	xs, ys []float32
	depth  float64
	clr    color.RGBA
}

// ScreenLabel is a label projected for this frame.
type ScreenLabel struct {
	Text string
	X, Y int
}

// World projects a scene through a camera. Layers hidden by Layers are
// skipped.
type World struct {
	scene  *spherevis.Scene
	Layers spherevis.LayerOptions

	globeVertices []mgl64.Vec3
	globeIndices  []uint32
}

func NewWorld(scene *spherevis.Scene, layers spherevis.LayerOptions) *World {
	w := &World{scene: scene, Layers: layers}
	if scene.Globe.Radius > 0 {
		w.globeVertices, w.globeIndices = uvSphere(scene.Globe.Radius, globeSegments, globeRings)
	}
	return w
}

func (w *World) Scene() *spherevis.Scene {
	return w.scene
}

// DrawList returns the visible polygons sorted back to front.
func (w *World) DrawList(p *Projector) []polygon {
	var polys []polygon

	polys = w.appendMesh(polys, p, w.globeVertices, w.globeIndices, w.scene.Globe.Color)

	for _, layer := range w.scene.Layers {
		if !w.Layers.Visible(layer.Name) {
			continue
		}
		for _, t := range layer.Triangles {
			polys = w.appendMesh(polys, p, t.Vertices, t.Indices, t.Color)
		}
		for _, c := range layer.Curves {
			polys = appendCurve(polys, p, c)
		}
		for _, m := range layer.Markers {
			polys = appendDisc(polys, p, m.Position, m.Radius, m.Color)
		}
		if layer.Points != nil && w.Layers.PointsVisible(layer.Name) {
			for _, pos := range layer.Points.Positions {
				polys = appendDisc(polys, p, pos, layer.Points.Size/2, layer.Points.Color)
			}
		}
	}

	sort.SliceStable(polys, func(i, j int) bool {
		return polys[i].depth > polys[j].depth
	})
	return polys
}

// Labels returns the visible labels that face the camera.
func (w *World) Labels(p *Projector) []ScreenLabel {
	var out []ScreenLabel
	for _, layer := range w.scene.Layers {
		if !w.Layers.LabelsVisible(layer.Name) {
			continue
		}
		for _, l := range layer.Labels {
			if !p.Facing(l.Position()) {
				continue
			}
			sp, ok := p.Project(l.Position())
			if !ok {
				continue
			}
			out = append(out, ScreenLabel{Text: l.Text(), X: int(sp.X), Y: int(sp.Y)})
		}
	}
	return out
}

// Paint draws the scene onto a batcher.
func (w *World) Paint(b *PolygonBatcher, p *Projector) int {
	polys := w.DrawList(p)
	for _, poly := range polys {
		b.AddPolygon(poly.xs, poly.ys, poly.clr)
	}
	b.Flush()
	return len(polys)
}

func (w *World) appendMesh(polys []polygon, p *Projector, vertices []mgl64.Vec3, indices []uint32, clr color.RGBA) []polygon {
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := vertices[indices[i]], vertices[indices[i+1]], vertices[indices[i+2]]
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		if !p.Facing(centroid) {
			continue
		}
		sa, okA := p.Project(a)
		sb, okB := p.Project(b)
		sc, okC := p.Project(c)
		if !okA || !okB || !okC {
			continue
		}

		view := p.viewSpace(centroid)
		normal := view.Sub(p.center).Normalize()
		polys = append(polys, polygon{
			xs:    []float32{sa.X, sb.X, sc.X},
			ys:    []float32{sa.Y, sb.Y, sc.Y},
			depth: (sa.Depth + sb.Depth + sc.Depth) / 3,
			clr:   shade(view, normal, clr),
		})
	}
	return polys
}

// appendCurve turns each arc segment into a screen-space quad of lineWidth
// pixels.
func appendCurve(polys []polygon, p *Projector, curve *spherevis.SphericalCurve) []polygon {
	for i := 0; i+1 < len(curve.Points); i++ {
		a, b := curve.Points[i], curve.Points[i+1]
		if !p.Facing(a) && !p.Facing(b) {
			continue
		}
		sa, okA := p.Project(a)
		sb, okB := p.Project(b)
		if !okA || !okB {
			continue
		}

		dx, dy := sb.X-sa.X, sb.Y-sa.Y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*lineWidth/2, dx/l*lineWidth/2

		polys = append(polys, polygon{
			xs:    []float32{sa.X + nx, sb.X + nx, sb.X - nx, sa.X - nx},
			ys:    []float32{sa.Y + ny, sb.Y + ny, sb.Y - ny, sa.Y - ny},
			depth: (sa.Depth + sb.Depth) / 2,
			clr:   curve.Color,
		})
	}
	return polys
}

// appendDisc draws a sphere or point as a flat circle facing the camera.
func appendDisc(polys []polygon, p *Projector, pos mgl64.Vec3, radius float64, clr color.RGBA) []polygon {
	if !p.Facing(pos) {
		return polys
	}
	sp, ok := p.Project(pos)
	if !ok {
		return polys
	}
	r := p.PixelSize(radius, sp.Depth)
	if r < minMarkerSize {
		r = minMarkerSize
	}

	xs := make([]float32, markerSides)
	ys := make([]float32, markerSides)
	for i := 0; i < markerSides; i++ {
		a := 2 * math.Pi * float64(i) / markerSides
		xs[i] = sp.X + r*float32(math.Cos(a))
		ys[i] = sp.Y + r*float32(math.Sin(a))
	}
	return append(polys, polygon{xs: xs, ys: ys, depth: sp.Depth - radius, clr: clr})
}
