package render

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// DrawTriangles takes uint16 indices.
const maxBatchVertices = math.MaxUint16

var whiteSub *ebiten.Image

func solidImage() *ebiten.Image {
	if whiteSub == nil {
		whiteImage := ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSub
}

// PolygonBatcher collects filled convex polygons and draws them in as few
// DrawTriangles calls as possible, in the order they were added.
type PolygonBatcher struct {
	screen   *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
	draws    int
}

func NewPolygonBatcher(screen *ebiten.Image) *PolygonBatcher {
	return &PolygonBatcher{
		screen:   screen,
		vertices: make([]ebiten.Vertex, 0, 4096),
		indices:  make([]uint16, 0, 8192),
	}
}

func (b *PolygonBatcher) AddPolygon(xp, yp []float32, clr color.RGBA) {
	if len(xp) < 3 || len(xp) != len(yp) {
		return
	}
	if len(b.vertices)+len(xp) > maxBatchVertices {
		b.Flush()
	}

	cr := float32(clr.R) / 255.0
	cg := float32(clr.G) / 255.0
	cb := float32(clr.B) / 255.0
	ca := float32(clr.A) / 255.0

	base := uint16(len(b.vertices))
	for i := range xp {
		b.vertices = append(b.vertices, ebiten.Vertex{
			DstX:   xp[i],
			DstY:   yp[i],
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	for i := 2; i < len(xp); i++ {
		b.indices = append(b.indices, base, base+uint16(i-1), base+uint16(i))
	}
}

// Flush draws everything batched so far.
func (b *PolygonBatcher) Flush() {
	if len(b.indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	b.screen.DrawTriangles(b.vertices, b.indices, solidImage(), op)
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.draws++
}

// Draws returns the number of DrawTriangles calls made.
func (b *PolygonBatcher) Draws() int {
	return b.draws
}

// drawPolyline strokes an open path. It is used for overlays that are not
// depth sorted.
func drawPolyline(screen *ebiten.Image, xp, yp []float32, strokeWidth float32, clr color.RGBA) {
	if len(xp) < 2 {
		return
	}

	var path vector.Path
	path.MoveTo(xp[0], yp[0])
	for i := 1; i < len(xp); i++ {
		path.LineTo(xp[i], yp[i])
	}

	vertices, indices := path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{Width: strokeWidth})

	cr := float32(clr.R) / 255.0
	cg := float32(clr.G) / 255.0
	cb := float32(clr.B) / 255.0
	ca := float32(clr.A) / 255.0
	for i := range vertices {
		vertices[i].ColorR = cr
		vertices[i].ColorG = cg
		vertices[i].ColorB = cb
		vertices[i].ColorA = ca
		vertices[i].SrcX = 1
		vertices[i].SrcY = 1
	}

	screen.DrawTriangles(vertices, indices, solidImage(), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
