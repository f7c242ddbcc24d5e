package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	spherevis "github.com/kat-mg/spherical-pf-vis"
)

const (
	damping      = 0.9
	minSpin      = 0.01
	gizmoSize    = 30
	gizmoMargin  = 45
	hudLineWidth = 2
)

type ViewerOptions struct {
	Width, Height int
	Title         string
	Layers        spherevis.LayerOptions
	Logger        *slog.Logger
}

// Viewer is an ebiten game showing one scene with a trackball camera.
type Viewer struct {
	world  *World
	camera *Camera
	opts   ViewerOptions
	log    *slog.Logger

	dragging     bool
	lastX, lastY int
	spinX, spinY float64
	drawn        int
}

func NewViewer(scene *spherevis.Scene, opts ViewerOptions) *Viewer {
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 768
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		world:  NewWorld(scene, opts.Layers),
		camera: NewCamera(opts.Width, opts.Height),
		opts:   opts,
		log:    logger,
	}
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() error {
	ebiten.SetWindowSize(v.opts.Width, v.opts.Height)
	ebiten.SetWindowTitle(v.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	v.log.Info("viewer starting", "width", v.opts.Width, "height", v.opts.Height)
	return ebiten.RunGame(v)
}

func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	v.handleToggles()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		v.dragging = true
		v.lastX, v.lastY = ebiten.CursorPosition()
	}
	if v.dragging {
		x, y := ebiten.CursorPosition()
		v.spinX, v.spinY = float64(x-v.lastX), float64(y-v.lastY)
		v.lastX, v.lastY = x, y
	} else {
		v.spinX *= damping
		v.spinY *= damping
		if math.Abs(v.spinX) < minSpin && math.Abs(v.spinY) < minSpin {
			v.spinX, v.spinY = 0, 0
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		v.dragging = false
	}
	v.camera.Rotate(v.spinX, v.spinY)

	if _, wheel := ebiten.Wheel(); wheel != 0 {
		v.camera.Zoom(wheel)
	}
	return nil
}

func (v *Viewer) handleToggles() {
	toggle := func(key ebiten.Key, name string, flag *bool) {
		if inpututil.IsKeyJustPressed(key) {
			*flag = !*flag
			v.log.Debug("layer toggled", "layer", name, "visible", *flag)
		}
	}
	layers := &v.world.Layers
	toggle(ebiten.KeyR, spherevis.LayerResults, &layers.ShowResults)
	toggle(ebiten.KeyS, spherevis.LayerSearch, &layers.ShowSearchNodes)
	toggle(ebiten.KeyE, spherevis.LayerEdges, &layers.ShowFaceEdges)
	toggle(ebiten.KeyV, spherevis.LayerVertices, &layers.ShowVertices)
	toggle(ebiten.KeyL, spherevis.LayerVertices, &layers.ShowVertexLabels)
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(v.world.Scene().Background)

	p := v.camera.Projector()
	v.drawn = v.world.Paint(NewPolygonBatcher(screen), p)

	for _, l := range v.world.Labels(p) {
		ebitenutil.DebugPrintAt(screen, l.Text, l.X, l.Y)
	}

	v.drawGizmo(screen)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.2f  polygons: %d\n[R]esults [S]earch [E]dges [V]ertices [L]abels",
		ebiten.ActualFPS(), v.drawn))
}

// drawGizmo shows the world axes in the bottom left corner.
func (v *Viewer) drawGizmo(screen *ebiten.Image) {
	ox := float32(gizmoMargin)
	oy := float32(v.camera.Height - gizmoMargin)
	rot := v.camera.Orientation.Mat4()
	axes := []struct {
		dir mgl64.Vec3
		clr color.RGBA
	}{
		{mgl64.Vec3{1, 0, 0}, color.RGBA{R: 0xff, A: 0xff}},
		{mgl64.Vec3{0, 1, 0}, color.RGBA{G: 0xff, A: 0xff}},
		{mgl64.Vec3{0, 0, 1}, color.RGBA{B: 0xff, A: 0xff}},
	}
	for _, a := range axes {
		d := mgl64.TransformNormal(a.dir, rot)
		drawPolyline(screen,
			[]float32{ox, ox + float32(d[0])*gizmoSize},
			[]float32{oy, oy - float32(d[1])*gizmoSize},
			hudLineWidth, a.clr)
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.camera.Width, v.camera.Height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
