package spherevis

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Layer names produced by the assembler.
const (
	LayerFaces    = "faces"
	LayerEdges    = "edges"
	LayerVertices = "vertices"
	LayerSearch   = "search"
	LayerResults  = "results"
)

// ErrNonStarFace is returned in strict mode for faces that a fan from their
// first vertex cannot cover.
var ErrNonStarFace = errors.New("face is not star-shaped from its first vertex")

// LayerOptions selects which optional layers are visible.
type LayerOptions struct {
	ShowResults      bool
	ShowSearchNodes  bool
	ShowFaceEdges    bool
	ShowVertices     bool
	ShowVertexLabels bool
}

// Visible reports whether the named layer is switched on.
func (o LayerOptions) Visible(name string) bool {
	switch name {
	case LayerResults:
		return o.ShowResults
	case LayerSearch:
		return o.ShowSearchNodes
	case LayerEdges:
		return o.ShowFaceEdges
	case LayerVertices:
		return o.ShowVertices || o.ShowVertexLabels
	default:
		return true
	}
}

// PointsVisible reports whether the point cloud of the named layer is drawn.
// The vertex layer splits its points and labels over two toggles.
func (o LayerOptions) PointsVisible(name string) bool {
	if name == LayerVertices {
		return o.ShowVertices
	}
	return o.Visible(name)
}

// LabelsVisible reports whether the labels of the named layer are drawn.
func (o LayerOptions) LabelsVisible(name string) bool {
	if name == LayerVertices {
		return o.ShowVertexLabels
	}
	return o.Visible(name)
}

type GeometryOptions struct {
	EdgeVertices       int
	FaceHover          float64
	ArcSegments        int
	FaceEdgeOffset     float64
	SearchHover        float64
	ResultOffset       float64
	MarkerRadius       float64
	PointSize          float64
	GlobeRadius        float64
	RejectNonStarFaces bool
	Seed               int64
}

type Options struct {
	Layers   LayerOptions
	Geometry GeometryOptions
}

func DefaultOptions() Options {
	return Options{
		Layers: LayerOptions{
			ShowResults:     true,
			ShowSearchNodes: true,
		},
		Geometry: GeometryOptions{
			EdgeVertices:   DefaultEdgeVertices,
			FaceHover:      DefaultHover,
			ArcSegments:    DefaultArcSegments,
			FaceEdgeOffset: 0.02,
			SearchHover:    1.02,
			ResultOffset:   0.03,
			MarkerRadius:   0.02,
			PointSize:      0.03,
			GlobeRadius:    0.985,
			Seed:           1,
		},
	}
}

// Assembler turns loaded assets into a Scene.
type Assembler struct {
	opts    Options
	labeler Labeler
	log     *slog.Logger
	rng     *rand.Rand
}

func NewAssembler(opts Options, labeler Labeler, logger *slog.Logger) *Assembler {
	if labeler == nil {
		labeler = TextLabeler{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		opts:    opts,
		labeler: labeler,
		log:     logger,
		rng:     rand.New(rand.NewSource(opts.Geometry.Seed)),
	}
}

// Build assembles the full scene. Node layers are added only when their data
// loaded; a missing node file never fails the build.
func (a *Assembler) Build(assets *Assets) (*Scene, error) {
	if assets == nil || assets.Mesh == nil {
		return nil, errors.New("no mesh to assemble")
	}
	start := time.Now()

	scene := &Scene{
		Background: ColorBackground,
		Globe:      Globe{Radius: a.opts.Geometry.GlobeRadius, Color: ColorGlobe},
	}

	layers, err := a.MeshLayers(assets.Mesh)
	if err != nil {
		return nil, err
	}
	scene.Layers = append(scene.Layers, layers...)

	if assets.SearchNodes != nil {
		scene.Layers = append(scene.Layers, a.SearchLayer(assets.SearchNodes))
	}
	if assets.Results != nil {
		scene.Layers = append(scene.Layers, a.ResultLayer(assets.Results))
	}

	a.log.Info("scene assembled",
		"layers", len(scene.Layers),
		"triangles", scene.TriangleCount(),
		"elapsed", time.Since(start))
	return scene, nil
}

// MeshLayers fan-triangulates every face, tessellates each fan triangle and
// traces each face edge. It returns the faces, edges and vertices layers.
func (a *Assembler) MeshLayers(mesh *PolygonMesh) ([]*Layer, error) {
	geo := a.opts.Geometry
	vertices := mesh.CartesianVertices(1)

	faces := &Layer{Name: LayerFaces}
	edges := &Layer{Name: LayerEdges}

	for i, face := range mesh.Faces {
		if len(face) < 3 {
			a.log.Warn("skipping degenerate face", "face", i, "sides", len(face))
			continue
		}

		corners := make([]mgl64.Vec3, len(face))
		for j, idx := range face {
			corners[j] = vertices[idx]
		}

		if !StarShaped(corners) {
			if geo.RejectNonStarFaces {
				return nil, errors.Wrapf(ErrNonStarFace, "face %d", i)
			}
			a.log.Warn("face is not star-shaped, tessellation may overlap", "face", i, "sides", len(face))
		}

		for _, tri := range face.Fan() {
			faces.Triangles = append(faces.Triangles, NewSphericalTriangle(
				corners[tri[0]], corners[tri[1]], corners[tri[2]],
				geo.FaceHover, geo.EdgeVertices, ColorFace))
		}

		for _, e := range face.Edges() {
			edges.Curves = append(edges.Curves, NewSphericalCurve(
				vertices[e[0]], vertices[e[1]], 1, geo.FaceEdgeOffset, geo.ArcSegments, ColorFaceEdge))
		}
	}

	verts := &Layer{
		Name:   LayerVertices,
		Points: &PointCloud{Positions: vertices, Size: geo.PointSize, Color: ColorVertexPoint},
	}
	for i, v := range vertices {
		verts.Labels = append(verts.Labels, a.labeler.CreateLabel(fmt.Sprintf("P%d", i), v))
	}

	return []*Layer{faces, edges, verts}, nil
}

// SearchLayer marks every third search node as a root and spans a visibility
// triangle over it and the next two nodes.
func (a *Assembler) SearchLayer(nodes []mgl64.Vec3) *Layer {
	geo := a.opts.Geometry
	layer := &Layer{Name: LayerSearch}
	n := len(nodes)

	for i := 0; i < n; i += 3 {
		root := nodes[i]
		layer.Markers = append(layer.Markers, Marker{Position: root, Radius: geo.MarkerRadius, Color: ColorNode})
		layer.Labels = append(layer.Labels, a.labeler.CreateLabel("R", root))

		layer.Triangles = append(layer.Triangles, NewSphericalTriangle(
			root, nodes[(i+1)%n], nodes[(i+2)%n],
			geo.SearchHover, geo.EdgeVertices, a.randomColor()))
	}

	a.log.Debug("search layer built", "nodes", n, "roots", len(layer.Markers))
	return layer
}

// ResultLayer draws the result path: a marker per node, Start and Goal labels
// and an arc between each consecutive pair.
func (a *Assembler) ResultLayer(nodes []mgl64.Vec3) *Layer {
	geo := a.opts.Geometry
	layer := &Layer{Name: LayerResults}

	for i, node := range nodes {
		layer.Markers = append(layer.Markers, Marker{Position: node, Radius: geo.MarkerRadius, Color: ColorNode})

		if i == 0 {
			layer.Labels = append(layer.Labels, a.labeler.CreateLabel("Start", node))
		} else if i == len(nodes)-1 {
			layer.Labels = append(layer.Labels, a.labeler.CreateLabel("Goal", node))
		}

		if i != len(nodes)-1 {
			layer.Curves = append(layer.Curves, NewSphericalCurve(
				node, nodes[i+1], 1, geo.ResultOffset, geo.ArcSegments, ColorResultPath))
		}
	}

	a.log.Debug("result layer built", "nodes", len(nodes))
	return layer
}

func (a *Assembler) randomColor() color.RGBA {
	c := a.rng.Intn(0x1000000)
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
}
