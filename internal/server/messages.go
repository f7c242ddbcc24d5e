package server

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	spherevis "github.com/kat-mg/spherical-pf-vis"
)

// SceneMessage is the JSON form of a scene. Positions are flattened xyz
// float32 triples so clients can hand them straight to a vertex buffer.
type SceneMessage struct {
	Type       string      `json:"type"`
	Background string      `json:"background"`
	Globe      GlobeData   `json:"globe"`
	Layers     []LayerData `json:"layers"`
}

type GlobeData struct {
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

type LayerData struct {
	Name      string         `json:"name"`
	Triangles []TriangleData `json:"triangles,omitempty"`
	Lines     []LineData     `json:"lines,omitempty"`
	Markers   []MarkerData   `json:"markers,omitempty"`
	Points    *PointsData    `json:"points,omitempty"`
	Labels    []LabelData    `json:"labels,omitempty"`
}

type TriangleData struct {
	Vertices []float32 `json:"vertices"`
	Indices  []uint32  `json:"indices"`
	Color    string    `json:"color"`
}

type LineData struct {
	Points []float32 `json:"points"`
	Color  string    `json:"color"`
}

type MarkerData struct {
	Position [3]float32 `json:"position"`
	Radius   float64    `json:"radius"`
	Color    string     `json:"color"`
}

type PointsData struct {
	Positions []float32 `json:"positions"`
	Size      float64   `json:"size"`
	Color     string    `json:"color"`
}

type LabelData struct {
	Text     string     `json:"text"`
	Position [3]float32 `json:"position"`
}

// NewSceneMessage converts the layers of scene that are visible under layers.
func NewSceneMessage(scene *spherevis.Scene, layers spherevis.LayerOptions) *SceneMessage {
	msg := &SceneMessage{
		Type:       "scene",
		Background: hexColor(scene.Background),
		Globe:      GlobeData{Radius: scene.Globe.Radius, Color: hexColor(scene.Globe.Color)},
		Layers:     make([]LayerData, 0, len(scene.Layers)),
	}

	for _, l := range scene.Layers {
		if !layers.Visible(l.Name) {
			continue
		}
		data := LayerData{Name: l.Name}
		for _, t := range l.Triangles {
			data.Triangles = append(data.Triangles, TriangleData{
				Vertices: flatten(t.Vertices),
				Indices:  t.Indices,
				Color:    hexColor(t.Color),
			})
		}
		for _, c := range l.Curves {
			data.Lines = append(data.Lines, LineData{Points: flatten(c.Points), Color: hexColor(c.Color)})
		}
		for _, m := range l.Markers {
			data.Markers = append(data.Markers, MarkerData{
				Position: vec3(m.Position),
				Radius:   m.Radius,
				Color:    hexColor(m.Color),
			})
		}
		if l.Points != nil && layers.PointsVisible(l.Name) {
			data.Points = &PointsData{
				Positions: flatten(l.Points.Positions),
				Size:      l.Points.Size,
				Color:     hexColor(l.Points.Color),
			}
		}
		for _, lb := range l.Labels {
			if !layers.LabelsVisible(l.Name) {
				break
			}
			data.Labels = append(data.Labels, LabelData{Text: lb.Text(), Position: vec3(lb.Position())})
		}
		msg.Layers = append(msg.Layers, data)
	}
	return msg
}

func (m *SceneMessage) Layer(name string) *LayerData {
	for i := range m.Layers {
		if m.Layers[i].Name == name {
			return &m.Layers[i]
		}
	}
	return nil
}

func flatten(points []mgl64.Vec3) []float32 {
	out := make([]float32, 0, len(points)*3)
	for _, p := range points {
		out = append(out, float32(p[0]), float32(p[1]), float32(p[2]))
	}
	return out
}

func vec3(p mgl64.Vec3) [3]float32 {
	return [3]float32{float32(p[0]), float32(p[1]), float32(p[2])}
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
