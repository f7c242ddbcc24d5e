package spherevis

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/pkg/errors"
)

// WritePLY writes the tessellated triangles of every visible layer as an ASCII
// PLY mesh with per-face colours. Curves, markers and labels have no face
// representation and are left out.
func (s *Scene) WritePLY(w io.Writer, layers LayerOptions) error {
	writer := bufio.NewWriter(w)

	type coloredFace struct {
		indices [3]int
		color   color.RGBA
	}

	numVertices := 0
	var faces []coloredFace
	var triangles []*SphericalTriangle
	for _, l := range s.Layers {
		if !layers.Visible(l.Name) {
			continue
		}
		for _, t := range l.Triangles {
			base := numVertices
			for i := 0; i+2 < len(t.Indices); i += 3 {
				faces = append(faces, coloredFace{
					indices: [3]int{base + int(t.Indices[i]), base + int(t.Indices[i+1]), base + int(t.Indices[i+2])},
					color:   t.Color,
				})
			}
			numVertices += len(t.Vertices)
			triangles = append(triangles, t)
		}
	}

	_, _ = fmt.Fprintln(writer, "ply")
	_, _ = fmt.Fprintln(writer, "format ascii 1.0")
	_, _ = fmt.Fprintln(writer, "comment Generated by spherevis with face colors")
	_, _ = fmt.Fprintf(writer, "element vertex %d\n", numVertices)
	_, _ = fmt.Fprintln(writer, "property float x")
	_, _ = fmt.Fprintln(writer, "property float y")
	_, _ = fmt.Fprintln(writer, "property float z")
	_, _ = fmt.Fprintf(writer, "element face %d\n", len(faces))
	_, _ = fmt.Fprintln(writer, "property list uchar int vertex_indices")
	_, _ = fmt.Fprintln(writer, "property uchar red")
	_, _ = fmt.Fprintln(writer, "property uchar green")
	_, _ = fmt.Fprintln(writer, "property uchar blue")
	_, _ = fmt.Fprintln(writer, "end_header")

	for _, t := range triangles {
		for _, v := range t.Vertices {
			_, _ = fmt.Fprintf(writer, "%f %f %f\n", v[0], v[1], v[2])
		}
	}

	for _, f := range faces {
		col := f.color
		_, _ = fmt.Fprintf(writer, "3 %d %d %d %d %d %d\n",
			f.indices[0], f.indices[1], f.indices[2], col.R, col.G, col.B)
	}

	return writer.Flush()
}

// SavePLY writes the scene to fileName. See WritePLY.
func (s *Scene) SavePLY(fileName string, layers LayerOptions) error {
	file, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "could not create PLY file %s", fileName)
	}
	defer file.Close()

	if err := s.WritePLY(file, layers); err != nil {
		return errors.Wrapf(err, "could not write PLY file %s", fileName)
	}
	return file.Close()
}
