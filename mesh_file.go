package spherevis

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// PolygonMesh is a mesh loaded from a .sph file. Vertices are in degrees.
type PolygonMesh struct {
	Vertices []GeoPoint
	Faces    []Face
}

// CartesianVertices converts every vertex onto a sphere of the given radius.
func (m *PolygonMesh) CartesianVertices(radius float64) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Cartesian(radius)
	}
	return out
}

// ParseError describes malformed mesh or node input. Line is 1-based.
type ParseError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	src := e.Path
	if src == "" {
		src = "input"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %v", src, e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", src, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const (
	// lines read between context checks
	ctxCheckInterval = 1024
	// declared vertex counts above this grow the slice as lines are read
	maxVertexPrealloc = 1 << 16
)

type lineReader struct {
	ctx     context.Context
	scanner *bufio.Scanner
	line    int
}

func newLineReader(ctx context.Context, r io.Reader) *lineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &lineReader{ctx: ctx, scanner: scanner}
}

// next returns the fields of the next line, or io.EOF.
func (lr *lineReader) next() ([]string, error) {
	if !lr.scanner.Scan() {
		if err := lr.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	lr.line++
	if lr.line%ctxCheckInterval == 0 {
		if err := lr.ctx.Err(); err != nil {
			return nil, err
		}
	}
	return strings.Fields(lr.scanner.Text()), nil
}

// nextNonBlank skips empty lines.
func (lr *lineReader) nextNonBlank() ([]string, error) {
	for {
		fields, err := lr.next()
		if err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			return fields, nil
		}
	}
}

func (lr *lineReader) errorf(err error, format string, args ...any) *ParseError {
	return &ParseError{Line: lr.line, Msg: fmt.Sprintf(format, args...), Err: err}
}

// ParseMesh reads the .sph mesh format: a header line, a line whose first
// token is the vertex count V, V lines of "lat long", then one face per line as
// "k i0 ... ik-1". Blank lines are skipped.
func ParseMesh(ctx context.Context, r io.Reader) (*PolygonMesh, error) {
	lr := newLineReader(ctx, r)

	if _, err := lr.next(); err != nil {
		if err == io.EOF {
			return nil, lr.errorf(nil, "missing header line")
		}
		return nil, err
	}

	counts, err := lr.next()
	if err != nil {
		if err == io.EOF {
			return nil, lr.errorf(nil, "missing vertex count line")
		}
		return nil, err
	}
	if len(counts) == 0 {
		return nil, lr.errorf(nil, "missing vertex count")
	}
	noVertices, err := strconv.Atoi(counts[0])
	if err != nil {
		return nil, lr.errorf(err, "invalid vertex count %q", counts[0])
	}
	if noVertices < 0 {
		return nil, lr.errorf(nil, "negative vertex count %d", noVertices)
	}

	mesh := &PolygonMesh{Vertices: make([]GeoPoint, 0, min(noVertices, maxVertexPrealloc))}

	for len(mesh.Vertices) < noVertices {
		fields, err := lr.nextNonBlank()
		if err != nil {
			if err == io.EOF {
				return nil, lr.errorf(nil, "expected %d vertices, found %d", noVertices, len(mesh.Vertices))
			}
			return nil, err
		}
		p, perr := parseGeoPoint(lr, fields)
		if perr != nil {
			return nil, perr
		}
		mesh.Vertices = append(mesh.Vertices, p)
	}

	for {
		fields, err := lr.nextNonBlank()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		noSides, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, lr.errorf(err, "invalid face side count %q", fields[0])
		}
		if noSides < 0 {
			return nil, lr.errorf(nil, "negative face side count %d", noSides)
		}
		if len(fields)-1 < noSides {
			return nil, lr.errorf(nil, "face declares %d sides but lists %d", noSides, len(fields)-1)
		}

		face := make(Face, noSides)
		for j := 0; j < noSides; j++ {
			idx, err := strconv.Atoi(fields[1+j])
			if err != nil {
				return nil, lr.errorf(err, "invalid vertex index %q", fields[1+j])
			}
			if idx < 0 || idx >= noVertices {
				return nil, lr.errorf(nil, "vertex index %d out of range [0,%d)", idx, noVertices)
			}
			face[j] = idx
		}
		mesh.Faces = append(mesh.Faces, face)
	}

	return mesh, nil
}

// ParseNodes reads one "lat long" pair per line and maps each onto the unit
// sphere.
func ParseNodes(ctx context.Context, r io.Reader) ([]mgl64.Vec3, error) {
	lr := newLineReader(ctx, r)

	var nodes []mgl64.Vec3
	for {
		fields, err := lr.nextNonBlank()
		if err == io.EOF {
			return nodes, nil
		}
		if err != nil {
			return nil, err
		}
		p, perr := parseGeoPoint(lr, fields)
		if perr != nil {
			return nil, perr
		}
		nodes = append(nodes, p.Cartesian(1))
	}
}

func parseGeoPoint(lr *lineReader, fields []string) (GeoPoint, *ParseError) {
	if len(fields) < 2 {
		return GeoPoint{}, lr.errorf(nil, "expected latitude and longitude, got %d values", len(fields))
	}
	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return GeoPoint{}, lr.errorf(err, "invalid latitude %q", fields[0])
	}
	long, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return GeoPoint{}, lr.errorf(err, "invalid longitude %q", fields[1])
	}
	return GeoPoint{Lat: lat, Long: long}, nil
}
