package spherevis

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func plyScene(t *testing.T) *Scene {
	t.Helper()
	assets := squareAssets(t)
	assets.Results = nodes(3)
	scene, err := NewAssembler(testOptions(), nil, testLogger()).Build(assets)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return scene
}

func TestWritePLYHeader(t *testing.T) {
	scene := plyScene(t)
	var buf bytes.Buffer
	if err := scene.WritePLY(&buf, LayerOptions{}); err != nil {
		t.Fatalf("WritePLY: %v", err)
	}

	// two fan triangles with edgeVertices=2: 10 vertices and 9 faces each
	out := buf.String()
	for _, want := range []string{
		"ply\nformat ascii 1.0\n",
		"element vertex 20\n",
		"element face 18\n",
		"property list uchar int vertex_indices\n",
		"property uchar red\n",
		"end_header\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	lines := strings.Split(strings.TrimSpace(out[strings.Index(out, "end_header\n")+len("end_header\n"):]), "\n")
	if len(lines) != 20+18 {
		t.Fatalf("got %d body lines, want %d", len(lines), 38)
	}
	face := lines[20]
	var n, a, b, c, r, g, bl int
	if _, err := fmt.Sscanf(face, "%d %d %d %d %d %d %d", &n, &a, &b, &c, &r, &g, &bl); err != nil {
		t.Fatalf("bad face line %q: %v", face, err)
	}
	if n != 3 || r != 255 || g != 255 || bl != 255 {
		t.Errorf("face line = %q, want a white triangle", face)
	}
}

func TestWritePLYOffsetsIndices(t *testing.T) {
	scene := plyScene(t)
	var buf bytes.Buffer
	if err := scene.WritePLY(&buf, LayerOptions{}); err != nil {
		t.Fatalf("WritePLY: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	inBody := false
	row := 0
	maxIndex := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "end_header" {
			inBody = true
			continue
		}
		if !inBody {
			continue
		}
		row++
		if row <= 20 {
			continue
		}
		var n, a, b, c int
		fmt.Sscanf(line, "%d %d %d %d", &n, &a, &b, &c)
		for _, idx := range []int{a, b, c} {
			if idx > maxIndex {
				maxIndex = idx
			}
		}
	}
	if maxIndex != 19 {
		t.Errorf("highest index = %d, want 19", maxIndex)
	}
}

func TestWritePLYVisibleLayersOnly(t *testing.T) {
	assets := squareAssets(t)
	assets.SearchNodes = nodes(3)
	scene, err := NewAssembler(testOptions(), nil, testLogger()).Build(assets)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var hidden, shown bytes.Buffer
	if err := scene.WritePLY(&hidden, LayerOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := scene.WritePLY(&shown, LayerOptions{ShowSearchNodes: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(hidden.String(), "element face 18\n") {
		t.Error("hidden search layer should not be exported")
	}
	if !strings.Contains(shown.String(), "element face 27\n") {
		t.Error("visible search layer should be exported")
	}
}

func TestSavePLY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.ply")
	if err := plyScene(t).SavePLY(path, LayerOptions{}); err != nil {
		t.Fatalf("SavePLY: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("ply\n")) {
		t.Errorf("file does not start with a PLY header")
	}

	if err := plyScene(t).SavePLY(filepath.Join(t.TempDir(), "missing", "scene.ply"), LayerOptions{}); err == nil {
		t.Error("expected error for missing directory")
	}
}
