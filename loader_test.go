package spherevis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader(testLogger(), 4)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	return l
}

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()
	paths := AssetPaths{
		Mesh:        writeFile(t, dir, "mesh.sph", squareMesh),
		SearchNodes: writeFile(t, dir, "search.txt", "0 0\n0 10\n10 10\n10 0\n"),
		Results:     writeFile(t, dir, "results.txt", "0 0\n10 10\n"),
	}

	assets, err := newTestLoader(t).LoadAssets(context.Background(), paths)
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}
	if len(assets.Mesh.Faces) != 1 {
		t.Errorf("got %d faces, want 1", len(assets.Mesh.Faces))
	}
	if len(assets.SearchNodes) != 4 || assets.SearchNodesErr != nil {
		t.Errorf("search nodes = %d (%v), want 4", len(assets.SearchNodes), assets.SearchNodesErr)
	}
	if len(assets.Results) != 2 || assets.ResultsErr != nil {
		t.Errorf("results = %d (%v), want 2", len(assets.Results), assets.ResultsErr)
	}
}

func TestLoadAssetsNodeFailureKeepsMesh(t *testing.T) {
	dir := t.TempDir()
	paths := AssetPaths{
		Mesh:        writeFile(t, dir, "mesh.sph", squareMesh),
		SearchNodes: filepath.Join(dir, "missing.txt"),
		Results:     writeFile(t, dir, "results.txt", "0 0\nbad line\n"),
	}

	assets, err := newTestLoader(t).LoadAssets(context.Background(), paths)
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}
	if assets.Mesh == nil {
		t.Fatal("mesh should load")
	}
	if assets.SearchNodes != nil || !errors.Is(assets.SearchNodesErr, os.ErrNotExist) {
		t.Errorf("search nodes error = %v, want not exist", assets.SearchNodesErr)
	}
	var perr *ParseError
	if !errors.As(assets.ResultsErr, &perr) {
		t.Fatalf("results error = %v, want *ParseError", assets.ResultsErr)
	}
	if perr.Path != paths.Results || perr.Line != 2 {
		t.Errorf("parse error at %s:%d, want %s:2", perr.Path, perr.Line, paths.Results)
	}
}

func TestLoadAssetsMeshFailure(t *testing.T) {
	dir := t.TempDir()
	paths := AssetPaths{
		Mesh:    writeFile(t, dir, "mesh.sph", "header\n2\n0 0\n"),
		Results: writeFile(t, dir, "results.txt", "0 0\n"),
	}
	if _, err := newTestLoader(t).LoadAssets(context.Background(), paths); err == nil {
		t.Fatal("expected mesh error")
	}
}

func TestLoadAssetsSkipsEmptyPaths(t *testing.T) {
	dir := t.TempDir()
	assets, err := newTestLoader(t).LoadAssets(context.Background(), AssetPaths{
		Mesh: writeFile(t, dir, "mesh.sph", squareMesh),
	})
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}
	if assets.SearchNodes != nil || assets.Results != nil || assets.SearchNodesErr != nil || assets.ResultsErr != nil {
		t.Errorf("unexpected node data: %+v", assets)
	}
}

func TestLoaderCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nodes.txt", "0 0\n")
	l := newTestLoader(t)

	if _, err := l.LoadNodes(context.Background(), path); err != nil {
		t.Fatalf("LoadNodes: %v", err)
	}
	if l.cache.Len() != 1 {
		t.Fatalf("cache has %d entries, want 1", l.cache.Len())
	}
	if _, err := l.LoadNodes(context.Background(), path); err != nil {
		t.Fatalf("LoadNodes: %v", err)
	}
	if l.cache.Len() != 1 {
		t.Errorf("unchanged file should hit the cache, have %d entries", l.cache.Len())
	}

	// a changed file gets a new key
	writeFile(t, dir, "nodes.txt", "0 0\n10 10\n")
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	nodes, err := l.LoadNodes(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadNodes: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("got %d nodes after change, want 2", len(nodes))
	}
}

func TestLoadAndAssembleExample(t *testing.T) {
	assets, err := newTestLoader(t).LoadAssets(context.Background(), AssetPaths{
		Mesh:        "testdata/example.sph",
		SearchNodes: "testdata/search_nodes.txt",
		Results:     "testdata/results.txt",
	})
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}

	opts := testOptions()
	opts.Geometry.RejectNonStarFaces = true
	scene, err := NewAssembler(opts, nil, testLogger()).Build(assets)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if n := len(scene.Layer(LayerFaces).Triangles); n != 12 {
		t.Errorf("got %d face triangles, want 12", n)
	}
	if n := len(scene.Layer(LayerEdges).Curves); n != 24 {
		t.Errorf("got %d edge arcs, want 24", n)
	}
	if n := len(scene.Layer(LayerSearch).Markers); n != 2 {
		t.Errorf("got %d search roots, want 2", n)
	}
	if n := len(scene.Layer(LayerResults).Curves); n != 4 {
		t.Errorf("got %d result arcs, want 4", n)
	}
}
