package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s != Default() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	s, err := Load("")
	if err != nil || s != Default() {
		t.Errorf("Load(\"\") = %+v, %v; want defaults", s, err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	s, err := Load("testdata/settings.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Files.Mesh != "../testdata/example.sph" || s.Files.SearchNodes != "" {
		t.Errorf("files = %+v", s.Files)
	}
	if s.Files.CacheEntries != 32 {
		t.Errorf("cacheEntries = %d, want default 32", s.Files.CacheEntries)
	}
	if !s.Layers.ShowFaceEdges || !s.Layers.ShowSearchNodes {
		t.Errorf("layers = %+v", s.Layers)
	}
	if s.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", s.Server.Port)
	}
	if s.Viewer != Default().Viewer {
		t.Errorf("viewer = %+v, want defaults", s.Viewer)
	}

	opts := s.Options()
	if opts.Geometry.EdgeVertices != 10 || opts.Geometry.ArcSegments != 40 || !opts.Geometry.RejectNonStarFaces {
		t.Errorf("geometry options = %+v", opts.Geometry)
	}
	if opts.Geometry.SearchHover != 1.02 || opts.Geometry.GlobeRadius != 0.985 {
		t.Errorf("unexposed geometry should keep defaults, got %+v", opts.Geometry)
	}
	if !opts.Layers.ShowFaceEdges || opts.Layers.ShowVertices {
		t.Errorf("layer options = %+v", opts.Layers)
	}

	paths := s.AssetPaths()
	if paths.Mesh != s.Files.Mesh || paths.Results != s.Files.Results {
		t.Errorf("asset paths = %+v", paths)
	}

	level, err := s.Log.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("level = %v, %v; want debug", level, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed json", `{"files": `, "error parsing"},
		{"no mesh", `{"files": {"mesh": ""}}`, "files.mesh"},
		{"negative subdivisions", `{"geometry": {"edgeVertices": -1}}`, "edgeVertices"},
		{"zero segments", `{"geometry": {"arcSegments": 0}}`, "arcSegments"},
		{"bad port", `{"server": {"port": 70000}}`, "server.port"},
		{"bad level", `{"log": {"level": "loud"}}`, "log.level"},
		{"bad format", `{"log": {"format": "xml"}}`, "log.format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want it to mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	logger := LogSettings{Level: "warn", Format: "json"}.NewLogger()
	if _, ok := logger.Handler().(*slog.JSONHandler); !ok {
		t.Errorf("handler = %T, want *slog.JSONHandler", logger.Handler())
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
}
