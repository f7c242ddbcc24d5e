// Package config loads the JSON settings file. A missing file yields the
// defaults.
package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"

	spherevis "github.com/kat-mg/spherical-pf-vis"
)

type Settings struct {
	Files    FileSettings     `json:"files"`
	Layers   LayerSettings    `json:"layers"`
	Geometry GeometrySettings `json:"geometry"`
	Viewer   ViewerSettings   `json:"viewer"`
	Server   ServerSettings   `json:"server"`
	Log      LogSettings      `json:"log"`
}

type FileSettings struct {
	Mesh         string `json:"mesh"`
	SearchNodes  string `json:"searchNodes"`
	Results      string `json:"results"`
	CacheEntries int    `json:"cacheEntries"`
}

type LayerSettings struct {
	ShowResults      bool `json:"showResults"`
	ShowSearchNodes  bool `json:"showSearchNodes"`
	ShowFaceEdges    bool `json:"showFaceEdges"`
	ShowVertices     bool `json:"showVertices"`
	ShowVertexLabels bool `json:"showVertexLabels"`
}

type GeometrySettings struct {
	EdgeVertices       int     `json:"edgeVertices"`
	ArcSegments        int     `json:"arcSegments"`
	FaceHover          float64 `json:"faceHover"`
	RejectNonStarFaces bool    `json:"rejectNonStarFaces"`
	Seed               int64   `json:"seed"`
}

type ViewerSettings struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
}

type ServerSettings struct {
	Port int `json:"port"`
}

type LogSettings struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

func Default() Settings {
	opts := spherevis.DefaultOptions()
	return Settings{
		Files: FileSettings{
			Mesh:         "testdata/example.sph",
			SearchNodes:  "testdata/search_nodes.txt",
			Results:      "testdata/results.txt",
			CacheEntries: 32,
		},
		Layers: LayerSettings{
			ShowResults:     opts.Layers.ShowResults,
			ShowSearchNodes: opts.Layers.ShowSearchNodes,
		},
		Geometry: GeometrySettings{
			EdgeVertices: opts.Geometry.EdgeVertices,
			ArcSegments:  opts.Geometry.ArcSegments,
			FaceHover:    opts.Geometry.FaceHover,
			Seed:         opts.Geometry.Seed,
		},
		Viewer: ViewerSettings{
			Width:  1024,
			Height: 768,
			Title:  "Spherical Mesh Viewer",
		},
		Server: ServerSettings{
			Port: 8080,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("no settings file found, using defaults", "path", path)
			return s, nil
		}
		return s, errors.Wrapf(err, "could not open %s", path)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&s); err != nil {
		return s, errors.Wrapf(err, "error parsing %s", path)
	}
	if err := s.Validate(); err != nil {
		return s, errors.Wrapf(err, "invalid settings in %s", path)
	}
	return s, nil
}

func (s Settings) Validate() error {
	switch {
	case s.Files.Mesh == "":
		return errors.New("files.mesh must be set")
	case s.Geometry.EdgeVertices < 0:
		return errors.Errorf("geometry.edgeVertices must be >= 0, got %d", s.Geometry.EdgeVertices)
	case s.Geometry.ArcSegments < 1:
		return errors.Errorf("geometry.arcSegments must be >= 1, got %d", s.Geometry.ArcSegments)
	case s.Geometry.FaceHover <= 0:
		return errors.Errorf("geometry.faceHover must be positive, got %g", s.Geometry.FaceHover)
	case s.Viewer.Width <= 0 || s.Viewer.Height <= 0:
		return errors.Errorf("viewer size must be positive, got %dx%d", s.Viewer.Width, s.Viewer.Height)
	case s.Server.Port <= 0 || s.Server.Port > 65535:
		return errors.Errorf("server.port out of range: %d", s.Server.Port)
	}
	if _, err := s.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(s.Log.Format) {
	case "", "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", s.Log.Format)
	}
	return nil
}

// Options maps the settings onto assembler options. Geometry values not
// exposed in the file keep their defaults.
func (s Settings) Options() spherevis.Options {
	opts := spherevis.DefaultOptions()
	opts.Layers = s.LayerOptions()
	opts.Geometry.EdgeVertices = s.Geometry.EdgeVertices
	opts.Geometry.ArcSegments = s.Geometry.ArcSegments
	opts.Geometry.FaceHover = s.Geometry.FaceHover
	opts.Geometry.RejectNonStarFaces = s.Geometry.RejectNonStarFaces
	opts.Geometry.Seed = s.Geometry.Seed
	return opts
}

func (s Settings) LayerOptions() spherevis.LayerOptions {
	return spherevis.LayerOptions{
		ShowResults:      s.Layers.ShowResults,
		ShowSearchNodes:  s.Layers.ShowSearchNodes,
		ShowFaceEdges:    s.Layers.ShowFaceEdges,
		ShowVertices:     s.Layers.ShowVertices,
		ShowVertexLabels: s.Layers.ShowVertexLabels,
	}
}

func (s Settings) AssetPaths() spherevis.AssetPaths {
	return spherevis.AssetPaths{
		Mesh:        s.Files.Mesh,
		SearchNodes: s.Files.SearchNodes,
		Results:     s.Files.Results,
	}
}

func (l LogSettings) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "invalid log.level %q", l.Level)
	}
	return level, nil
}

// NewLogger builds the process logger.
func (l LogSettings) NewLogger() *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
