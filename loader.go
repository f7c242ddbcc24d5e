package spherevis

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const defaultCacheEntries = 32

// Loader reads mesh and node files. Raw file contents are cached by path, size
// and modification time so rebuilding a scene from unchanged files skips the
// disk.
type Loader struct {
	log   *slog.Logger
	cache *lru.Cache[string, []byte]
}

func NewLoader(logger *slog.Logger, cacheEntries int) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheEntries <= 0 {
		cacheEntries = defaultCacheEntries
	}
	cache, err := lru.New[string, []byte](cacheEntries)
	if err != nil {
		return nil, errors.Wrap(err, "could not create file cache")
	}
	return &Loader{log: logger, cache: cache}, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not stat %s", path)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if data, ok := l.cache.Get(key); ok {
		l.log.Debug("file cache hit", "path", path)
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	l.cache.Add(key, data)
	return data, nil
}

// LoadMesh reads and parses a .sph mesh file.
func (l *Loader) LoadMesh(ctx context.Context, path string) (*PolygonMesh, error) {
	start := time.Now()
	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}
	mesh, err := ParseMesh(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, withPath(err, path)
	}
	l.log.Info("mesh loaded",
		"path", path,
		"vertices", len(mesh.Vertices),
		"faces", len(mesh.Faces),
		"elapsed", time.Since(start))
	return mesh, nil
}

// LoadNodes reads and parses a lat/long node list onto the unit sphere.
func (l *Loader) LoadNodes(ctx context.Context, path string) ([]mgl64.Vec3, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}
	nodes, err := ParseNodes(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, withPath(err, path)
	}
	l.log.Info("nodes loaded", "path", path, "count", len(nodes))
	return nodes, nil
}

func withPath(err error, path string) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		perr.Path = path
		return perr
	}
	return errors.Wrapf(err, "could not parse %s", path)
}

// AssetPaths names the files a scene is built from. Empty node paths are
// skipped.
type AssetPaths struct {
	Mesh        string
	SearchNodes string
	Results     string
}

// Assets holds everything loaded for one scene. A failed node file leaves its
// slice nil and records the error; the rest of the scene is unaffected.
type Assets struct {
	Mesh           *PolygonMesh
	SearchNodes    []mgl64.Vec3
	SearchNodesErr error
	Results        []mgl64.Vec3
	ResultsErr     error
}

// LoadAssets loads the mesh and both node files concurrently. Only a mesh
// failure is returned as an error.
func (l *Loader) LoadAssets(ctx context.Context, paths AssetPaths) (*Assets, error) {
	assets := &Assets{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mesh, err := l.LoadMesh(gctx, paths.Mesh)
		if err != nil {
			return err
		}
		assets.Mesh = mesh
		return nil
	})

	if paths.SearchNodes != "" {
		g.Go(func() error {
			assets.SearchNodes, assets.SearchNodesErr = l.LoadNodes(ctx, paths.SearchNodes)
			if assets.SearchNodesErr != nil {
				l.log.Warn("search nodes unavailable", "path", paths.SearchNodes, "err", assets.SearchNodesErr)
			}
			return nil
		})
	}

	if paths.Results != "" {
		g.Go(func() error {
			assets.Results, assets.ResultsErr = l.LoadNodes(ctx, paths.Results)
			if assets.ResultsErr != nil {
				l.log.Warn("results unavailable", "path", paths.Results, "err", assets.ResultsErr)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assets, nil
}
