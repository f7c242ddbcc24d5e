package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	spherevis "github.com/kat-mg/spherical-pf-vis"
	"github.com/kat-mg/spherical-pf-vis/config"
	"github.com/kat-mg/spherical-pf-vis/internal/server"
	"github.com/kat-mg/spherical-pf-vis/render"
)

func main() {
	configPath := flag.String("config", "settings.json", "path to the settings file")
	mode := flag.String("mode", "view", "view, serve or export")
	out := flag.String("out", "scene.ply", "output file for -mode=export")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := settings.Log.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *mode, *out, settings, logger); err != nil {
		logger.Error("spherevis failed", "mode", *mode, "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, mode, out string, settings config.Settings, logger *slog.Logger) error {
	loader, err := spherevis.NewLoader(logger, settings.Files.CacheEntries)
	if err != nil {
		return err
	}

	build := func(ctx context.Context) (*spherevis.Scene, error) {
		assets, err := loader.LoadAssets(ctx, settings.AssetPaths())
		if err != nil {
			return nil, err
		}
		return spherevis.NewAssembler(settings.Options(), nil, logger).Build(assets)
	}

	switch mode {
	case "view":
		scene, err := build(ctx)
		if err != nil {
			return err
		}
		return render.NewViewer(scene, render.ViewerOptions{
			Width:  settings.Viewer.Width,
			Height: settings.Viewer.Height,
			Title:  settings.Viewer.Title,
			Layers: settings.LayerOptions(),
			Logger: logger,
		}).Run()

	case "serve":
		collector, err := server.NewCollector(nil)
		if err != nil {
			return err
		}
		srv := server.New(build, settings.LayerOptions(), collector, logger)
		if err := srv.Reload(ctx); err != nil {
			return err
		}
		return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", settings.Server.Port))

	case "export":
		scene, err := build(ctx)
		if err != nil {
			return err
		}
		if err := scene.SavePLY(out, settings.LayerOptions()); err != nil {
			return err
		}
		logger.Info("scene exported", "path", out, "triangles", scene.TriangleCount())
		return nil

	default:
		return errors.Errorf("unknown mode %q", mode)
	}
}
