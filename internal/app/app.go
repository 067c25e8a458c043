package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/specialistvlad/basicbundles/internal/assets"
	"github.com/specialistvlad/basicbundles/internal/config"
	"github.com/specialistvlad/basicbundles/internal/ctxlog"
	"github.com/specialistvlad/basicbundles/internal/fsutil"
	"github.com/specialistvlad/basicbundles/internal/hcl"
	"github.com/specialistvlad/basicbundles/internal/manifest"
	"github.com/specialistvlad/basicbundles/internal/urlpath"
	"github.com/specialistvlad/basicbundles/internal/webresources"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	repo    *assets.Repository
	entries map[string]assets.Requirable
	paths   urlpath.VirtualPaths
	web     *webresources.WebResources

	healthServer *http.Server
}

// NewApp is the constructor for the main application. It loads every
// manifest, declares it on a fresh catalog and commits it, so a returned App
// always holds a complete repository. A nil loader selects the manifest
// loader for all supported formats.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		loader = manifest.NewLoader(hcl.WithVariables(cfg.Variables))
	}

	model, err := loader.Load(ctx, cfg.ManifestPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	logger.Debug("Manifests loaded and translated into unified model.", "declarations", model.Len())

	catalog := assets.NewCatalog(fsutil.ContentLoader{Root: cfg.ContentRoot})
	entries, err := manifest.Apply(ctx, model, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to apply manifests: %w", err)
	}

	repo, err := catalog.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	logger.Info("📦 Repository built.", "resources", len(repo.Resources()), "paths", len(repo.Paths()))

	mode, _ := assets.ParseRenderMode(cfg.Mode)
	flavor, _ := assets.ParseFlavor(cfg.Flavor)
	paths := urlpath.NewVirtualPaths(cfg.BasePath)

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		repo:    repo,
		entries: entries,
		paths:   paths,
		web: webresources.New(webresources.Settings{
			Repository: repo,
			ToAbsolute: paths.ToAbsolute,
			Mode:       func(context.Context) assets.RenderMode { return mode },
			Flavor:     func(context.Context) assets.Flavor { return flavor },
		}),
	}, nil
}

// Repository returns the built repository.
func (a *App) Repository() *assets.Repository {
	return a.repo
}

// WebResources returns the view-facing API bound to this app's settings.
func (a *App) WebResources() *webresources.WebResources {
	return a.web
}

// Lookup returns the declaration called name.
func (a *App) Lookup(name string) (assets.Requirable, bool) {
	r, ok := a.entries[name]
	return r, ok
}

// Names returns every declared name, sorted.
func (a *App) Names() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
