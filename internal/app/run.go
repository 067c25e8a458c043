package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/basicbundles/internal/ctxlog"
	"github.com/specialistvlad/basicbundles/internal/server"
)

const shutdownTimeout = 5 * time.Second

// Handler returns the full HTTP surface: assets under the base path, the
// health endpoint and the render preview. Every request gets its own
// tracker from the asset middleware.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	srv, err := server.New(a.context(ctx), a.repo, a.paths.ToAppRelative)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("GET /render", a.renderHandler)
	return srv.Middleware(mux), nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Serve method started.")

	handler, err := a.Handler(ctx)
	if err != nil {
		ln.Close()
		return err
	}
	httpServer := &http.Server{
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	a.healthCheckServer(ctx)
	defer a.closeHealthCheckServer(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Asset server starting", "address", ln.Addr().String(), "base_path", a.paths.Base)
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("asset server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logger.Info("🛑 Shutting down asset server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("asset server shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Debug("App.Serve method finished.")
	return nil
}

var renderTemplate = template.Must(template.New("render").Parse(
	"<!DOCTYPE html>\n<html>\n<head>\n{{ .Stylesheets }}\n</head>\n<body>\n{{ .Scripts }}\n</body>\n</html>\n"))

// renderHandler renders a bare page requiring ?require=name for every
// name given, in order.
func (a *App) renderHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := a.require(ctx, r.URL.Query()["require"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	scripts, err := a.web.RenderScripts(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	styles, err := a.web.RenderStylesheets(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderTemplate.Execute(w, Rendered{Scripts: scripts, Stylesheets: styles}); err != nil {
		ctxlog.FromContext(ctx).Warn("Rendering page failed.", "error", err)
	}
}
