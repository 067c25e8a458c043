// Package webresources is what views use: require requirables while a
// request is being handled, then render the tags where they belong.
package webresources

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/specialistvlad/basicbundles/internal/assets"
	"github.com/specialistvlad/basicbundles/internal/tracker"
	"github.com/specialistvlad/basicbundles/internal/urlpath"
)

// ErrNoTracker is returned when the context was never passed through Begin.
var ErrNoTracker = errors.New("no resource tracker in context")

// Settings configures rendering. Mode and Flavor are called on every render,
// so they can depend on the request.
type Settings struct {
	Repository tracker.Repository
	ToAbsolute func(string) string
	Mode       func(context.Context) assets.RenderMode
	Flavor     func(context.Context) assets.Flavor
}

// WebResources binds Settings to the per-request trackers.
type WebResources struct {
	settings Settings
}

// New fills in defaults: individual mode, standard flavor and identity
// path mapping.
func New(s Settings) *WebResources {
	if s.ToAbsolute == nil {
		s.ToAbsolute = urlpath.Identity
	}
	if s.Mode == nil {
		s.Mode = func(context.Context) assets.RenderMode { return assets.Individual }
	}
	if s.Flavor == nil {
		s.Flavor = func(context.Context) assets.Flavor { return assets.Standard }
	}
	return &WebResources{settings: s}
}

// Begin returns ctx with a fresh tracker installed.
func (w *WebResources) Begin(ctx context.Context) context.Context {
	return tracker.NewContext(ctx, tracker.New(w.settings.Repository))
}

// Require records rs on the tracker of ctx.
func (w *WebResources) Require(ctx context.Context, rs ...assets.Requirable) error {
	t, ok := tracker.FromContext(ctx)
	if !ok {
		return ErrNoTracker
	}
	t.Require(rs...)
	return nil
}

// RenderScripts renders script tags for what ctx required.
func (w *WebResources) RenderScripts(ctx context.Context) (template.HTML, error) {
	return w.render(ctx, assets.Script)
}

// RenderStylesheets renders stylesheet links for what ctx required.
func (w *WebResources) RenderStylesheets(ctx context.Context) (template.HTML, error) {
	return w.render(ctx, assets.Stylesheet)
}

func (w *WebResources) render(ctx context.Context, typ assets.Type) (template.HTML, error) {
	t, ok := tracker.FromContext(ctx)
	if !ok {
		return "", ErrNoTracker
	}
	// Tag escapes every attribute value.
	return template.HTML(t.Render(typ, w.settings.Mode(ctx), w.settings.Flavor(ctx), w.settings.ToAbsolute)), nil
}

// FuncMap exposes require, renderScripts and renderStylesheets to
// html/template. Each takes the request context as first argument; require
// resolves names through entries.
//
//	{{ require .Ctx "site" "jquery" }}
//	{{ renderScripts .Ctx }}
func (w *WebResources) FuncMap(entries map[string]assets.Requirable) template.FuncMap {
	return template.FuncMap{
		"require": func(ctx context.Context, names ...string) (string, error) {
			rs := make([]assets.Requirable, 0, len(names))
			for _, name := range names {
				r, ok := entries[name]
				if !ok {
					return "", fmt.Errorf("unknown web resource %q", name)
				}
				rs = append(rs, r)
			}
			return "", w.Require(ctx, rs...)
		},
		"renderScripts":     w.RenderScripts,
		"renderStylesheets": w.RenderStylesheets,
	}
}
