package app

import (
	"cmp"
	"context"
	"fmt"
	"html/template"
	"slices"

	"github.com/specialistvlad/basicbundles/internal/assets"
	"github.com/specialistvlad/basicbundles/internal/config"
)

// Rendered holds the markup for one page.
type Rendered struct {
	Scripts     template.HTML
	Stylesheets template.HTML
}

// Render requires the named declarations in order on a fresh tracker and
// renders them with the configured mode and flavor.
func (a *App) Render(ctx context.Context, names ...string) (*Rendered, error) {
	ctx = a.web.Begin(a.context(ctx))
	if err := a.require(ctx, names); err != nil {
		return nil, err
	}

	scripts, err := a.web.RenderScripts(ctx)
	if err != nil {
		return nil, err
	}
	styles, err := a.web.RenderStylesheets(ctx)
	if err != nil {
		return nil, err
	}
	return &Rendered{Scripts: scripts, Stylesheets: styles}, nil
}

func (a *App) require(ctx context.Context, names []string) error {
	for _, name := range names {
		r, ok := a.entries[name]
		if !ok {
			return fmt.Errorf("unknown declaration %q", name)
		}
		if err := a.web.Require(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// EntryInfo describes one declaration for listings.
type EntryInfo struct {
	Name string
	Kind string
	Path string // empty for groups
	Hash string // empty for groups
	Size int    // bytes served at Path
}

// Entries describes every declaration, sorted by name.
func (a *App) Entries() []EntryInfo {
	infos := make([]EntryInfo, 0, len(a.entries))
	for name, r := range a.entries {
		info := EntryInfo{Name: name}
		switch v := r.(type) {
		case *assets.Resource:
			info.Kind = v.Type().String()
		case *assets.Bundle:
			info.Kind = config.KindBundle
		case *assets.Group:
			info.Kind = config.KindGroup
		}
		if req, ok := r.(assets.Requestable); ok {
			info.Path = req.Path()
			info.Hash = a.repo.Hash(req)
			info.Size = len(a.repo.Fetch(req).Body)
		}
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(x, y EntryInfo) int { return cmp.Compare(x.Name, y.Name) })
	return infos
}
