// Package tracker records what a single request requires and renders it as
// script and stylesheet tags.
//
// A Tracker belongs to one request and is not safe for concurrent use.
package tracker

import (
	"cmp"
	"html"
	"slices"
	"strings"

	"github.com/specialistvlad/basicbundles/internal/assets"
)

// Repository is the part of the built repository a tracker reads.
type Repository interface {
	Index(r *assets.Resource) int
	Hash(r assets.Requestable) string
	FlavoredPath(r assets.Requestable, f assets.Flavor) string
}

// Tracker accumulates required requestables in first-required order.
// Duplicates are kept and collapse at render time.
type Tracker struct {
	repo     Repository
	required []assets.Requestable
}

// New creates an empty tracker reading from repo.
func New(repo Repository) *Tracker {
	return &Tracker{repo: repo}
}

// Require records rs. Groups are expanded into their requestables.
func (t *Tracker) Require(rs ...assets.Requirable) {
	for _, r := range rs {
		t.required = append(t.required, assets.Requestables(r)...)
	}
}

// Required returns everything recorded so far, duplicates included.
func (t *Tracker) Required() []assets.Requestable {
	return slices.Clone(t.required)
}

// Expand returns the leaf resources of every required requestable of type
// typ plus all their dependencies, each once, in global dependency order.
func (t *Tracker) Expand(typ assets.Type) []*assets.Resource {
	resources := assets.WithDependencies(assets.ExpandResources(t.ofType(typ)...))
	slices.SortFunc(resources, func(a, b *assets.Resource) int {
		return cmp.Compare(t.repo.Index(a), t.repo.Index(b))
	})
	return resources
}

// Simplify returns the required requestables of type typ without
// duplicates, in first-required order. Bundles are not opened, so a resource
// required both loose and through a bundle shows up twice; overlapping
// bundles are not merged either.
func (t *Tracker) Simplify(typ assets.Type) []assets.Requestable {
	seen := make(map[assets.Requestable]struct{})
	var out []assets.Requestable
	for _, r := range t.ofType(typ) {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Select picks Expand for Individual mode and Simplify for Bundled mode.
func (t *Tracker) Select(typ assets.Type, mode assets.RenderMode) []assets.Requestable {
	if mode == assets.Bundled {
		return t.Simplify(typ)
	}
	expanded := t.Expand(typ)
	out := make([]assets.Requestable, len(expanded))
	for i, r := range expanded {
		out[i] = r
	}
	return out
}

// Render returns one tag per selected requestable, separated by newlines.
// URLs are toAbsolute(flavored path) with the version hash as query.
func (t *Tracker) Render(typ assets.Type, mode assets.RenderMode, flavor assets.Flavor, toAbsolute func(string) string) string {
	selected := t.Select(typ, mode)
	tags := make([]string, len(selected))
	for i, r := range selected {
		tags[i] = Tag(typ, t.URL(r, flavor, toAbsolute))
	}
	return strings.Join(tags, "\n")
}

// URL is the cache-busting URL of r.
func (t *Tracker) URL(r assets.Requestable, flavor assets.Flavor, toAbsolute func(string) string) string {
	return toAbsolute(t.repo.FlavoredPath(r, flavor)) + "?version=" + t.repo.Hash(r)
}

// Tag renders the markup for one URL.
func Tag(typ assets.Type, url string) string {
	if typ == assets.Stylesheet {
		return `<link href="` + html.EscapeString(url) + `" rel="stylesheet" type="text/css">`
	}
	return `<script src="` + html.EscapeString(url) + `"></script>`
}

func (t *Tracker) ofType(typ assets.Type) []assets.Requestable {
	var out []assets.Requestable
	for _, r := range t.required {
		if r.Type() == typ {
			out = append(out, r)
		}
	}
	return out
}
