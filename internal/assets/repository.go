package assets

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/basicbundles/internal/ctxlog"
	"github.com/specialistvlad/basicbundles/internal/urlpath"
)

// Content is what gets served for a requestable.
type Content struct {
	Body        string
	ContentType string
}

// Entry is the result of looking up a path. Flavor is only meaningful when
// Concrete is set, i.e. the path named one flavor of a resource rather than
// its declared pattern.
type Entry struct {
	Requestable Requestable
	Flavor      Flavor
	Concrete    bool
}

// Repository is the immutable result of the build pass.
type Repository struct {
	declared  []Requestable
	ordered   []*Resource
	resources map[*Resource]*resourceInfo
	bundles   map[*Bundle]string
	hashes    map[Requestable]digest
	lookup    map[string]Entry
}

// Build runs the build pass over the declared requestables. Every
// dependency and bundle member must itself be among them. Any failure aborts
// the build; no partial repository is returned.
func Build(ctx context.Context, declared []Requestable, loader Loader) (*Repository, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting repository construction.", "declared", len(declared))

	var resources []*Resource
	var bundles []*Bundle
	members := make(map[Requestable]struct{}, len(declared))
	for _, r := range declared {
		members[r] = struct{}{}
		switch v := r.(type) {
		case *Resource:
			resources = append(resources, v)
		case *Bundle:
			bundles = append(bundles, v)
		}
	}
	if err := checkClosed(resources, bundles, members); err != nil {
		return nil, err
	}

	ordered, err := orderResources(resources)
	if err != nil {
		return nil, fmt.Errorf("error ordering resources: %w", err)
	}
	logger.Debug("Build: Resource ordering complete.", "resources", len(ordered))

	repo := &Repository{
		declared:  slices.Clone(declared),
		ordered:   ordered,
		resources: make(map[*Resource]*resourceInfo, len(ordered)),
		bundles:   make(map[*Bundle]string, len(bundles)),
		hashes:    make(map[Requestable]digest, len(declared)),
		lookup:    make(map[string]Entry, len(declared)*2),
	}

	for i, r := range ordered {
		info, err := loadResourceInfo(ctx, loader, i, r.path)
		if err != nil {
			return nil, fmt.Errorf("error loading resource %s: %w", r.path, err)
		}
		repo.resources[r] = info
		repo.hashes[r] = contentDigest(info.standard.content)
	}
	logger.Debug("Build: Content loading and hashing complete.")

	for _, b := range bundles {
		repo.materialize(b)
	}
	logger.Debug("Build: Bundle materialization complete.", "bundles", len(bundles))

	repo.indexPaths()

	logger.Debug("Build: Repository construction successful.", "paths", len(repo.lookup))
	return repo, nil
}

func checkClosed(resources []*Resource, bundles []*Bundle, members map[Requestable]struct{}) error {
	for _, r := range resources {
		for _, d := range r.deps {
			if _, ok := members[d]; !ok {
				return fmt.Errorf("dependency %s of %s: %w", d.path, r.path, ErrUndeclared)
			}
		}
	}
	for _, b := range bundles {
		for _, c := range b.contents {
			if _, ok := members[c]; !ok {
				return fmt.Errorf("member %s of bundle %s: %w", c.Path(), b.path, ErrUndeclared)
			}
		}
	}
	return nil
}

// materialize concatenates the bundle's resources, minified flavor first.
// Stylesheets get their url(...) references rebased onto the bundle path.
func (repo *Repository) materialize(b *Bundle) {
	members := ExpandResources(b.contents...)

	var sb strings.Builder
	digests := make([]digest, 0, len(members))
	for _, r := range members {
		content := repo.resources[r].flavor(Minified).content
		if r.typ == Stylesheet {
			content = urlpath.RebaseCSS(content, r.path, b.path)
		}
		sb.WriteString(content)
		digests = append(digests, repo.hashes[r])
	}

	repo.bundles[b] = sb.String()
	repo.hashes[b] = xorDigests(digests)
}

// indexPaths registers every declared path, then every concrete flavor path
// not already taken by a declaration.
func (repo *Repository) indexPaths() {
	for _, r := range repo.declared {
		repo.lookup[r.Path()] = Entry{Requestable: r}
	}
	for _, r := range repo.ordered {
		info := repo.resources[r]
		repo.indexFlavor(r, Standard, info.standard)
		repo.indexFlavor(r, Minified, info.minified)
	}
}

func (repo *Repository) indexFlavor(r *Resource, f Flavor, fi *flavorInfo) {
	if fi == nil {
		return
	}
	if _, taken := repo.lookup[fi.path]; !taken {
		repo.lookup[fi.path] = Entry{Requestable: r, Flavor: f, Concrete: true}
	}
}

// Find looks up a requestable by declared or concrete flavor path.
func (repo *Repository) Find(path string) (Requestable, bool) {
	e, ok := repo.lookup[path]
	return e.Requestable, ok
}

// Lookup is Find with the flavor the path names.
func (repo *Repository) Lookup(path string) (Entry, bool) {
	e, ok := repo.lookup[path]
	return e, ok
}

// Paths returns every path Lookup answers for, sorted.
func (repo *Repository) Paths() []string {
	paths := make([]string, 0, len(repo.lookup))
	for p := range repo.lookup {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Fetch returns the content served for r: the minified flavor of a resource
// when it has one, the concatenation for a bundle.
func (repo *Repository) Fetch(r Requestable) Content {
	return repo.FetchFlavor(r, Minified)
}

// FetchFlavor is Fetch with an explicit flavor preference. Bundles ignore it.
func (repo *Repository) FetchFlavor(r Requestable, f Flavor) Content {
	switch v := r.(type) {
	case *Resource:
		return Content{Body: repo.info(v).flavor(f).content, ContentType: v.typ.ContentType()}
	case *Bundle:
		return Content{Body: repo.bundles[v], ContentType: v.typ.ContentType()}
	}
	return Content{}
}

// FetchEntry serves a lookup result: concrete flavor paths get exactly that
// flavor, declared paths behave like Fetch.
func (repo *Repository) FetchEntry(e Entry) Content {
	if e.Concrete {
		return repo.FetchFlavor(e.Requestable, e.Flavor)
	}
	return repo.Fetch(e.Requestable)
}

// FlavoredPath is the concrete path to link to for r under the flavor
// preference. Bundles only have their own path.
func (repo *Repository) FlavoredPath(r Requestable, f Flavor) string {
	switch v := r.(type) {
	case *Resource:
		return repo.info(v).flavor(f).path
	case *Bundle:
		return v.path
	}
	return ""
}

// Hash returns the URL safe cache-busting token of r.
func (repo *Repository) Hash(r Requestable) string {
	d, ok := repo.hashes[r]
	if !ok {
		panic(fmt.Sprintf("assets: %s is not part of this repository", r.Path()))
	}
	return d.String()
}

// Index returns the position of r in the global dependency order.
func (repo *Repository) Index(r *Resource) int {
	return repo.info(r).index
}

// Resources returns all resources in dependency order.
func (repo *Repository) Resources() []*Resource {
	return slices.Clone(repo.ordered)
}

// Requestables returns all requestables in declaration order.
func (repo *Repository) Requestables() []Requestable {
	return slices.Clone(repo.declared)
}

func (repo *Repository) info(r *Resource) *resourceInfo {
	info, ok := repo.resources[r]
	if !ok {
		panic(fmt.Sprintf("assets: resource %s is not part of this repository", r.path))
	}
	return info
}
