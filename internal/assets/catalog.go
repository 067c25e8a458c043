package assets

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Catalog collects declarations until it is committed into a Repository.
type Catalog struct {
	loader Loader

	mu       sync.Mutex
	frozen   bool
	paths    map[string]Requestable
	declared []Requestable

	once sync.Once
	repo *Repository
	err  error
}

// NewCatalog creates an open catalog whose content will be read through
// loader when it is committed.
func NewCatalog(loader Loader) *Catalog {
	return &Catalog{
		loader: loader,
		paths:  make(map[string]Requestable),
	}
}

// AddScript declares a script resource.
func (c *Catalog) AddScript(path string, deps ...*Resource) (*Resource, error) {
	return c.addResource(Script, path, deps)
}

// AddStylesheet declares a stylesheet resource.
func (c *Catalog) AddStylesheet(path string, deps ...*Resource) (*Resource, error) {
	return c.addResource(Stylesheet, path, deps)
}

func (c *Catalog) addResource(typ Type, path string, deps []*Resource) (*Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpen(path); err != nil {
		return nil, err
	}
	if err := c.checkDependencies(typ, path, deps); err != nil {
		return nil, err
	}

	r := &Resource{typ: typ, path: path, deps: slices.Clone(deps)}
	c.register(r)
	return r, nil
}

// AddBundle declares a bundle. All contents must share one type, which
// becomes the bundle's type. Nested bundles are allowed.
func (c *Catalog) AddBundle(path string, contents ...Requestable) (*Bundle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpen(path); err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyBundle, path)
	}
	for _, item := range contents {
		if !c.owns(item) {
			return nil, fmt.Errorf("bundle %s: %w", path, ErrUndeclared)
		}
	}
	typ := contents[0].Type()
	for _, item := range contents[1:] {
		if item.Type() != typ {
			return nil, fmt.Errorf("%w: bundle %s mixes %s %s with %s %s",
				ErrTypeMismatch, path, typ, contents[0].Path(), item.Type(), item.Path())
		}
	}

	b := &Bundle{typ: typ, path: path, contents: slices.Clone(contents)}
	c.register(b)
	return b, nil
}

// AddGroup creates a group. Groups have no path and are not stored, so this
// never fails and is allowed after commit.
func (c *Catalog) AddGroup(contents ...Requirable) *Group {
	return &Group{contents: slices.Clone(contents)}
}

// Link adds dependency edges to an already declared resource. It lets
// manifests reference resources declared further down; it is also the only
// way a cycle can be introduced, which Commit then reports.
func (c *Catalog) Link(r *Resource, deps ...*Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.owns(r) {
		return fmt.Errorf("link: %w", ErrUndeclared)
	}
	if c.frozen {
		return fmt.Errorf("%w: cannot link %s", ErrFrozen, r.Path())
	}
	if err := c.checkDependencies(r.typ, r.path, deps); err != nil {
		return err
	}
	r.deps = append(r.deps, deps...)
	return nil
}

// Commit freezes the catalog and builds the repository. The build runs once;
// concurrent and later callers get the same repository or the same error.
func (c *Catalog) Commit(ctx context.Context) (*Repository, error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.frozen = true
		declared := slices.Clone(c.declared)
		c.mu.Unlock()

		c.repo, c.err = Build(ctx, declared, c.loader)
	})
	return c.repo, c.err
}

// Repository returns the committed repository, committing on first use.
func (c *Catalog) Repository(ctx context.Context) (*Repository, error) {
	return c.Commit(ctx)
}

// Frozen reports whether Commit has been called.
func (c *Catalog) Frozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen
}

// Declared returns the declared requestables in declaration order.
func (c *Catalog) Declared() []Requestable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.declared)
}

func (c *Catalog) checkOpen(path string) error {
	if c.frozen {
		return fmt.Errorf("%w: cannot declare %s", ErrFrozen, path)
	}
	if _, ok := c.paths[path]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	return nil
}

func (c *Catalog) checkDependencies(typ Type, path string, deps []*Resource) error {
	for _, d := range deps {
		if !c.owns(d) {
			return fmt.Errorf("dependency of %s: %w", path, ErrUndeclared)
		}
		if d.typ != typ {
			return fmt.Errorf("%w: the %s %s depends on the %s %s",
				ErrTypeMismatch, typ, path, d.typ, d.path)
		}
	}
	return nil
}

func (c *Catalog) owns(r Requestable) bool {
	switch v := r.(type) {
	case *Resource:
		if v == nil {
			return false
		}
	case *Bundle:
		if v == nil {
			return false
		}
	default:
		return false
	}
	known, ok := c.paths[r.Path()]
	return ok && known == r
}

func (c *Catalog) register(r Requestable) {
	c.paths[r.Path()] = r
	c.declared = append(c.declared, r)
}

// Must panics when err is not nil. It is meant for declaration tables that
// run at startup, where a declaration error is a programming error.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
