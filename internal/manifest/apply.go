package manifest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/basicbundles/internal/assets"
	"github.com/specialistvlad/basicbundles/internal/config"
	"github.com/specialistvlad/basicbundles/internal/ctxlog"
)

var (
	// ErrDuplicateName is returned when two declarations share a name.
	ErrDuplicateName = errors.New("duplicate declaration name")
	// ErrUnknownReference is returned for references to undeclared names.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrInvalidReference is returned when a reference names the wrong kind
	// of declaration for where it is used.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrReferenceCycle is returned when bundles or groups contain each
	// other.
	ErrReferenceCycle = errors.New("reference cycle")
)

type declaration struct {
	kind     string
	name     string
	source   string
	resource *config.Resource
	bundle   *config.Bundle
	group    *config.Group
}

func (d *declaration) String() string { return d.kind + "." + d.name }

type applier struct {
	catalog  *assets.Catalog
	decls    map[string]*declaration
	entries  map[string]assets.Requirable
	visiting map[string]bool
	stack    []string
}

// Apply declares everything in model on catalog and returns the declared
// entities by name.
//
// Resources are declared in model order and linked afterwards, so
// dependencies may point forward; dependency cycles surface when the catalog
// is committed. Bundles and groups are declared in reference order, and a
// bundle or group that contains itself is an error.
func Apply(ctx context.Context, model *config.Model, catalog *assets.Catalog) (map[string]assets.Requirable, error) {
	logger := ctxlog.FromContext(ctx)
	a := &applier{
		catalog:  catalog,
		decls:    make(map[string]*declaration, model.Len()),
		entries:  make(map[string]assets.Requirable, model.Len()),
		visiting: make(map[string]bool),
	}
	if err := a.index(model); err != nil {
		return nil, err
	}

	for _, r := range model.Resources {
		if err := a.declareResource(r); err != nil {
			return nil, err
		}
	}
	for _, r := range model.Resources {
		if err := a.linkResource(r); err != nil {
			return nil, err
		}
	}
	logger.Debug("Apply: Resources declared.", "count", len(model.Resources))

	for _, b := range model.Bundles {
		if _, err := a.resolve(b.Name); err != nil {
			return nil, err
		}
	}
	for _, g := range model.Groups {
		if _, err := a.resolve(g.Name); err != nil {
			return nil, err
		}
	}
	logger.Debug("Apply: Bundles and groups declared.", "bundles", len(model.Bundles), "groups", len(model.Groups))

	return a.entries, nil
}

func (a *applier) index(model *config.Model) error {
	add := func(d *declaration) error {
		if prev, dup := a.decls[d.name]; dup {
			return fmt.Errorf("%w: %s (%s) and %s (%s)", ErrDuplicateName, prev, prev.source, d, d.source)
		}
		a.decls[d.name] = d
		return nil
	}
	for _, r := range model.Resources {
		if err := add(&declaration{kind: r.Kind, name: r.Name, source: r.Source, resource: r}); err != nil {
			return err
		}
	}
	for _, b := range model.Bundles {
		if err := add(&declaration{kind: config.KindBundle, name: b.Name, source: b.Source, bundle: b}); err != nil {
			return err
		}
	}
	for _, g := range model.Groups {
		if err := add(&declaration{kind: config.KindGroup, name: g.Name, source: g.Source, group: g}); err != nil {
			return err
		}
	}
	return nil
}

func (a *applier) declareResource(r *config.Resource) error {
	typ, err := assets.ParseType(r.Kind)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", r.Kind, r.Name, err)
	}
	var res *assets.Resource
	if typ == assets.Stylesheet {
		res, err = a.catalog.AddStylesheet(r.Path)
	} else {
		res, err = a.catalog.AddScript(r.Path)
	}
	if err != nil {
		return fmt.Errorf("%s.%s: %w", r.Kind, r.Name, err)
	}
	a.entries[r.Name] = res
	return nil
}

func (a *applier) linkResource(r *config.Resource) error {
	owner := a.decls[r.Name]
	deps := make([]*assets.Resource, 0, len(r.DependsOn))
	for _, ref := range r.DependsOn {
		d, err := a.lookup(owner, ref)
		if err != nil {
			return err
		}
		if d.resource == nil {
			return fmt.Errorf("%s: %w: %s is a %s, dependencies must be scripts or stylesheets", owner, ErrInvalidReference, ref, d.kind)
		}
		deps = append(deps, a.entries[d.name].(*assets.Resource))
	}
	if len(deps) == 0 {
		return nil
	}
	if err := a.catalog.Link(a.entries[r.Name].(*assets.Resource), deps...); err != nil {
		return fmt.Errorf("%s: %w", owner, err)
	}
	return nil
}

// resolve declares the bundle or group called name, declaring whatever it
// contains first.
func (a *applier) resolve(name string) (assets.Requirable, error) {
	if e, ok := a.entries[name]; ok {
		return e, nil
	}
	d := a.decls[name]
	if a.visiting[name] {
		chain := append(slices.Clone(a.stack[slices.Index(a.stack, d.String()):]), d.String())
		return nil, fmt.Errorf("%w: %s", ErrReferenceCycle, strings.Join(chain, " -> "))
	}
	a.visiting[name] = true
	a.stack = append(a.stack, d.String())
	defer func() {
		a.visiting[name] = false
		a.stack = a.stack[:len(a.stack)-1]
	}()

	var refs []config.Ref
	if d.bundle != nil {
		refs = d.bundle.Contents
	} else {
		refs = d.group.Contents
	}

	contents := make([]assets.Requirable, 0, len(refs))
	for _, ref := range refs {
		target, err := a.lookup(d, ref)
		if err != nil {
			return nil, err
		}
		e, err := a.resolve(target.name)
		if err != nil {
			return nil, err
		}
		contents = append(contents, e)
	}

	var entry assets.Requirable
	if d.bundle != nil {
		members := make([]assets.Requestable, 0, len(contents))
		for i, c := range contents {
			m, ok := c.(assets.Requestable)
			if !ok {
				return nil, fmt.Errorf("%s: %w: %s is a group, bundles may only contain resources and bundles", d, ErrInvalidReference, refs[i])
			}
			members = append(members, m)
		}
		b, err := a.catalog.AddBundle(d.bundle.Path, members...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d, err)
		}
		entry = b
	} else {
		entry = a.catalog.AddGroup(contents...)
	}
	a.entries[name] = entry
	return entry, nil
}

// lookup finds the declaration ref points at and checks its kind.
func (a *applier) lookup(owner *declaration, ref config.Ref) (*declaration, error) {
	d, ok := a.decls[ref.Name]
	if !ok {
		return nil, fmt.Errorf("%s (%s): %w %s", owner, owner.source, ErrUnknownReference, ref)
	}
	if ref.Kind != "" && ref.Kind != d.kind {
		return nil, fmt.Errorf("%s (%s): %w: %s names a %s", owner, owner.source, ErrInvalidReference, ref, d.kind)
	}
	return d, nil
}
