package assets

import "slices"

// Requirable is anything a page can require: *Resource, *Bundle or *Group.
// The interface is sealed; no other implementations exist.
type Requirable interface {
	requirable()
}

// Requestable is a Requirable with its own path: *Resource or *Bundle.
type Requestable interface {
	Requirable
	Type() Type
	// Path is the declared path. It is unique within a catalog and is the
	// identity key used for lookups.
	Path() string
	requestable()
}

// Resource is a single script or stylesheet. Its path may be a pattern
// containing the "(.min)" marker, see FlavorPaths.
type Resource struct {
	typ  Type
	path string
	deps []*Resource
}

func (*Resource) requirable()  {}
func (*Resource) requestable() {}

func (r *Resource) Type() Type     { return r.typ }
func (r *Resource) Path() string   { return r.path }
func (r *Resource) String() string { return r.path }

// Dependencies returns the direct dependencies in declaration order.
func (r *Resource) Dependencies() []*Resource { return slices.Clone(r.deps) }

// Bundle is a named aggregate of requestables of a single type.
type Bundle struct {
	typ      Type
	path     string
	contents []Requestable
}

func (*Bundle) requirable()  {}
func (*Bundle) requestable() {}

func (b *Bundle) Type() Type     { return b.typ }
func (b *Bundle) Path() string   { return b.path }
func (b *Bundle) String() string { return b.path }

// Contents returns the direct contents in declaration order.
func (b *Bundle) Contents() []Requestable { return slices.Clone(b.contents) }

// Group requires all of its contents together. It may mix scripts and
// stylesheets.
type Group struct {
	contents []Requirable
}

func (*Group) requirable() {}

// Contents returns the direct contents in declaration order.
func (g *Group) Contents() []Requirable { return slices.Clone(g.contents) }

// Requestables expands r into the requestables it stands for. Groups are
// flattened recursively; resources and bundles stand for themselves.
func Requestables(r Requirable) []Requestable {
	switch v := r.(type) {
	case *Resource:
		return []Requestable{v}
	case *Bundle:
		return []Requestable{v}
	case *Group:
		var out []Requestable
		for _, c := range v.contents {
			out = append(out, Requestables(c)...)
		}
		return out
	}
	return nil
}

// ExpandResources flattens bundles depth first, in declaration order, into
// the resources they contain. Duplicates are kept.
func ExpandResources(rs ...Requestable) []*Resource {
	var out []*Resource
	var walk func(Requestable)
	walk = func(r Requestable) {
		switch v := r.(type) {
		case *Resource:
			out = append(out, v)
		case *Bundle:
			for _, c := range v.contents {
				walk(c)
			}
		}
	}
	for _, r := range rs {
		walk(r)
	}
	return out
}

// WithDependencies returns resources together with all of their transitive
// dependencies, each exactly once. The order is breadth first from the
// inputs and carries no meaning; callers sort by Repository.Index.
func WithDependencies(resources []*Resource) []*Resource {
	seen := make(map[*Resource]struct{}, len(resources))
	queue := slices.Clone(resources)
	out := make([]*Resource, 0, len(resources))
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := seen[next]; ok {
			continue
		}
		seen[next] = struct{}{}
		out = append(out, next)
		queue = append(queue, next.deps...)
	}
	return out
}
