package config

import (
	"fmt"
	"strings"
)

// Kinds of declarations. They double as reference prefixes, e.g.
// "script.jquery".
const (
	KindScript     = "script"
	KindStylesheet = "stylesheet"
	KindBundle     = "bundle"
	KindGroup      = "group"
)

// Model is the unified, format-agnostic representation of every manifest
// that was loaded. Slices keep declaration order. Names share a single
// namespace across kinds.
type Model struct {
	Resources []*Resource
	Bundles   []*Bundle
	Groups    []*Group
}

// Resource is a `script` or `stylesheet` declaration.
type Resource struct {
	Kind      string
	Name      string
	Path      string
	DependsOn []Ref
	Source    string
}

// Bundle is a `bundle` declaration. Contents reference resources or other
// bundles of the same type.
type Bundle struct {
	Name     string
	Path     string
	Contents []Ref
	Source   string
}

// Group is a `group` declaration. Contents may reference anything.
type Group struct {
	Name     string
	Contents []Ref
	Source   string
}

// Ref names another declaration. Kind is empty when the manifest used a bare
// name.
type Ref struct {
	Kind string
	Name string
}

func (r Ref) String() string {
	if r.Kind == "" {
		return r.Name
	}
	return r.Kind + "." + r.Name
}

// ParseRef accepts "name" or "<kind>.name".
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty reference")
	}
	if kind, name, ok := strings.Cut(s, "."); ok && IsKind(kind) {
		if name == "" {
			return Ref{}, fmt.Errorf("reference %q has no name", s)
		}
		return Ref{Kind: kind, Name: name}, nil
	}
	return Ref{Name: s}, nil
}

// ParseRefs parses every element of refs.
func ParseRefs(refs []string) ([]Ref, error) {
	out := make([]Ref, 0, len(refs))
	for _, s := range refs {
		r, err := ParseRef(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// IsKind reports whether s is one of the declaration kinds.
func IsKind(s string) bool {
	switch s {
	case KindScript, KindStylesheet, KindBundle, KindGroup:
		return true
	}
	return false
}

// Merge appends other's declarations after m's.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Resources = append(m.Resources, other.Resources...)
	m.Bundles = append(m.Bundles, other.Bundles...)
	m.Groups = append(m.Groups, other.Groups...)
}

// Len is the total number of declarations.
func (m *Model) Len() int {
	return len(m.Resources) + len(m.Bundles) + len(m.Groups)
}
