package assets

import (
	"fmt"
	"strings"
)

// Type is the kind of content a resource holds.
type Type int

const (
	Script Type = iota
	Stylesheet
)

func (t Type) String() string {
	switch t {
	case Script:
		return "script"
	case Stylesheet:
		return "stylesheet"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ContentType is the MIME type used when serving content of this type.
func (t Type) ContentType() string {
	if t == Stylesheet {
		return "text/css"
	}
	return "text/javascript"
}

// ParseType accepts the names used in manifests.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "script", "js":
		return Script, nil
	case "stylesheet", "style", "css":
		return Stylesheet, nil
	default:
		return 0, fmt.Errorf("unknown resource type %q: must be 'script' or 'stylesheet'", s)
	}
}

// Flavor selects between the standard and the minified variant of a
// resource.
type Flavor int

const (
	Standard Flavor = iota
	Minified
)

func (f Flavor) String() string {
	if f == Minified {
		return "minified"
	}
	return "standard"
}

// ParseFlavor accepts "standard" and "minified".
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return Standard, nil
	case "minified", "min":
		return Minified, nil
	default:
		return 0, fmt.Errorf("invalid flavor %q: must be 'standard' or 'minified'", s)
	}
}

// RenderMode decides whether bundles are rendered as one tag or expanded
// into the tags of every resource they contain.
type RenderMode int

const (
	// Individual renders one tag per resource, dependencies included.
	Individual RenderMode = iota
	// Bundled renders bundles and loose resources as required.
	Bundled
)

func (m RenderMode) String() string {
	if m == Bundled {
		return "bundled"
	}
	return "individual"
}

// ParseRenderMode accepts "individual" and "bundled".
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual", "":
		return Individual, nil
	case "bundled":
		return Bundled, nil
	default:
		return 0, fmt.Errorf("invalid render mode %q: must be 'individual' or 'bundled'", s)
	}
}
