package urlpath

import "strings"

// appRelativePrefix marks a logical, application relative path.
const appRelativePrefix = "~/"

// VirtualPaths converts between logical "~/..." paths and the host paths
// they are served under when the application lives below Base.
type VirtualPaths struct {
	Base string
}

// NewVirtualPaths normalises base so that it starts and ends with a slash.
func NewVirtualPaths(base string) VirtualPaths {
	base = "/" + strings.Trim(base, "/")
	if base != "/" {
		base += "/"
	}
	return VirtualPaths{Base: base}
}

// ToAbsolute maps "~/x" to Base+"x". Other paths pass through.
func (v VirtualPaths) ToAbsolute(logical string) string {
	if rest, ok := strings.CutPrefix(logical, appRelativePrefix); ok {
		return v.base() + rest
	}
	return logical
}

// ToAppRelative is the inverse of ToAbsolute. Paths outside Base pass
// through unchanged and therefore never match a logical path.
func (v VirtualPaths) ToAppRelative(hostPath string) string {
	if rest, ok := strings.CutPrefix(hostPath, v.base()); ok {
		return appRelativePrefix + rest
	}
	return hostPath
}

func (v VirtualPaths) base() string {
	if v.Base == "" {
		return "/"
	}
	return v.Base
}

// Identity is the translator used when the host does not supply one.
func Identity(p string) string { return p }
