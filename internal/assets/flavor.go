package assets

import (
	"context"
	"strings"
)

// MinMarker in a resource path splits it into a standard and a minified
// flavor: "app(.min).js" names "app.js" and "app.min.js".
const MinMarker = "(.min)"

// FlavorPaths returns the concrete paths behind a declared path. minified is
// empty when the pattern has no marker.
func FlavorPaths(pattern string) (standard, minified string) {
	if !strings.Contains(pattern, MinMarker) {
		return pattern, ""
	}
	return strings.ReplaceAll(pattern, MinMarker, ""), strings.ReplaceAll(pattern, MinMarker, ".min")
}

type flavorInfo struct {
	path    string
	content string
}

type resourceInfo struct {
	index    int
	standard *flavorInfo
	minified *flavorInfo
}

// flavor returns the requested flavor, or the other one when it is missing.
func (i *resourceInfo) flavor(f Flavor) *flavorInfo {
	if f == Minified && i.minified != nil {
		return i.minified
	}
	if i.standard != nil {
		return i.standard
	}
	return i.minified
}

func loadResourceInfo(ctx context.Context, loader Loader, index int, pattern string) (*resourceInfo, error) {
	standardPath, minifiedPath := FlavorPaths(pattern)

	info := &resourceInfo{index: index}
	var err error
	if info.standard, err = loadFlavor(ctx, loader, standardPath); err != nil {
		return nil, err
	}
	if minifiedPath != "" {
		if info.minified, err = loadFlavor(ctx, loader, minifiedPath); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func loadFlavor(ctx context.Context, loader Loader, path string) (*flavorInfo, error) {
	content, err := loader.Load(ctx, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &flavorInfo{path: path, content: content}, nil
}
