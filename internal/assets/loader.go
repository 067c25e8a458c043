package assets

import "context"

// Loader returns the text of the file behind a concrete (flavor) path. It is
// only called during the build pass.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (string, error)

func (f LoaderFunc) Load(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// MapLoader serves content from memory. Unknown paths are an error.
type MapLoader map[string]string

func (m MapLoader) Load(_ context.Context, path string) (string, error) {
	content, ok := m[path]
	if !ok {
		return "", ErrNotFound
	}
	return content, nil
}
