package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads every manifest found under paths and translates the
	// declarations into one format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
