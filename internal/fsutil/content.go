package fsutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

const byteOrderMark = "\uFEFF"

// ContentLoader reads logical "~/..." paths from below Root. It satisfies
// assets.Loader. Paths that would leave Root are rejected.
type ContentLoader struct {
	Root string
}

// Load returns the text of the file behind path with any leading UTF-8 byte
// order mark removed.
func (l ContentLoader) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := strings.TrimLeft(strings.TrimPrefix(path, "~"), "/")
	if rel == "" {
		return "", fmt.Errorf("path %q does not name a file", path)
	}

	root, err := os.OpenRoot(l.Root)
	if err != nil {
		return "", fmt.Errorf("error opening content root: %w", err)
	}
	defer root.Close()

	f, err := root.Open(rel)
	if err != nil {
		return "", err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}
	return strings.TrimPrefix(string(b), byteOrderMark), nil
}
