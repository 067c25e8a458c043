package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/basicbundles/internal/config"
	"github.com/specialistvlad/basicbundles/internal/ctxlog"
	"github.com/specialistvlad/basicbundles/internal/fsutil"
	"github.com/specialistvlad/basicbundles/internal/hcl"
)

// parsers maps the non-HCL extensions to their document parser.
var parsers = map[string]func([]byte) (*document, error){
	".yaml":  parseYAML,
	".yml":   parseYAML,
	".json":  parseJSONC,
	".jsonc": parseJSONC,
}

// Extensions lists every manifest extension the Loader reads.
var Extensions = []string{hcl.Extension, ".yaml", ".yml", ".json", ".jsonc"}

// Loader reads manifests of every supported format. HCL files are handed to
// the HCL loader together so they share variables; HCL declarations come
// first in the model, followed by the other files in discovery order.
type Loader struct {
	hcl *hcl.Loader
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a loader; opts configure the HCL loader.
func NewLoader(opts ...hcl.Option) *Loader {
	return &Loader{hcl: hcl.NewLoader(opts...)}
}

// Load walks paths, which may be files or directories. Missing paths are
// skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := discover(paths)
	if err != nil {
		return nil, err
	}

	var hclFiles, otherFiles []string
	for _, f := range files {
		if filepath.Ext(f) == hcl.Extension {
			hclFiles = append(hclFiles, f)
		} else {
			otherFiles = append(otherFiles, f)
		}
	}
	logger.Debug("Discovered manifest files.", "hcl", len(hclFiles), "other", len(otherFiles))

	model := &config.Model{}
	if len(hclFiles) > 0 {
		m, err := l.hcl.Load(ctx, hclFiles...)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}
	for _, f := range otherFiles {
		m, err := loadDocument(f)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}

	logger.Debug("Manifests loaded.", "declarations", model.Len())
	return model, nil
}

func loadDocument(path string) (*config.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := parsers[filepath.Ext(path)](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	model, err := doc.toModel(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

func discover(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if isManifest(path) {
				add(path)
			}
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, Extensions...)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if isManifest(f) {
				add(f)
			}
		}
	}
	return files, nil
}

func isManifest(path string) bool {
	ext := filepath.Ext(path)
	_, ok := parsers[ext]
	return ok || ext == hcl.Extension
}
