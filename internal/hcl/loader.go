package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/basicbundles/internal/config"
	"github.com/specialistvlad/basicbundles/internal/ctxlog"
	"github.com/specialistvlad/basicbundles/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Extension is the file extension this loader reads.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	overrides map[string]string
}

// Option customises a Loader.
type Option func(*Loader)

// WithVariables overrides variable defaults. Overrides for variables that
// no manifest declares are an error.
func WithVariables(vars map[string]string) Option {
	return func(l *Loader) {
		for k, v := range vars {
			l.overrides[k] = v
		}
	}
}

// NewLoader creates a new HCL manifest loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{overrides: make(map[string]string)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type parsedFile struct {
	path string
	file *hcl.File
}

// Load parses every .hcl file under paths. Variables are collected from all
// files before any other block is decoded, so a variable may be used in a
// different file than the one declaring it.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	files := make([]parsedFile, 0, len(hclFiles))
	for _, path := range hclFiles {
		f, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}
		files = append(files, parsedFile{path: path, file: f})
	}

	evalCtx, err := l.evalContext(ctx, files)
	if err != nil {
		return nil, err
	}

	model := &config.Model{}
	for _, f := range files {
		var root fileRoot
		if diags := gohcl.DecodeBody(f.file.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", f.path, diags)
		}
		translated, err := translateFile(ctx, f.path, &root, evalCtx)
		if err != nil {
			return nil, err
		}
		model.Merge(translated)
	}

	logger.Debug("HCL loading complete.", "resources", len(model.Resources), "bundles", len(model.Bundles), "groups", len(model.Groups))
	return model, nil
}

// evalContext exposes every variable as var.<name>.
func (l *Loader) evalContext(ctx context.Context, files []parsedFile) (*hcl.EvalContext, error) {
	logger := ctxlog.FromContext(ctx)
	vars := make(map[string]cty.Value)
	declaredIn := make(map[string]string)

	for _, f := range files {
		var root variablesRoot
		if diags := gohcl.DecodeBody(f.file.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode variables in %s: %w", f.path, diags)
		}
		for _, v := range root.Variables {
			if prev, dup := declaredIn[v.Name]; dup {
				return nil, fmt.Errorf("variable %q in %s is already declared in %s", v.Name, f.path, prev)
			}
			declaredIn[v.Name] = f.path

			if override, ok := l.overrides[v.Name]; ok {
				vars[v.Name] = cty.StringVal(override)
				continue
			}
			if !isExprDefined(ctx, v.Default, "default") {
				return nil, fmt.Errorf("variable %q in %s has no default and no value was given", v.Name, f.path)
			}
			val, diags := v.Default.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("invalid default for variable %q in %s: %w", v.Name, f.path, diags)
			}
			vars[v.Name] = val
		}
	}

	for name := range l.overrides {
		if _, ok := declaredIn[name]; !ok {
			return nil, fmt.Errorf("value given for undeclared variable %q", name)
		}
	}
	logger.Debug("HCL variables resolved.", "count", len(vars))

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(vars)},
	}, nil
}

// findAllHCLFiles returns every .hcl file under paths, each once, in the
// order the paths were given. Missing paths are skipped.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
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
			if filepath.Ext(path) == Extension {
				add(path)
			}
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, Extension)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
