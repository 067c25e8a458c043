package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/specialistvlad/basicbundles/internal/assets"
	"github.com/specialistvlad/basicbundles/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// exportConcurrency bounds the number of files written at once.
const exportConcurrency = 8

// ExportReport summarises an export.
type ExportReport struct {
	Files int
	Bytes int64
}

// Export writes every servable file below dir, laid out like the logical
// paths: bundles, concrete flavors and plain resources. Declared patterns
// carrying the minified marker are skipped; their flavors are written
// instead.
func (a *App) Export(ctx context.Context, dir string) (*ExportReport, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	var files, size atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)

	for _, path := range a.repo.Paths() {
		if strings.Contains(path, assets.MinMarker) {
			continue
		}
		entry, _ := a.repo.Lookup(path)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel := filepath.FromSlash(strings.TrimLeft(strings.TrimPrefix(path, "~"), "/"))
			if !filepath.IsLocal(rel) {
				return fmt.Errorf("export %s: path leaves the export directory", path)
			}
			body := a.repo.FetchEntry(entry).Body
			target := filepath.Join(dir, rel)
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("export %s: %w", path, err)
			}
			if err := os.WriteFile(target, []byte(body), 0o644); err != nil {
				return fmt.Errorf("export %s: %w", path, err)
			}
			files.Add(1)
			size.Add(int64(len(body)))
			logger.Debug("Exported asset.", "path", path, "target", target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &ExportReport{Files: int(files.Load()), Bytes: size.Load()}
	logger.Info("📤 Export finished.", "files", report.Files, "bytes", report.Bytes, "dir", dir)
	return report, nil
}
