package library

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
)

// Walker traverses the filesystem and discovers ebook files.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new walker.
func NewWalker(logger *slog.Logger) *Walker {
	return &Walker{logger: logger}
}

// WalkResult is an ebook file discovered during walking.
type WalkResult struct {
	Path    string
	RelPath string
	Format  string
	Size    int64
}

// Walk traverses rootPath and streams every file with a known ebook
// extension. Hidden files and directories are skipped. The channel closes
// when the walk completes or ctx is cancelled.
func (w *Walker) Walk(ctx context.Context, rootPath string) <-chan WalkResult {
	results := make(chan WalkResult, 100)

	go func() {
		defer close(results)

		err := filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				w.logger.Warn("walk error", "path", path, "error", err)
				return nil
			}

			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			format, ok := domain.FormatOf(path)
			if !ok {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				w.logger.Warn("failed to get file info", "path", path, "error", err)
				return nil
			}

			relPath, err := filepath.Rel(rootPath, path)
			if err != nil {
				relPath = path
			}

			select {
			case results <- WalkResult{Path: path, RelPath: relPath, Format: format, Size: info.Size()}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("walk failed", "root", rootPath, "error", err)
		}
	}()

	return results
}
