// Package ebookmeta reads the metadata embedded in ebook files. Each format
// has its own Reader; a Registry picks one by file extension.
package ebookmeta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
)

// ErrUnsupported is returned for formats without a reader.
var ErrUnsupported = errors.New("no metadata reader for format")

// Metadata is what a file says about itself. Empty fields are absent.
type Metadata struct {
	Title       string
	Author      string
	Subjects    []string
	Description string
	Publisher   string
	Language    string
	Date        string
}

// Genre returns the first non-blank subject, used as the embedded genre.
func (m *Metadata) Genre() string {
	for _, s := range m.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Reader extracts metadata from one file format.
type Reader interface {
	Read(ctx context.Context, path string) (*Metadata, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, path string) (*Metadata, error)

// Read calls f.
func (f ReaderFunc) Read(ctx context.Context, path string) (*Metadata, error) {
	return f(ctx, path)
}

// Registry maps format names (see domain.Formats) to readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Default returns a registry with every built-in reader.
func Default() *Registry {
	r := NewRegistry()
	r.Register("epub", EPUBReader{})
	return r
}

// Register sets the reader for format, replacing any previous one.
func (r *Registry) Register(format string, reader Reader) {
	r.readers[format] = reader
}

// Supports reports whether a reader is registered for format.
func (r *Registry) Supports(format string) bool {
	_, ok := r.readers[format]
	return ok
}

// Read dispatches on the extension of path. Unknown or unregistered formats
// return ErrUnsupported.
func (r *Registry) Read(ctx context.Context, path string) (*Metadata, error) {
	format, ok := domain.FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	reader, ok := r.readers[format]
	if !ok {
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupported)
	}
	return reader.Read(ctx, path)
}
