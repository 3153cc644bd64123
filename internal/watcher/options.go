package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// DefaultSettleDelay is used when Options.SettleDelay is zero.
const DefaultSettleDelay = time.Second

// builtinIgnore matches in-progress downloads, office lock files and OS
// clutter by base name.
var builtinIgnore = []string{
	"*.part",
	"*.partial",
	"*.crdownload",
	"*.download",
	"*.tmp",
	"*.temp",
	"~$*",
	"Thumbs.db",
	"desktop.ini",
}

// Options configures a Watcher.
type Options struct {
	// Extensions limits file events to these extensions, compared
	// case-insensitively (".epub"). Empty means every file.
	Extensions []string
	// SettleDelay is how long size and modification time must hold still
	// before a file is reported.
	SettleDelay time.Duration
	// Ignore adds glob patterns, matched against base names, to the
	// built-in ones.
	Ignore []string
}

// filter decides which paths produce events. Hidden entries (leading dot)
// are always skipped; directories under a hidden one are never watched.
type filter struct {
	exts     map[string]struct{}
	patterns []string
}

func newFilter(o Options) filter {
	f := filter{patterns: append(append([]string{}, builtinIgnore...), o.Ignore...)}
	if len(o.Extensions) > 0 {
		f.exts = make(map[string]struct{}, len(o.Extensions))
		for _, e := range o.Extensions {
			e = strings.ToLower(e)
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			f.exts[e] = struct{}{}
		}
	}
	return f
}

// skip reports whether path is hidden or matches an ignore pattern.
func (f filter) skip(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, p := range f.patterns {
		if ok, err := filepath.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}

// wants reports whether a file at path is one the caller asked for.
func (f filter) wants(path string) bool {
	if f.exts == nil {
		return true
	}
	_, ok := f.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}
