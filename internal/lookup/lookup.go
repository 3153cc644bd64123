// Package lookup wraps the external metadata search with memoization and
// turns every failure into "no data".
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ghiridhars/ebook-organizer/internal/author"
	"github.com/ghiridhars/ebook-organizer/internal/metadata/openlibrary"
)

const (
	defaultTTL      = 30 * 24 * time.Hour
	defaultErrorTTL = 10 * time.Minute
)

// Searcher is the external search the adapter fronts.
type Searcher interface {
	Search(ctx context.Context, title, author string) (*openlibrary.Book, error)
}

// Metadata is what a successful lookup contributes to classification.
type Metadata struct {
	Author   string
	Subjects []string
}

// Options tune cache lifetimes.
type Options struct {
	// TTL applies to hits and definitive misses.
	TTL time.Duration
	// ErrorTTL applies to transport and server failures, which are also
	// remembered so a flaky remote is not hammered within one batch.
	ErrorTTL time.Duration
}

// Adapter looks books up by file path or title.
type Adapter struct {
	searcher Searcher
	cache    Cache
	opts     Options
	logger   *slog.Logger
}

// New creates an adapter. A nil cache disables memoization.
func New(searcher Searcher, cache Cache, opts Options, logger *slog.Logger) *Adapter {
	if opts.TTL == 0 {
		opts.TTL = defaultTTL
	}
	if opts.ErrorTTL == 0 {
		opts.ErrorTTL = defaultErrorTTL
	}
	return &Adapter{searcher: searcher, cache: cache, opts: opts, logger: logger}
}

// CacheKey is the memoization key for a (title, author) query.
func CacheKey(title, knownAuthor string) string {
	return title + "|" + knownAuthor
}

// Lookup searches for the book at pathOrTitle. Anything containing a path
// separator is reduced to a title via its file name. The bool is false when
// nothing usable came back, including on any error.
func (a *Adapter) Lookup(ctx context.Context, pathOrTitle, knownAuthor string) (Metadata, bool) {
	title := pathOrTitle
	if strings.ContainsAny(pathOrTitle, `/\`) {
		title = author.TitleFromFilename(pathOrTitle)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Metadata{}, false
	}

	key := CacheKey(title, knownAuthor)
	if a.cache != nil {
		if e, ok := a.cache.Get(key); ok {
			return Metadata{Author: e.Author, Subjects: e.Subjects}, e.Found
		}
	}

	book, err := a.searcher.Search(ctx, title, knownAuthor)
	switch {
	case err == nil:
		e := Entry{Found: true, Author: book.Author, Subjects: book.Subjects}
		a.remember(key, e, a.opts.TTL)
		return Metadata{Author: e.Author, Subjects: e.Subjects}, true
	case errors.Is(err, openlibrary.ErrNotFound):
		a.remember(key, Entry{}, a.opts.TTL)
	case ctx.Err() != nil:
		// Cancellation says nothing about the book.
	default:
		a.logger.Warn("metadata lookup failed", "title", title, "error", err)
		a.remember(key, Entry{}, a.opts.ErrorTTL)
	}
	return Metadata{}, false
}

func (a *Adapter) remember(key string, e Entry, ttl time.Duration) {
	if a.cache != nil {
		a.cache.Set(key, e, ttl)
	}
}
