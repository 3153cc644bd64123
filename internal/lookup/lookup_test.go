package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/metadata/openlibrary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	book   *openlibrary.Book
	err    error
	calls  int
	titles []string
}

func (f *fakeSearcher) Search(_ context.Context, title, _ string) (*openlibrary.Book, error) {
	f.calls++
	f.titles = append(f.titles, title)
	return f.book, f.err
}

func TestAdapter_HitIsMemoized(t *testing.T) {
	s := &fakeSearcher{book: &openlibrary.Book{Title: "Dune", Author: "Frank Herbert", Subjects: []string{"Science fiction"}}}
	cache := newMemoryCache(t, 10)
	a := New(s, cache, Options{}, logger.Discard())

	for i := 0; i < 3; i++ {
		md, ok := a.Lookup(context.Background(), "/books/incoming/Dune (PDFDrive).epub", "")
		require.True(t, ok)
		assert.Equal(t, "Frank Herbert", md.Author)
		assert.Equal(t, []string{"Science fiction"}, md.Subjects)
	}

	assert.Equal(t, 1, s.calls)
	assert.Equal(t, []string{"Dune"}, s.titles)
	assert.Equal(t, 1, cache.Len())
}

func TestAdapter_TitleInput(t *testing.T) {
	s := &fakeSearcher{book: &openlibrary.Book{Title: "Dune"}}
	a := New(s, nil, Options{}, logger.Discard())

	_, ok := a.Lookup(context.Background(), "Dune Messiah", "Frank Herbert")
	assert.True(t, ok)
	assert.Equal(t, []string{"Dune Messiah"}, s.titles)
}

func TestAdapter_ShortTitleSkipsSearch(t *testing.T) {
	s := &fakeSearcher{}
	a := New(s, newMemoryCache(t, 10), Options{}, logger.Discard())

	_, ok := a.Lookup(context.Background(), "/books/IT.pdf", "")
	assert.False(t, ok)
	assert.Zero(t, s.calls)
}

func TestAdapter_MissIsMemoized(t *testing.T) {
	s := &fakeSearcher{err: openlibrary.ErrNotFound}
	cache := newMemoryCache(t, 10)
	a := New(s, cache, Options{}, logger.Discard())

	_, ok := a.Lookup(context.Background(), "Nothing Like This", "")
	assert.False(t, ok)
	_, ok = a.Lookup(context.Background(), "Nothing Like This", "")
	assert.False(t, ok)

	assert.Equal(t, 1, s.calls)
	e, found := cache.Get(CacheKey("Nothing Like This", ""))
	require.True(t, found)
	assert.False(t, e.Found)
}

func TestAdapter_ErrorsAreSwallowed(t *testing.T) {
	s := &fakeSearcher{err: errors.New("connection reset")}
	a := New(s, newMemoryCache(t, 10), Options{ErrorTTL: time.Hour}, logger.Discard())

	md, ok := a.Lookup(context.Background(), "Flaky", "")
	assert.False(t, ok)
	assert.Empty(t, md.Subjects)

	_, _ = a.Lookup(context.Background(), "Flaky", "")
	assert.Equal(t, 1, s.calls, "failures are remembered for ErrorTTL")
}

func TestAdapter_CancelledContextNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSearcher{err: context.Canceled}
	cache := newMemoryCache(t, 10)
	a := New(s, cache, Options{}, logger.Discard())

	_, ok := a.Lookup(ctx, "Dune", "")
	assert.False(t, ok)
	assert.Zero(t, cache.Len())
}

func TestAdapter_AuthorIsPartOfKey(t *testing.T) {
	s := &fakeSearcher{book: &openlibrary.Book{Title: "Dune"}}
	a := New(s, newMemoryCache(t, 10), Options{}, logger.Discard())

	a.Lookup(context.Background(), "Dune", "")
	a.Lookup(context.Background(), "Dune", "Frank Herbert")
	assert.Equal(t, 2, s.calls)
}
