package classify

import (
	"context"
	"testing"

	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/lookup"
	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
	"github.com/stretchr/testify/assert"
)

type fakeLookuper struct {
	md      lookup.Metadata
	ok      bool
	calls   int
	authors []string
}

func (f *fakeLookuper) Lookup(_ context.Context, _, knownAuthor string) (lookup.Metadata, bool) {
	f.calls++
	f.authors = append(f.authors, knownAuthor)
	return f.md, f.ok
}

func newTestEngine(l Lookuper) *Engine {
	return NewEngine(l, logger.Discard())
}

func TestClassifyBook_EmbeddedGenre(t *testing.T) {
	l := &fakeLookuper{}
	e := newTestEngine(l)

	got := e.ClassifyBook(context.Background(), "/data/horror/Haunted House Dune.epub", "Science Fiction", "Herbert, Frank, 1920-1986")

	assert.Equal(t, Result{
		Category: taxonomy.Fiction,
		SubGenre: "Science Fiction",
		Author:   "Herbert, Frank",
		Source:   SourceEmbedded,
	}, got)
	assert.Zero(t, l.calls)
}

func TestClassifyBook_EmbeddedGenreWithoutAuthor(t *testing.T) {
	got := newTestEngine(nil).ClassifyBook(context.Background(), "/data/inbox/x.epub", "horror", "")
	assert.Equal(t, taxonomy.Fiction, got.Category)
	assert.Equal(t, "Horror", got.SubGenre)
	assert.Empty(t, got.Author)
	assert.Equal(t, SourceEmbedded, got.Source)
}

func TestClassifyBook_JunkGenreFallsToFolder(t *testing.T) {
	got := newTestEngine(nil).ClassifyBook(context.Background(), "/data/Manga/Akira Vol 1.cbz", "http://archive.org/details/x", "")
	assert.Equal(t, Result{Category: taxonomy.Comics, SubGenre: "Manga", Source: SourceFolder}, got)
}

func TestClassifyBook_FolderKeepsEmbeddedSource(t *testing.T) {
	got := newTestEngine(nil).ClassifyBook(context.Background(), "/data/philosophy/Meditations.epub", "", "Marcus Aurelius")
	assert.Equal(t, taxonomy.NonFiction, got.Category)
	assert.Equal(t, "Philosophy & Religion", got.SubGenre)
	assert.Equal(t, "Marcus Aurelius", got.Author)
	assert.Equal(t, SourceEmbedded, got.Source)
}

func TestClassifyBook_Lookup(t *testing.T) {
	l := &fakeLookuper{ok: true, md: lookup.Metadata{Author: "Frank Herbert", Subjects: []string{"Science fiction"}}}
	got := newTestEngine(l).ClassifyBook(context.Background(), "/data/inbox/Dune.epub", "", "")

	assert.Equal(t, Result{
		Category: taxonomy.Fiction,
		SubGenre: "Science Fiction",
		Author:   "Frank Herbert",
		Source:   SourceAPI,
	}, got)
	assert.Equal(t, []string{""}, l.authors)
}

func TestClassifyBook_LookupKeepsKnownAuthor(t *testing.T) {
	l := &fakeLookuper{ok: true, md: lookup.Metadata{Author: "F. Herbert", Subjects: []string{"Science fiction"}}}
	got := newTestEngine(l).ClassifyBook(context.Background(), "/data/inbox/Dune.epub", "", "Frank Herbert")

	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Equal(t, SourceAPI, got.Source)
	assert.Equal(t, []string{"Frank Herbert"}, l.authors)
}

func TestClassifyBook_LookupRejectsJunkAuthor(t *testing.T) {
	l := &fakeLookuper{ok: true, md: lookup.Metadata{Author: "calibre", Subjects: []string{"Science fiction"}}}
	got := newTestEngine(l).ClassifyBook(context.Background(), "/data/inbox/Dune.epub", "", "")

	assert.Empty(t, got.Author)
	assert.Equal(t, SourceAPI, got.Source)
}

func TestClassifyBook_UnclassifiableSubjectsFallThrough(t *testing.T) {
	l := &fakeLookuper{ok: true, md: lookup.Metadata{Author: "Someone", Subjects: []string{"sf"}}}
	got := newTestEngine(l).ClassifyBook(context.Background(), "/data/inbox/The Life of Gandhi.epub", "", "")

	assert.Equal(t, Result{Category: taxonomy.NonFiction, SubGenre: "Biography & Memoir", Source: SourceTitle}, got)
}

func TestClassifyBook_FilenameAuthor(t *testing.T) {
	l := &fakeLookuper{}
	got := newTestEngine(l).ClassifyBook(context.Background(), "/data/inbox/Isaac Asimov - Foundation.epub", "", "")

	assert.Equal(t, Result{Author: "Isaac Asimov", Source: SourceFilename}, got)
	assert.False(t, got.Complete())
	assert.Equal(t, 1, l.calls)
}

func TestClassifyBook_NothingFound(t *testing.T) {
	got := newTestEngine(nil).ClassifyBook(context.Background(), "/data/inbox/scan0001.pdf", "", "Unknown")
	assert.Equal(t, Result{Source: SourceUnknown}, got)
}

func TestSource(t *testing.T) {
	s := ErrorSource("record vanished")
	assert.Equal(t, Source("error: record vanished"), s)
	assert.True(t, s.IsError())
	assert.False(t, SourceAPI.IsError())
}
