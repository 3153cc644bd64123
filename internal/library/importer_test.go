package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
	"github.com/ghiridhars/ebook-organizer/internal/ebookmeta"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/store"
	"github.com/ghiridhars/ebook-organizer/internal/store/sqlite"
	"github.com/ghiridhars/ebook-organizer/internal/watcher"
)

type recordingIndexer struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingIndexer) IndexEbooks(_ context.Context, books ...*domain.Ebook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range books {
		r.ids = append(r.ids, b.ID)
	}
	return nil
}

func (r *recordingIndexer) DeleteEbooks(context.Context, ...string) error { return nil }

func (r *recordingIndexer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// metaByName serves canned metadata keyed by file name.
func metaByName(m map[string]*ebookmeta.Metadata) ebookmeta.ReaderFunc {
	return func(_ context.Context, path string) (*ebookmeta.Metadata, error) {
		md, ok := m[filepath.Base(path)]
		if !ok {
			return nil, ebookmeta.ErrUnsupported
		}
		if md == nil {
			return nil, errors.New("corrupt archive")
		}
		return md, nil
	}
}

func newTestImporter(t *testing.T, meta MetadataReader) (*Importer, *sqlite.Store, *recordingIndexer) {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	idx := &recordingIndexer{}
	imp := NewImporter(s, meta, logger.Discard())
	imp.SetSearchIndexer(idx)
	return imp, s, idx
}

func touch(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestWalker_Walk(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Dune.epub"), "x")
	touch(t, filepath.Join(root, "nested", "Emma.PDF"), "x")
	touch(t, filepath.Join(root, "nested", "cover.jpg"), "x")
	touch(t, filepath.Join(root, ".trash", "Old.epub"), "x")
	touch(t, filepath.Join(root, ".hidden.mobi"), "x")

	var rel []string
	formats := map[string]string{}
	for f := range NewWalker(logger.Discard()).Walk(context.Background(), root) {
		rel = append(rel, f.RelPath)
		formats[f.RelPath] = f.Format
		assert.Equal(t, int64(1), f.Size)
	}
	sort.Strings(rel)

	assert.Equal(t, []string{"Dune.epub", filepath.Join("nested", "Emma.PDF")}, rel)
	assert.Equal(t, "pdf", formats[filepath.Join("nested", "Emma.PDF")])
}

func TestWalker_Cancelled(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"a.epub", "b.epub", "c.epub"} {
		touch(t, filepath.Join(root, n), "x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	for range NewWalker(logger.Discard()).Walk(ctx, root) {
		count++
	}
	assert.Zero(t, count)
}

func TestImporter_Import(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "dune.epub"), "epub bytes")
	touch(t, filepath.Join(root, "Frank Herbert - Children of Dune.pdf"), "pdf")
	touch(t, filepath.Join(root, "broken.epub"), "junk")
	touch(t, filepath.Join(root, "notes.txt"), "skip")

	imp, s, idx := newTestImporter(t, metaByName(map[string]*ebookmeta.Metadata{
		"dune.epub": {
			Title:     "Dune",
			Author:    "Frank Herbert, 1920-1986",
			Subjects:  []string{"Science Fiction"},
			Publisher: "Chilton\x00",
			Language:  "English",
		},
		"broken.epub": nil,
	}))
	ctx := context.Background()

	result, err := imp.Import(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 3, result.Imported)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 3, idx.count())

	dune, err := s.GetEbookByPath(ctx, filepath.Join(root, "dune.epub"))
	require.NoError(t, err)
	assert.NotEmpty(t, dune.ID)
	assert.Equal(t, "Dune", dune.Title)
	assert.Equal(t, "Frank Herbert", dune.Author)
	assert.Equal(t, "Science Fiction", dune.EmbeddedGenre)
	assert.Equal(t, "Chilton", dune.Publisher)
	assert.Equal(t, "en", dune.Language)
	assert.Equal(t, "epub", dune.Format)
	assert.Equal(t, int64(len("epub bytes")), dune.Size)
	assert.False(t, dune.IsClassified())

	children, err := s.GetEbookByPath(ctx, filepath.Join(root, "Frank Herbert - Children of Dune.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert Children of Dune", children.Title)
	assert.Equal(t, "Frank Herbert", children.Author)
	assert.Empty(t, children.EmbeddedGenre)

	broken, err := s.GetEbookByPath(ctx, filepath.Join(root, "broken.epub"))
	require.NoError(t, err, "unreadable metadata falls back to the file name")
	assert.Equal(t, "broken", broken.Title)
	assert.Empty(t, broken.Author)

	again, err := imp.Import(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Existing)
	assert.Zero(t, again.Imported)
	assert.Equal(t, 3, idx.count(), "existing records are not reindexed")
}

func TestImporter_ImportRejectsFile(t *testing.T) {
	imp, _, _ := newTestImporter(t, metaByName(nil))
	file := touch(t, filepath.Join(t.TempDir(), "a.epub"), "x")

	_, err := imp.Import(context.Background(), file)
	assert.Error(t, err)

	_, err = imp.Import(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestImporter_ImportFile(t *testing.T) {
	imp, s, idx := newTestImporter(t, metaByName(nil))
	ctx := context.Background()
	dir := t.TempDir()

	_, _, err := imp.ImportFile(ctx, touch(t, filepath.Join(dir, "cover.jpg"), "x"))
	assert.Error(t, err)

	_, _, err = imp.ImportFile(ctx, filepath.Join(dir, "gone.epub"))
	assert.Error(t, err)

	path := touch(t, filepath.Join(dir, "Dune_Frank_Herbert_1965.epub"), "x")
	e, created, err := imp.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Frank Herbert", e.Author)
	assert.Equal(t, []string{e.ID}, idx.ids)

	again, created, err := imp.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, e.ID, again.ID)

	stored, err := s.ListEbooks(ctx, store.EbookFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestImporter_Follow(t *testing.T) {
	imp, s, _ := newTestImporter(t, metaByName(nil))
	dir := t.TempDir()
	path := touch(t, filepath.Join(dir, "Emma.epub"), "x")

	events := make(chan watcher.Event, 3)
	events <- watcher.Event{Type: watcher.EventAdded, Path: path}
	events <- watcher.Event{Type: watcher.EventModified, Path: path}
	events <- watcher.Event{Type: watcher.EventRemoved, Path: filepath.Join(dir, "Old.epub")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		imp.Follow(ctx, events)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := s.GetEbookByPath(context.Background(), path)
		return err == nil && len(events) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	all, err := s.ListEbooks(context.Background(), store.EbookFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
