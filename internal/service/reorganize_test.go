package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
	domainerrors "github.com/ghiridhars/ebook-organizer/internal/errors"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/store/sqlite"
	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
	"github.com/ghiridhars/ebook-organizer/internal/validation"
)

type reorgFixture struct {
	svc   *ReorganizeService
	store *sqlite.Store
	idx   *fakeIndexer
	src   string
	dest  string
}

func newReorgFixture(t *testing.T) *reorgFixture {
	t.Helper()
	s := newTestStore(t)
	idx := &fakeIndexer{}
	svc := NewReorganizeService(s, validation.New(), logger.Discard())
	svc.SetSearchIndexer(idx)
	root := t.TempDir()
	return &reorgFixture{
		svc:   svc,
		store: s,
		idx:   idx,
		src:   filepath.Join(root, "inbox"),
		dest:  filepath.Join(root, "library"),
	}
}

// addFile writes a file under the source folder and stores a record for it.
func (f *reorgFixture) addFile(t *testing.T, id, name, author, category, subGenre string) *domain.Ebook {
	t.Helper()
	path := filepath.Join(f.src, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content of "+name), 0o644))

	e := withClass(book(id, "", path), category, subGenre)
	e.Author = author
	seedBooks(t, f.store, e)
	return e
}

func TestPlan(t *testing.T) {
	f := newReorgFixture(t)
	f.addFile(t, "b1", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")
	f.addFile(t, "b2", "Notes.pdf", "", "", "")
	f.addFile(t, "b3", "sub/Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")
	f.addFile(t, "b4", "Sapiens.epub", "anonymous", taxonomy.NonFiction, "History")

	req := ReorganizeRequest{Destination: f.dest, SourcePath: f.src}
	plan, err := f.svc.Plan(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, OperationMove, plan.Operation)
	assert.Equal(t, 3, plan.TotalFiles)
	assert.Equal(t, 3, plan.ClassifiedFiles)
	assert.Zero(t, plan.UnclassifiedFiles)
	assert.Equal(t, 1, plan.Collisions)

	sf := filepath.Join(f.dest, taxonomy.Fiction, "Science Fiction", "Frank Herbert")
	targets := map[string]string{}
	for _, m := range plan.Moves {
		targets[m.EbookID] = m.TargetPath
	}
	assert.Equal(t, filepath.Join(sf, "Dune.epub"), targets["b1"])
	assert.Equal(t, filepath.Join(sf, "Dune (1).epub"), targets["b3"])
	assert.Equal(t, filepath.Join(f.dest, taxonomy.NonFiction, "History", "Unknown Author", "Sapiens.epub"), targets["b4"])

	again, err := f.svc.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, plan, again)

	_, err = os.Stat(f.dest)
	assert.True(t, os.IsNotExist(err), "plan must not create the destination")
}

func TestPlan_IncludeUnclassified(t *testing.T) {
	f := newReorgFixture(t)
	f.addFile(t, "b1", "Notes.pdf", "", "", "")
	f.addFile(t, "b2", "Half.pdf", "", taxonomy.Fiction, "")

	plan, err := f.svc.Plan(context.Background(), ReorganizeRequest{Destination: f.dest, IncludeUnclassified: true})
	require.NoError(t, err)

	assert.Equal(t, 2, plan.UnclassifiedFiles)
	require.Len(t, plan.Moves, 2)
	assert.Equal(t, filepath.Join(f.dest, "Unclassified", "Half.pdf"), plan.Moves[0].TargetPath)
	assert.Equal(t, "Unknown Author", plan.Moves[0].Author)
}

func TestPlan_ExistingTargetCollides(t *testing.T) {
	f := newReorgFixture(t)
	f.addFile(t, "b1", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")

	existing := filepath.Join(f.dest, taxonomy.Fiction, "Science Fiction", "Frank Herbert", "Dune.epub")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("other"), 0o644))

	plan, err := f.svc.Plan(context.Background(), ReorganizeRequest{Destination: f.dest})
	require.NoError(t, err)
	require.Len(t, plan.Moves, 1)
	assert.Equal(t, filepath.Join(filepath.Dir(existing), "Dune (1).epub"), plan.Moves[0].TargetPath)
	assert.Equal(t, 1, plan.Collisions)
}

func TestPlan_InvalidOperation(t *testing.T) {
	f := newReorgFixture(t)

	_, err := f.svc.Plan(context.Background(), ReorganizeRequest{Destination: f.dest, Operation: "link"})
	assert.ErrorIs(t, err, domainerrors.ErrPrecondition)

	_, err = f.svc.Plan(context.Background(), ReorganizeRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestExecute_Move(t *testing.T) {
	f := newReorgFixture(t)
	e := f.addFile(t, "b1", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")
	f.addFile(t, "b2", "Notes.pdf", "", "", "")

	plan, err := f.svc.Plan(context.Background(), ReorganizeRequest{Destination: f.dest})
	require.NoError(t, err)
	require.Len(t, plan.Moves, 1)

	res, err := f.svc.Execute(context.Background(), ReorganizeRequest{Destination: f.dest})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, res.TotalProcessed)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Skipped, "unclassified record is excluded")
	assert.Zero(t, res.Failed)

	target := plan.Moves[0].TargetPath
	assert.Equal(t, map[string]string{e.Path: target}, res.PathMappings)
	assert.FileExists(t, target)
	assert.NoFileExists(t, e.Path)

	stored, err := f.store.GetEbook(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, target, stored.Path)
	assert.Equal(t, []string{"b1"}, f.idx.indexed)

	again, err := f.svc.Execute(context.Background(), ReorganizeRequest{Destination: f.dest})
	require.NoError(t, err)
	assert.Equal(t, 1, again.AlreadyInPlace)
	assert.Zero(t, again.Succeeded)
	assert.FileExists(t, target)
}

func TestExecute_Copy(t *testing.T) {
	f := newReorgFixture(t)
	e := f.addFile(t, "b1", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")

	res, err := f.svc.Execute(context.Background(), ReorganizeRequest{Destination: f.dest, Operation: OperationCopy})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)

	target := res.PathMappings[e.Path]
	require.NotEmpty(t, target)
	assert.FileExists(t, target)
	assert.FileExists(t, e.Path)

	stored, err := f.store.GetEbook(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, e.Path, stored.Path)
	assert.Empty(t, f.idx.indexed)
}

func TestExecute_InvalidOperationTouchesNothing(t *testing.T) {
	f := newReorgFixture(t)
	e := f.addFile(t, "b1", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")

	_, err := f.svc.Execute(context.Background(), ReorganizeRequest{Destination: f.dest, Operation: "delete"})
	assert.ErrorIs(t, err, domainerrors.ErrPrecondition)
	assert.FileExists(t, e.Path)
	assert.NoDirExists(t, f.dest)
}

func TestExecute_MissingSourceIsSkipped(t *testing.T) {
	f := newReorgFixture(t)
	e := f.addFile(t, "b1", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")
	require.NoError(t, os.Remove(e.Path))

	res, err := f.svc.Execute(context.Background(), ReorganizeRequest{Destination: f.dest})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Failed)
	assert.Equal(t, []string{"Source not found: " + e.Path}, res.Errors)
}

func TestPlan_MatchesExecuteWhenSourceMissing(t *testing.T) {
	f := newReorgFixture(t)
	gone := f.addFile(t, "b1", "a/Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")
	kept := f.addFile(t, "b2", "b/Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")
	require.NoError(t, os.Remove(gone.Path))
	req := ReorganizeRequest{Destination: f.dest}

	plan, err := f.svc.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{gone.Path}, plan.MissingSources)
	require.Len(t, plan.Moves, 1)
	assert.Zero(t, plan.Collisions, "a missing source reserves no target")

	want := filepath.Join(f.dest, taxonomy.Fiction, "Science Fiction", "Frank Herbert", "Dune.epub")
	assert.Equal(t, want, plan.Moves[0].TargetPath)

	res, err := f.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{kept.Path: plan.Moves[0].TargetPath}, res.PathMappings)
	assert.FileExists(t, want)
}

func TestExecute_StoredPathIsTaken(t *testing.T) {
	f := newReorgFixture(t)
	alpha := f.addFile(t, "b0", "Alpha.epub", "Ann Author", taxonomy.Fiction, "Fantasy")
	dune := f.addFile(t, "b2", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")

	sf := filepath.Join(f.dest, taxonomy.Fiction, "Science Fiction", "Frank Herbert")
	stale := withClass(book("b1", "Dune", filepath.Join(sf, "Dune.epub")), taxonomy.Fiction, "Science Fiction")
	stale.Author = "Frank Herbert"
	seedBooks(t, f.store, stale)

	req := ReorganizeRequest{Destination: f.dest}
	plan, err := f.svc.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{stale.Path}, plan.MissingSources)
	assert.Equal(t, 1, plan.Collisions)

	planned := map[string]string{}
	for _, m := range plan.Moves {
		planned[m.SourcePath] = m.TargetPath
	}
	assert.Equal(t, filepath.Join(sf, "Dune (1).epub"), planned[dune.Path])

	res, err := f.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, planned, res.PathMappings)

	ctx := context.Background()
	for _, e := range []*domain.Ebook{alpha, dune} {
		got, err := f.store.GetEbook(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, planned[e.Path], got.Path, "stored path follows the moved file")
		assert.FileExists(t, got.Path)
	}

	untouched, err := f.store.GetEbook(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, stale.Path, untouched.Path)
}

func TestExecute_FailureContinues(t *testing.T) {
	f := newReorgFixture(t)
	blocked := f.addFile(t, "b1", "Carrie.epub", "Stephen King", taxonomy.Fiction, "Horror")
	blocked.Title = "Carrie"
	require.NoError(t, f.store.UpdateEbook(context.Background(), blocked))
	ok := f.addFile(t, "b2", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")

	// A file where the Horror folder should be makes the first move fail.
	require.NoError(t, os.MkdirAll(filepath.Join(f.dest, taxonomy.Fiction), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dest, taxonomy.Fiction, "Horror"), nil, 0o644))

	res, err := f.svc.Execute(context.Background(), ReorganizeRequest{Destination: f.dest})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalProcessed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Succeeded)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Carrie: ")

	stored, err := f.store.GetEbook(context.Background(), "b2")
	require.NoError(t, err)
	assert.NotEqual(t, ok.Path, stored.Path)
	assert.FileExists(t, blocked.Path)
}

func TestExecute_LockedDestination(t *testing.T) {
	f := newReorgFixture(t)
	f.addFile(t, "b1", "Dune.epub", "Frank Herbert", taxonomy.Fiction, "Science Fiction")

	require.NoError(t, os.MkdirAll(f.dest, 0o755))
	held := flock.New(filepath.Join(f.dest, LockFileName))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	_, err = f.svc.Execute(context.Background(), ReorganizeRequest{Destination: f.dest})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}
