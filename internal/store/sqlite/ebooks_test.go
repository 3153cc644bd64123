package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
	"github.com/ghiridhars/ebook-organizer/internal/store"
)

// makeTestEbook creates a domain.Ebook with sensible defaults for testing.
func makeTestEbook(id, title, path string) *domain.Ebook {
	now := time.Now()
	return &domain.Ebook{
		Entity: domain.Entity{ID: id, CreatedAt: now, UpdatedAt: now},
		Title:  title,
		Path:   path,
		Format: "epub",
		Size:   1024,
	}
}

func classified(e *domain.Ebook, category, subGenre string) *domain.Ebook {
	e.Category = category
	e.SubGenre = subGenre
	return e
}

func seed(t *testing.T, s *Store, books ...*domain.Ebook) {
	t.Helper()
	for _, b := range books {
		if err := s.CreateEbook(context.Background(), b); err != nil {
			t.Fatalf("create %s: %v", b.ID, err)
		}
	}
}

func TestCreateAndGetEbook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := makeTestEbook("book-1", "Dune", "/library/sf/Dune.epub")
	e.Author = "Frank Herbert"
	e.EmbeddedGenre = "Science Fiction"
	e.Publisher = "Chilton"
	e.Language = "en"
	e.Description = "Spice."
	e.PublishedDate = "1965"
	seed(t, s, e)

	got, err := s.GetEbook(ctx, "book-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Dune" || got.Author != "Frank Herbert" || got.Path != e.Path {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.EmbeddedGenre != "Science Fiction" || got.PublishedDate != "1965" || got.Size != 1024 {
		t.Errorf("optional fields not round-tripped: %+v", got)
	}
	if got.Category != "" || got.SubGenre != "" {
		t.Errorf("expected unclassified, got %q/%q", got.Category, got.SubGenre)
	}
	if !got.CreatedAt.Equal(e.CreatedAt.UTC()) {
		t.Errorf("created_at: got %v want %v", got.CreatedAt, e.CreatedAt)
	}

	byPath, err := s.GetEbookByPath(ctx, "/library/sf/Dune.epub")
	if err != nil {
		t.Fatalf("get by path: %v", err)
	}
	if byPath.ID != "book-1" {
		t.Errorf("get by path returned %s", byPath.ID)
	}
}

func TestGetEbook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetEbook(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = s.GetEbookByPath(context.Background(), "/nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateEbook_DuplicatePath(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, makeTestEbook("book-1", "A", "/library/a.epub"))

	err := s.CreateEbook(context.Background(), makeTestEbook("book-2", "A again", "/library/a.epub"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListEbooks_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s,
		classified(makeTestEbook("b1", "Dune", "/library/sf/Dune.epub"), "Fiction", "Science Fiction"),
		makeTestEbook("b2", "Foundation", "/library/sf/Foundation.epub"),
		classified(makeTestEbook("b3", "Sapiens", "/library/history/Sapiens.epub"), "Non-Fiction", "History"),
		classified(makeTestEbook("b4", "Half", "/library/misc/Half.epub"), "Fiction", ""),
		makeTestEbook("b5", "Percent", "/library/100%_off/x.epub"),
	)

	tests := []struct {
		name   string
		filter store.EbookFilter
		want   []string
	}{
		{"all ordered by path", store.EbookFilter{}, []string{"b5", "b3", "b4", "b1", "b2"}},
		{"prefix", store.EbookFilter{PathPrefix: "/library/sf/"}, []string{"b1", "b2"}},
		{"prefix wildcards are literal", store.EbookFilter{PathPrefix: "/library/100%"}, []string{"b5"}},
		{"underscore is literal", store.EbookFilter{PathPrefix: "/library/s_/"}, nil},
		{"unclassified", store.EbookFilter{Unclassified: true}, []string{"b5", "b4", "b2"}},
		{"category", store.EbookFilter{Category: "Fiction"}, []string{"b4", "b1"}},
		{"category and sub-genre", store.EbookFilter{Category: "Fiction", SubGenre: "Science Fiction"}, []string{"b1"}},
		{"ids", store.EbookFilter{IDs: []string{"b2", "b3", "missing"}}, []string{"b3", "b2"}},
		{"exclude", store.EbookFilter{Unclassified: true, ExcludeIDs: []string{"b4"}}, []string{"b5", "b2"}},
		{"limit", store.EbookFilter{Limit: 2}, []string{"b5", "b3"}},
		{"offset and limit", store.EbookFilter{Offset: 1, Limit: 2}, []string{"b3", "b4"}},
		{"offset only", store.EbookFilter{Offset: 3}, []string{"b1", "b2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListEbooks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var ids []string
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestUpdateEbook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, makeTestEbook("b1", "Dune", "/library/Dune.epub"))

	e, err := s.GetEbook(ctx, "b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	e.Category = "Fiction"
	e.SubGenre = "Science Fiction"
	e.Author = "Frank Herbert"
	e.Touch()
	if err := s.UpdateEbook(ctx, e); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := s.GetEbook(ctx, "b1")
	if got.Category != "Fiction" || got.SubGenre != "Science Fiction" || got.Author != "Frank Herbert" {
		t.Errorf("update not persisted: %+v", got)
	}

	missing := makeTestEbook("nope", "x", "/x.epub")
	if err := s.UpdateEbook(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteEbook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, makeTestEbook("b1", "Dune", "/library/Dune.epub"))

	if err := s.DeleteEbook(ctx, "b1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteEbook(ctx, "b1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCountClassifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s,
		classified(makeTestEbook("b1", "Dune", "/library/sf/Dune.epub"), "Fiction", "Science Fiction"),
		classified(makeTestEbook("b2", "Hyperion", "/library/sf/Hyperion.epub"), "Fiction", "Science Fiction"),
		makeTestEbook("b3", "Foundation", "/library/sf/Foundation.epub"),
		classified(makeTestEbook("b4", "Sapiens", "/library/history/Sapiens.epub"), "Non-Fiction", "History"),
		classified(makeTestEbook("b5", "Half", "/library/misc/Half.epub"), "Fiction", ""),
	)

	all, err := s.CountClassifications(ctx, "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if all.Total != 5 || all.Classified != 3 {
		t.Errorf("total/classified: got %d/%d", all.Total, all.Classified)
	}
	if all.ByCategory["Fiction"] != 3 || all.ByCategory["Non-Fiction"] != 1 {
		t.Errorf("by category: %v", all.ByCategory)
	}
	if all.BySubGenre["Science Fiction"] != 2 || all.BySubGenre["History"] != 1 || len(all.BySubGenre) != 2 {
		t.Errorf("by sub-genre: %v", all.BySubGenre)
	}

	sf, err := s.CountClassifications(ctx, "/library/sf/")
	if err != nil {
		t.Fatalf("count prefix: %v", err)
	}
	if sf.Total != 3 || sf.Classified != 2 || len(sf.ByCategory) != 1 {
		t.Errorf("prefixed counts: %+v", sf)
	}

	empty, err := s.CountClassifications(ctx, "/elsewhere/")
	if err != nil {
		t.Fatalf("count empty: %v", err)
	}
	if empty.Total != 0 || empty.Classified != 0 {
		t.Errorf("expected zero counts, got %+v", empty)
	}
}

func TestUpdatePaths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s,
		makeTestEbook("b1", "Dune", "/in/Dune.epub"),
		makeTestEbook("b2", "Emma", "/in/Emma.epub"),
	)

	err := s.UpdatePaths(ctx, []store.PathUpdate{
		{ID: "b1", Path: "/out/Fiction/Dune.epub"},
		{ID: "b2", Path: "/out/Fiction/Emma.epub"},
	})
	if err != nil {
		t.Fatalf("update paths: %v", err)
	}

	got, _ := s.GetEbook(ctx, "b1")
	if got.Path != "/out/Fiction/Dune.epub" {
		t.Errorf("b1 path: %s", got.Path)
	}
}

func TestUpdatePaths_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, makeTestEbook("b1", "Dune", "/in/Dune.epub"))

	err := s.UpdatePaths(ctx, []store.PathUpdate{
		{ID: "b1", Path: "/out/Dune.epub"},
		{ID: "missing", Path: "/out/x.epub"},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, _ := s.GetEbook(ctx, "b1")
	if got.Path != "/in/Dune.epub" {
		t.Errorf("partial update leaked: %s", got.Path)
	}
}
