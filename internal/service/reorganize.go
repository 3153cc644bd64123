package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
	domainerrors "github.com/ghiridhars/ebook-organizer/internal/errors"
	"github.com/ghiridhars/ebook-organizer/internal/fileops"
	"github.com/ghiridhars/ebook-organizer/internal/id"
	"github.com/ghiridhars/ebook-organizer/internal/layout"
	"github.com/ghiridhars/ebook-organizer/internal/store"
	"github.com/ghiridhars/ebook-organizer/internal/validation"
)

// LockFileName is created in the destination root while a run executes.
const LockFileName = ".ebook-organizer.lock"

// Operation is what Execute does with each file.
type Operation string

const (
	OperationMove Operation = "move"
	OperationCopy Operation = "copy"
)

// ReorganizeRequest selects records and the destination layout.
type ReorganizeRequest struct {
	Destination         string    `json:"destination" validate:"required"`
	SourcePath          string    `json:"source_path,omitempty"`
	IncludeUnclassified bool      `json:"include_unclassified"`
	Operation           Operation `json:"operation"`
}

// PlannedMove is one file in a plan.
type PlannedMove struct {
	EbookID    string `json:"ebook_id"`
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Category   string `json:"category"`
	SubGenre   string `json:"sub_genre"`
}

// ReorganizePlan predicts what Execute would do.
type ReorganizePlan struct {
	Destination       string        `json:"destination"`
	Operation         Operation     `json:"operation"`
	TotalFiles        int           `json:"total_files"`
	ClassifiedFiles   int           `json:"classified_files"`
	UnclassifiedFiles int           `json:"unclassified_files"`
	Collisions        int           `json:"collisions"`
	AlreadyInPlace    int           `json:"already_in_place"`
	MissingSources    []string      `json:"missing_sources,omitempty"`
	Moves             []PlannedMove `json:"moves"`
}

// ReorganizeResult reports an executed run.
type ReorganizeResult struct {
	RunID          string            `json:"run_id"`
	Operation      Operation         `json:"operation"`
	TotalProcessed int               `json:"total_processed"`
	Succeeded      int               `json:"succeeded"`
	Skipped        int               `json:"skipped"`
	AlreadyInPlace int               `json:"already_in_place"`
	Failed         int               `json:"failed"`
	Errors         []string          `json:"errors,omitempty"`
	PathMappings   map[string]string `json:"path_mappings"`
}

// ReorganizeService lays stored ebooks out as
// Category/SubGenre/Author/file under a destination folder.
type ReorganizeService struct {
	store     store.EbookStore
	validator *validation.Validator
	indexer   store.SearchIndexer
	logger    *slog.Logger
}

// NewReorganizeService creates a new reorganize service.
func NewReorganizeService(s store.EbookStore, v *validation.Validator, logger *slog.Logger) *ReorganizeService {
	return &ReorganizeService{
		store:     s,
		validator: v,
		indexer:   store.NewNoopSearchIndexer(),
		logger:    logger,
	}
}

// SetSearchIndexer sets the index that receives moved paths.
func (s *ReorganizeService) SetSearchIndexer(indexer store.SearchIndexer) {
	s.indexer = indexer
}

// prepare validates req and returns it normalised.
func (s *ReorganizeService) prepare(req ReorganizeRequest) (ReorganizeRequest, error) {
	if err := s.validator.Validate(req); err != nil {
		return req, err
	}
	if req.Operation == "" {
		req.Operation = OperationMove
	}
	if req.Operation != OperationMove && req.Operation != OperationCopy {
		return req, domainerrors.Preconditionf("invalid operation %q: must be %q or %q", req.Operation, OperationMove, OperationCopy)
	}
	dest, err := filepath.Abs(req.Destination)
	if err != nil {
		return req, domainerrors.Validationf("invalid argument: destination %q: %v", req.Destination, err)
	}
	req.Destination = dest
	return req, nil
}

func (s *ReorganizeService) selectEbooks(ctx context.Context, req ReorganizeRequest) ([]*domain.Ebook, error) {
	records, err := s.store.ListEbooks(ctx, store.EbookFilter{PathPrefix: req.SourcePath})
	if err != nil {
		return nil, fmt.Errorf("select ebooks: %w", err)
	}
	return records, nil
}

// placementKind is the outcome of placing one record.
type placementKind int

const (
	placeExcluded placementKind = iota
	placeMissing
	placeInPlace
	placeTransfer
)

type placement struct {
	kind       placementKind
	classified bool
	target     string
	collided   bool
}

// placer decides where each record of a run goes. Plan and Execute both
// walk the records in store order through a fresh placer, so a plan
// predicts the run.
type placer struct {
	req      ReorganizeRequest
	resolver *layout.Resolver
}

// newPlacer creates a placer whose resolver treats a path as taken when a
// file exists there or another record is stored at it.
func (s *ReorganizeService) newPlacer(ctx context.Context, req ReorganizeRequest) *placer {
	taken := func(path string) bool {
		if fileops.Exists(path) {
			return true
		}
		_, err := s.store.GetEbookByPath(ctx, path)
		return err == nil
	}
	return &placer{req: req, resolver: layout.NewResolver(taken)}
}

// place applies the filters, the source check, the in-place check and
// collision resolution to e, in that order. Only a transfer or an in-place
// record reserves a target.
func (p *placer) place(e *domain.Ebook) placement {
	if e.Path == "" {
		return placement{kind: placeExcluded}
	}
	pl := placement{classified: e.IsClassified()}
	if !pl.classified && !p.req.IncludeUnclassified {
		return placement{kind: placeExcluded}
	}
	if !fileops.IsFile(e.Path) {
		pl.kind = placeMissing
		return pl
	}

	target := layout.TargetPath(p.req.Destination, layout.Placement{
		SourcePath: e.Path,
		Author:     e.Author,
		Category:   e.Category,
		SubGenre:   e.SubGenre,
	})
	if target == e.Path {
		p.resolver.Reserve(target)
		pl.kind = placeInPlace
		pl.target = target
		return pl
	}

	pl.kind = placeTransfer
	pl.target, pl.collided = p.resolver.Resolve(target)
	return pl
}

// Plan computes the target of every selected record without changing the
// filesystem. Records whose file is missing are listed and reserve nothing,
// as in Execute.
func (s *ReorganizeService) Plan(ctx context.Context, req ReorganizeRequest) (*ReorganizePlan, error) {
	req, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	records, err := s.selectEbooks(ctx, req)
	if err != nil {
		return nil, err
	}

	plan := &ReorganizePlan{
		Destination: req.Destination,
		Operation:   req.Operation,
		Moves:       []PlannedMove{},
	}
	p := s.newPlacer(ctx, req)

	for _, e := range records {
		pl := p.place(e)
		switch pl.kind {
		case placeExcluded:
			continue
		case placeMissing:
			plan.MissingSources = append(plan.MissingSources, e.Path)
			continue
		case placeInPlace:
			plan.AlreadyInPlace++
			continue
		}

		if pl.collided {
			plan.Collisions++
		}
		plan.Moves = append(plan.Moves, PlannedMove{
			EbookID:    e.ID,
			SourcePath: e.Path,
			TargetPath: pl.target,
			Title:      e.DisplayTitle(),
			Author:     layout.AuthorFolder(e.Author),
			Category:   e.Category,
			SubGenre:   e.SubGenre,
		})
		if pl.classified {
			plan.ClassifiedFiles++
		} else {
			plan.UnclassifiedFiles++
		}
	}

	plan.TotalFiles = len(plan.Moves)
	return plan, nil
}

// Execute moves or copies the selected files into the destination layout.
// Only moves change stored paths, and those are committed together once
// every file has been handled. Per-file problems are counted and the run
// continues. Concurrent runs on one destination are refused.
func (s *ReorganizeService) Execute(ctx context.Context, req ReorganizeRequest) (*ReorganizeResult, error) {
	req, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(req.Destination, 0o755); err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeUnavailable, "create destination %s", req.Destination)
	}
	lock := flock.New(filepath.Join(req.Destination, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeUnavailable, "lock destination %s", req.Destination)
	}
	if !locked {
		return nil, domainerrors.Conflictf("destination %s is locked by another run", req.Destination)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release destination lock", "path", lock.Path(), "error", err)
		}
	}()

	records, err := s.selectEbooks(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &ReorganizeResult{
		RunID:        id.NewRunID(),
		Operation:    req.Operation,
		PathMappings: make(map[string]string),
	}
	log := s.logger.With("run_id", result.RunID, "operation", req.Operation)
	log.Info("reorganization started", "destination", req.Destination, "candidates", len(records))

	var (
		updates []store.PathUpdate
		moved   []*domain.Ebook
	)
	p := s.newPlacer(ctx, req)

	var runErr error
	for _, e := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		pl := p.place(e)
		switch pl.kind {
		case placeExcluded:
			result.Skipped++
			continue
		case placeMissing:
			result.Skipped++
			result.Errors = append(result.Errors, "Source not found: "+e.Path)
			continue
		case placeInPlace:
			result.Skipped++
			result.AlreadyInPlace++
			continue
		}

		target := pl.target
		result.TotalProcessed++
		if err := transfer(req.Operation, e.Path, target); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", e.DisplayTitle(), err))
			log.Warn("reorganize failed", "ebook_id", e.ID, "path", e.Path, "error", err)
			continue
		}

		result.Succeeded++
		result.PathMappings[e.Path] = target
		if req.Operation == OperationMove {
			updates = append(updates, store.PathUpdate{ID: e.ID, Path: target})
			e.Path = target
			moved = append(moved, e)
		}
	}

	// Files are already in place; the commit must not be abandoned on
	// cancellation.
	commitCtx := context.WithoutCancel(ctx)
	if len(updates) > 0 {
		if err := s.store.UpdatePaths(commitCtx, updates); err != nil {
			log.Error("path commit failed, stored paths are stale", "count", len(updates), "error", err)
			return result, fmt.Errorf("commit path updates: %w", err)
		}
		if err := s.indexer.IndexEbooks(commitCtx, moved...); err != nil {
			log.Warn("search index update failed", "count", len(moved), "error", err)
		}
	}

	log.Info("reorganization finished",
		"processed", result.TotalProcessed,
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, runErr
}

func transfer(op Operation, src, dst string) error {
	if err := fileops.EnsureParent(dst); err != nil {
		return err
	}
	if op == OperationCopy {
		return fileops.Copy(src, dst)
	}
	return fileops.Move(src, dst)
}
