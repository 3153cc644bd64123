// Package service implements the organizer's use cases on top of the
// store, the classification engine and the filesystem.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/ghiridhars/ebook-organizer/internal/author"
	"github.com/ghiridhars/ebook-organizer/internal/classify"
	"github.com/ghiridhars/ebook-organizer/internal/domain"
	domainerrors "github.com/ghiridhars/ebook-organizer/internal/errors"
	"github.com/ghiridhars/ebook-organizer/internal/store"
	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
	"github.com/ghiridhars/ebook-organizer/internal/validation"
)

const (
	defaultBatchLimit = 100

	// UncategorizedPlaceholder groups preview books without a category.
	UncategorizedPlaceholder = "_Uncategorized"

	unknownAuthorDisplay = "Unknown"
)

// Classifier runs the classification chain for one file.
type Classifier interface {
	ClassifyBook(ctx context.Context, path, embeddedGenre, embeddedAuthor string) classify.Result
}

// OrganizationService classifies stored ebooks and reports coverage.
type OrganizationService struct {
	store     store.EbookStore
	engine    Classifier
	validator *validation.Validator
	indexer   store.SearchIndexer
	logger    *slog.Logger
}

// NewOrganizationService creates a new organization service.
func NewOrganizationService(s store.EbookStore, engine Classifier, v *validation.Validator, logger *slog.Logger) *OrganizationService {
	return &OrganizationService{
		store:     s,
		engine:    engine,
		validator: v,
		indexer:   store.NewNoopSearchIndexer(),
		logger:    logger,
	}
}

// SetSearchIndexer sets the index that receives classification changes.
func (s *OrganizationService) SetSearchIndexer(indexer store.SearchIndexer) {
	s.indexer = indexer
}

// OrganizationStats describes classification coverage.
type OrganizationStats struct {
	TotalBooks        int            `json:"total_books"`
	ClassifiedBooks   int            `json:"classified_books"`
	UnclassifiedBooks int            `json:"unclassified_books"`
	ByCategory        map[string]int `json:"by_category"`
	BySubGenre        map[string]int `json:"by_sub_genre"`
	CoveragePercent   float64        `json:"coverage_percent"`
}

// Stats reports coverage for records under sourcePath, or the whole library
// when it is empty.
func (s *OrganizationService) Stats(ctx context.Context, sourcePath string) (*OrganizationStats, error) {
	counts, err := s.store.CountClassifications(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	stats := &OrganizationStats{
		TotalBooks:        counts.Total,
		ClassifiedBooks:   counts.Classified,
		UnclassifiedBooks: counts.Total - counts.Classified,
		ByCategory:        counts.ByCategory,
		BySubGenre:        counts.BySubGenre,
	}
	if counts.Total > 0 {
		stats.CoveragePercent = math.Round(float64(counts.Classified)/float64(counts.Total)*1000) / 10
	}
	return stats, nil
}

// Taxonomy returns every category with its sub-genre names.
func (s *OrganizationService) Taxonomy() map[string][]string {
	return taxonomy.Tree()
}

// ClassifyEbook classifies one stored record and persists what changed.
// An already classified record is returned as is unless force is set.
// The bool reports whether the record was written.
func (s *OrganizationService) ClassifyEbook(ctx context.Context, id string, force bool) (classify.Result, bool, error) {
	e, err := s.getEbook(ctx, id)
	if err != nil {
		return classify.Result{}, false, err
	}

	res, updated, err := s.classifyRecord(ctx, e, force)
	if err != nil {
		return classify.Result{}, false, err
	}
	if updated {
		s.index(ctx, e)
	}
	return res, updated, nil
}

// engineInputs returns the path, genre hint and author the engine sees for
// e. A stored sub-genre is preferred over the genre read from the file.
func engineInputs(e *domain.Ebook) (path, hint, who string) {
	path = e.Path
	if path == "" {
		path = e.Title
	}
	hint = e.SubGenre
	if hint == "" {
		hint = e.EmbeddedGenre
	}
	return path, hint, e.Author
}

func (s *OrganizationService) classifyRecord(ctx context.Context, e *domain.Ebook, force bool) (classify.Result, bool, error) {
	if e.IsClassified() && !force {
		return classify.Result{
			Category: e.Category,
			SubGenre: e.SubGenre,
			Author:   e.Author,
			Source:   classify.SourceExisting,
		}, false, nil
	}

	path, hint, who := engineInputs(e)
	res := s.engine.ClassifyBook(ctx, path, hint, who)

	updated := false
	if res.Category != "" && res.Category != e.Category {
		e.Category = res.Category
		updated = true
	}
	if res.SubGenre != "" && res.SubGenre != e.SubGenre {
		e.SubGenre = res.SubGenre
		updated = true
	}
	if res.Author != "" && res.Author != e.Author && (e.Author == "" || !author.IsValid(e.Author)) {
		e.Author = res.Author
		updated = true
	}

	if !updated {
		return res, false, nil
	}

	e.Touch()
	if err := s.store.UpdateEbook(ctx, e); err != nil {
		return classify.Result{}, false, fmt.Errorf("save classification: %w", err)
	}
	s.logger.Debug("ebook classified",
		"ebook_id", e.ID,
		"category", e.Category,
		"sub_genre", e.SubGenre,
		"source", res.Source,
	)
	return res, true, nil
}

// BatchClassifyRequest selects the records for BatchClassify.
type BatchClassifyRequest struct {
	// IDs limits the automatic pass to these records. When empty, the
	// unclassified records under SourcePath are used, or all of them with Force.
	IDs        []string `json:"ids,omitempty" validate:"omitempty,dive,required"`
	SourcePath string   `json:"source_path,omitempty"`
	Force      bool     `json:"force"`
	Limit      int      `json:"limit" validate:"gte=0,lte=10000"`
	// Overrides are written as given and skip the automatic pass.
	Overrides map[string]taxonomy.Classification `json:"overrides,omitempty" validate:"omitempty,dive,keys,required,endkeys"`
}

// BatchResult summarises a batch. It is built once from the per-record
// outcomes and not modified afterwards.
type BatchResult struct {
	TotalProcessed    int                                `json:"total_processed"`
	NewlyClassified   int                                `json:"newly_classified"`
	AlreadyClassified int                                `json:"already_classified"`
	Failed            int                                `json:"failed"`
	Results           map[string]classify.Result         `json:"results"`
	Classifications   map[string]taxonomy.Classification `json:"classifications"`
	Errors            []string                           `json:"errors,omitempty"`
}

// batchOutcome is what happened to one record.
type batchOutcome struct {
	id      string
	path    string
	result  classify.Result
	updated bool
	err     error
	record  *domain.Ebook // set when updated
}

// summarize folds outcomes, in processing order, into a BatchResult.
func summarize(outcomes []batchOutcome) BatchResult {
	r := BatchResult{
		Results:         make(map[string]classify.Result, len(outcomes)),
		Classifications: make(map[string]taxonomy.Classification),
	}
	for _, o := range outcomes {
		if o.err != nil {
			r.Failed++
			r.Results[o.id] = classify.Result{Source: classify.ErrorSource(o.err.Error())}
			r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", o.id, o.err))
			continue
		}
		r.TotalProcessed++
		if o.updated {
			r.NewlyClassified++
		} else {
			r.AlreadyClassified++
		}
		r.Results[o.id] = o.result
		if o.path != "" {
			r.Classifications[o.path] = o.result.Classification()
		}
	}
	return r
}

// BatchClassify applies overrides, then classifies the selected records one
// by one. A failing record is counted and reported without stopping the
// batch. On cancellation the records handled so far are returned with the
// context error.
func (s *OrganizationService) BatchClassify(ctx context.Context, req BatchClassifyRequest) (BatchResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return BatchResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultBatchLimit
	}

	var (
		outcomes   []batchOutcome
		overridden []string
	)

	for _, id := range sortedKeys(req.Overrides) {
		if err := ctx.Err(); err != nil {
			return s.finishBatch(ctx, outcomes), err
		}
		outcomes = append(outcomes, s.applyOverride(ctx, id, req.Overrides[id]))
		overridden = append(overridden, id)
	}

	filter := store.EbookFilter{ExcludeIDs: overridden, Limit: limit}
	if len(req.IDs) > 0 {
		filter.IDs = req.IDs
	} else {
		filter.PathPrefix = req.SourcePath
		filter.Unclassified = !req.Force
	}

	records, err := s.store.ListEbooks(ctx, filter)
	if err != nil {
		return s.finishBatch(ctx, outcomes), fmt.Errorf("select ebooks: %w", err)
	}

	for _, e := range records {
		if err := ctx.Err(); err != nil {
			return s.finishBatch(ctx, outcomes), err
		}
		o := batchOutcome{id: e.ID, path: e.Path}
		o.result, o.updated, o.err = s.classifyRecord(ctx, e, req.Force)
		if o.err != nil {
			s.logger.Warn("classification failed", "ebook_id", e.ID, "error", o.err)
		}
		if o.updated {
			o.record = e
		}
		outcomes = append(outcomes, o)
	}

	return s.finishBatch(ctx, outcomes), nil
}

func (s *OrganizationService) finishBatch(ctx context.Context, outcomes []batchOutcome) BatchResult {
	var changed []*domain.Ebook
	for _, o := range outcomes {
		if o.record != nil {
			changed = append(changed, o.record)
		}
	}
	s.index(context.WithoutCancel(ctx), changed...)

	r := summarize(outcomes)
	s.logger.Info("batch classification finished",
		"processed", r.TotalProcessed,
		"newly_classified", r.NewlyClassified,
		"already_classified", r.AlreadyClassified,
		"failed", r.Failed,
	)
	return r
}

func (s *OrganizationService) applyOverride(ctx context.Context, id string, c taxonomy.Classification) batchOutcome {
	o := batchOutcome{id: id}

	resolved, err := resolveClassification(c.Category, c.SubGenre)
	if err != nil {
		o.err = err
		return o
	}
	e, err := s.getEbook(ctx, id)
	if err != nil {
		o.err = err
		return o
	}
	o.path = e.Path

	if e.Category != resolved.Category || e.SubGenre != resolved.SubGenre {
		e.SetClassification(resolved)
		if err := s.store.UpdateEbook(ctx, e); err != nil {
			o.err = fmt.Errorf("save override: %w", err)
			return o
		}
		o.updated = true
		o.record = e
	}

	o.result = classify.Result{
		Category: e.Category,
		SubGenre: e.SubGenre,
		Author:   e.Author,
		Source:   classify.SourceManualOverride,
	}
	return o
}

// UpdateClassificationRequest sets a record's classification by hand.
type UpdateClassificationRequest struct {
	ID       string `json:"id" validate:"required"`
	Category string `json:"category,omitempty" validate:"omitempty,category"`
	SubGenre string `json:"sub_genre,omitempty" validate:"omitempty,subgenre"`
}

// UpdateClassification stores a manual classification. A sub-genre alone
// implies its category. A category alone keeps the current sub-genre only
// if it belongs to the new category.
func (s *OrganizationService) UpdateClassification(ctx context.Context, req UpdateClassificationRequest) (*domain.Ebook, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	e, err := s.getEbook(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var next taxonomy.Classification
	if req.SubGenre == "" && req.Category != "" {
		next = taxonomy.Classification{Category: req.Category, SubGenre: e.SubGenre}
		if !taxonomy.Valid(next.Category, next.SubGenre) {
			next.SubGenre = ""
		}
	} else {
		next, err = resolveClassification(req.Category, req.SubGenre)
		if err != nil {
			return nil, err
		}
	}

	e.SetClassification(next)
	if err := s.store.UpdateEbook(ctx, e); err != nil {
		return nil, fmt.Errorf("save classification: %w", err)
	}
	s.index(ctx, e)

	s.logger.Info("classification updated",
		"ebook_id", e.ID,
		"category", e.Category,
		"sub_genre", e.SubGenre,
	)
	return e, nil
}

// resolveClassification validates a (category, sub-genre) pair, inferring
// the category when only the sub-genre is given.
func resolveClassification(category, subGenre string) (taxonomy.Classification, error) {
	switch {
	case category == "" && subGenre == "":
		return taxonomy.Classification{}, domainerrors.Validation("invalid argument: category or sub_genre is required")
	case category == "":
		cat, ok := taxonomy.CategoryOf(subGenre)
		if !ok {
			return taxonomy.Classification{}, domainerrors.Validationf("invalid argument: cannot infer a category for sub-genre %q", subGenre)
		}
		return taxonomy.Classification{Category: cat, SubGenre: subGenre}, nil
	case !taxonomy.HasCategory(category):
		return taxonomy.Classification{}, domainerrors.Validationf("invalid argument: unknown category %q", category)
	case !taxonomy.Valid(category, subGenre):
		return taxonomy.Classification{}, domainerrors.Validationf("invalid argument: %q is not a sub-genre of %q", subGenre, category)
	}
	return taxonomy.Classification{Category: category, SubGenre: subGenre}, nil
}

// PreviewRequest selects the records for Preview.
type PreviewRequest struct {
	SourcePath string `json:"source_path,omitempty"`
	Limit      int    `json:"limit" validate:"gte=0,lte=10000"`
}

// PreviewBook is one record in a preview.
type PreviewBook struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Author           string          `json:"author"`
	Source           classify.Source `json:"source"`
	CurrentCategory  string          `json:"current_category,omitempty"`
	CurrentSubGenre  string          `json:"current_sub_genre,omitempty"`
	ProposedCategory string          `json:"proposed_category"`
	ProposedSubGenre string          `json:"proposed_sub_genre"`
}

// PreviewResult is the proposed organization of unclassified records.
type PreviewResult struct {
	TotalToClassify int                                 `json:"total_to_classify"`
	Tree            map[string]map[string][]PreviewBook `json:"tree"`
	CategoryCounts  map[string]int                      `json:"category_counts"`
	Books           []PreviewBook                       `json:"books"`
}

// Preview classifies unclassified records without saving anything.
func (s *OrganizationService) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultBatchLimit
	}

	records, err := s.store.ListEbooks(ctx, store.EbookFilter{
		PathPrefix:   req.SourcePath,
		Unclassified: true,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("select ebooks: %w", err)
	}

	out := &PreviewResult{
		TotalToClassify: len(records),
		Tree:            make(map[string]map[string][]PreviewBook),
		CategoryCounts:  make(map[string]int),
		Books:           make([]PreviewBook, 0, len(records)),
	}

	for _, e := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, hint, embeddedAuthor := engineInputs(e)
		res := s.engine.ClassifyBook(ctx, path, hint, embeddedAuthor)

		category := res.Category
		if category == "" {
			category = UncategorizedPlaceholder
		}
		subGenre := res.SubGenre
		if subGenre == "" {
			subGenre = taxonomy.Other
		}
		who := res.Author
		if who == "" {
			who = e.Author
		}
		if who == "" {
			who = unknownAuthorDisplay
		}

		b := PreviewBook{
			ID:               e.ID,
			Title:            e.DisplayTitle(),
			Author:           who,
			Source:           res.Source,
			CurrentCategory:  e.Category,
			CurrentSubGenre:  e.SubGenre,
			ProposedCategory: category,
			ProposedSubGenre: subGenre,
		}

		if out.Tree[category] == nil {
			out.Tree[category] = make(map[string][]PreviewBook)
		}
		out.Tree[category][subGenre] = append(out.Tree[category][subGenre], b)
		out.CategoryCounts[category]++
		out.Books = append(out.Books, b)
	}

	return out, nil
}

// BooksByCategoryRequest filters BooksByCategory.
type BooksByCategoryRequest struct {
	Category   string `json:"category,omitempty" validate:"omitempty,category"`
	SubGenre   string `json:"sub_genre,omitempty" validate:"omitempty,subgenre"`
	SourcePath string `json:"source_path,omitempty"`
	Offset     int    `json:"offset" validate:"gte=0"`
	Limit      int    `json:"limit" validate:"gte=0,lte=1000"`
}

// BooksByCategory lists records by category and sub-genre.
func (s *OrganizationService) BooksByCategory(ctx context.Context, req BooksByCategoryRequest) ([]*domain.Ebook, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultBatchLimit
	}

	books, err := s.store.ListEbooks(ctx, store.EbookFilter{
		Category:   req.Category,
		SubGenre:   req.SubGenre,
		PathPrefix: req.SourcePath,
		Offset:     req.Offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list ebooks: %w", err)
	}
	return books, nil
}

func (s *OrganizationService) getEbook(ctx context.Context, id string) (*domain.Ebook, error) {
	e, err := s.store.GetEbook(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("ebook %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get ebook %s: %w", id, err)
	}
	return e, nil
}

func (s *OrganizationService) index(ctx context.Context, books ...*domain.Ebook) {
	if len(books) == 0 {
		return
	}
	if err := s.indexer.IndexEbooks(ctx, books...); err != nil {
		s.logger.Warn("search index update failed", "count", len(books), "error", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
