package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders accepted in SearchParams.SortBy.
const (
	SortRelevance = "relevance"
	SortTitle     = "title"
	SortAuthor    = "author"
	SortRecent    = "recent"
)

// SearchParams selects and pages records.
type SearchParams struct {
	Query string

	// Exact filters; empty means any.
	Category     string
	SubGenre     string
	GenrePath    string // slug path prefix, e.g. "/fiction"
	Format       string
	Language     string
	Unclassified bool

	Limit  int
	Offset int

	SortBy     string
	Descending bool

	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns relevance-ordered, faceted first-page params.
func DefaultSearchParams() SearchParams {
	return SearchParams{Limit: 20, SortBy: SortRelevance, IncludeFacets: true}
}

// SearchResult is one page of hits.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// SearchHit is a single matching ebook.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Author     string            `json:"author,omitempty"`
	Category   string            `json:"category,omitempty"`
	SubGenre   string            `json:"sub_genre,omitempty"`
	Format     string            `json:"format,omitempty"`
	Path       string            `json:"path"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets holds term counts over the whole match set.
type SearchFacets struct {
	Categories []FacetCount `json:"categories,omitempty"`
	SubGenres  []FacetCount `json:"sub_genres,omitempty"`
	Formats    []FacetCount `json:"formats,omitempty"`
	Languages  []FacetCount `json:"languages,omitempty"`
}

// FacetCount is one facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

const facetSize = 25

var (
	hitFields = []string{"title", "author", "category", "sub_genre", "format", "path"}

	// sortKeys lists ascending bleve sort keys per order; descending flips
	// the first key only so ties stay stable.
	sortKeys = map[string][]string{
		SortTitle:  {"title", "_id"},
		SortAuthor: {"author", "title", "_id"},
		SortRecent: {"created_at", "_id"},
	}
)

// Search runs params against the index.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}
	if params.SortBy != "" && params.SortBy != SortRelevance {
		if _, ok := sortKeys[params.SortBy]; !ok {
			return nil, fmt.Errorf("unknown sort order %q", params.SortBy)
		}
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = hitFields
	req.SortBy(sortOrder(params))
	if params.IncludeFacets {
		req.AddFacet("category", bleve.NewFacetRequest("category", facetSize))
		req.AddFacet("sub_genre", bleve.NewFacetRequest("sub_genre", facetSize))
		req.AddFacet("format", bleve.NewFacetRequest("format", facetSize))
		req.AddFacet("language", bleve.NewFacetRequest("language", facetSize))
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("author")
	}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		field := func(name string) string {
			v, _ := h.Fields[name].(string)
			return v
		}
		hit := SearchHit{
			ID:       h.ID,
			Score:    h.Score,
			Title:    field("title"),
			Author:   field("author"),
			Category: field("category"),
			SubGenre: field("sub_genre"),
			Format:   field("format"),
			Path:     field("path"),
		}
		for name, frags := range h.Fragments {
			if len(frags) == 0 {
				continue
			}
			if hit.Highlights == nil {
				hit.Highlights = make(map[string]string)
			}
			hit.Highlights[name] = frags[0]
		}
		out.Hits = append(out.Hits, hit)
	}

	if params.IncludeFacets {
		out.Facets = SearchFacets{
			Categories: facetCounts(res, "category"),
			SubGenres:  facetCounts(res, "sub_genre"),
			Formats:    facetCounts(res, "format"),
			Languages:  facetCounts(res, "language"),
		}
	}
	return out, nil
}

func buildQuery(p SearchParams) query.Query {
	var must []query.Query
	if text := strings.TrimSpace(p.Query); text != "" {
		must = append(must, textQuery(text))
	}

	for field, value := range map[string]string{
		"category":  p.Category,
		"sub_genre": p.SubGenre,
		"format":    strings.ToLower(p.Format),
		"language":  strings.ToLower(p.Language),
	} {
		if value != "" {
			tq := bleve.NewTermQuery(value)
			tq.SetField(field)
			must = append(must, tq)
		}
	}
	if p.GenrePath != "" {
		pq := bleve.NewPrefixQuery(p.GenrePath)
		pq.SetField("genre_paths")
		must = append(must, pq)
	}
	if p.Unclassified {
		bq := bleve.NewBoolFieldQuery(false)
		bq.SetField("classified")
		must = append(must, bq)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

// textQuery matches title strongest, then author, then description, with
// typo tolerance and prefix matching on titles.
func textQuery(text string) query.Query {
	match := func(field string, boost float64) query.Query {
		q := bleve.NewMatchQuery(text)
		q.SetField(field)
		q.SetBoost(boost)
		return q
	}
	should := []query.Query{
		match("title", 3),
		match("author", 1.5),
		match("description", 0.5),
	}

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
	fuzzy.SetField("title")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)
	should = append(should, fuzzy)

	if utf8.RuneCountInString(text) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		should = append(should, prefix)
	}
	return bleve.NewDisjunctionQuery(should...)
}

func sortOrder(p SearchParams) []string {
	keys, ok := sortKeys[p.SortBy]
	if !ok {
		return []string{"-_score", "_id"}
	}
	keys = append([]string(nil), keys...)
	if p.Descending {
		keys[0] = "-" + keys[0]
	}
	return keys
}

func facetCounts(res *bleve.SearchResult, name string) []FacetCount {
	f, ok := res.Facets[name]
	if !ok || f.Terms == nil {
		return nil
	}
	var out []FacetCount
	for _, t := range f.Terms.Terms() {
		out = append(out, FacetCount{Value: t.Term, Count: t.Count})
	}
	return out
}
