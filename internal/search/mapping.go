package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// mappingVersion must change whenever fields below change; an index built
// with another version is dropped and rebuilt on open.
const mappingVersion = "2"

type fieldKind int

const (
	textField fieldKind = iota
	numericField
	boolField
)

type fieldSpec struct {
	name     string
	kind     fieldKind
	analyzer string
	store    bool
	index    bool
	vectors  bool
}

// ebookFields lists every indexed field. Text fields that users type into
// use English stemming; classification and format use keyword analysis so
// term filters and facets see whole values.
var ebookFields = []fieldSpec{
	{name: "title", analyzer: en.AnalyzerName, store: true, index: true, vectors: true},
	{name: "author", analyzer: en.AnalyzerName, store: true, index: true, vectors: true},
	{name: "description", analyzer: en.AnalyzerName, index: true},
	{name: "publisher", analyzer: simple.Name, store: true, index: true},

	{name: "category", analyzer: keyword.Name, store: true, index: true},
	{name: "sub_genre", analyzer: keyword.Name, store: true, index: true},
	{name: "format", analyzer: keyword.Name, store: true, index: true},
	{name: "language", analyzer: keyword.Name, store: true, index: true},
	{name: "genre_paths", analyzer: keyword.Name, index: true},
	{name: "path", analyzer: keyword.Name, store: true},

	{name: "classified", kind: boolField, index: true},
	{name: "created_at", kind: numericField, store: true, index: true},
}

func buildIndexMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()
	for _, f := range ebookFields {
		var fm *mapping.FieldMapping
		switch f.kind {
		case numericField:
			fm = bleve.NewNumericFieldMapping()
		case boolField:
			fm = bleve.NewBooleanFieldMapping()
		default:
			fm = bleve.NewTextFieldMapping()
			fm.Analyzer = f.analyzer
			fm.IncludeTermVectors = f.vectors
		}
		fm.Store = f.store
		fm.Index = f.index
		doc.AddFieldMappingsAt(f.name, fm)
	}

	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = en.AnalyzerName
	m.DefaultMapping = doc
	return m
}
