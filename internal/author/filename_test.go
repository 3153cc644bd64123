package author

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	assert.Equal(t, "Foundation", Stem("/books/sf/Foundation.epub"))
	assert.Equal(t, "Foundation", Stem(`D:\books\Foundation.epub`))
	assert.Equal(t, "Dune.Messiah", Stem("Dune.Messiah.pdf"))
	assert.Equal(t, ".hidden", Stem("/x/.hidden"))
}

func TestStripWatermarks(t *testing.T) {
	assert.Equal(t, "Dune", StripWatermarks("Dune @freebooks"))
	assert.Equal(t, "Dune", StripWatermarks("Dune ( PDFDrive )"))
	assert.Equal(t, "Dune", StripWatermarks("Dune (z-lib.org)"))
}

func TestExtractFromFilename(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"author dash title", "Isaac Asimov - Foundation.epub", "Isaac Asimov"},
		{"title parenthesised author", "Foundation (Isaac Asimov).epub", "Isaac Asimov"},
		{"title bracketed author", "/books/Dune [Frank Herbert].pdf", "Frank Herbert"},
		{"watermarked", "/books/Frank Herbert - Dune (z-lib.org).epub", "Frank Herbert"},
		{"underscores become spaces", "Frank_Herbert_-_Dune.epub", "Frank Herbert"},
		{"em dash", "Ursula Le Guin — The Dispossessed.epub", "Ursula Le Guin"},
		{"long title before author is swapped", "Brave New World Revisited - Huxley.epub", "Huxley"},
		{"title first when author side is too long", "The Very Long Name Of Someone - Asimov.epub", "Asimov"},
		{"underscore author year", "Dune_Frank_Herbert_1965.pdf", "Frank Herbert"},
		{"no separator", "Foundation.epub", ""},
		{"placeholders on both sides", "Unknown - Anonymous.epub", ""},
		{"role suffix cleaned", "The Annotated Dracula (Bram Stoker editor).epub", "Bram Stoker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromFilename(tt.path))
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/books/Dune (PDFDrive).epub", "Dune"},
		{"/books/Frank_Herbert_-_Dune_[Ace]_1965_epub.epub", "Frank Herbert Dune"},
		{"/books/The Hobbit (Illustrated) 2012.pdf", "The Hobbit"},
		{"/books/IT.pdf", ""},
		{"/books/2001.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromFilename(tt.path))
		})
	}
}
