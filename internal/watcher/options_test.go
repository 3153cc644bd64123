package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Skip(t *testing.T) {
	f := newFilter(Options{Ignore: []string{"*.bak"}})

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"hidden file", "/books/.Dune.epub", true},
		{"mac metadata", "/books/.DS_Store", true},
		{"browser download", "/books/Dune.epub.crdownload", true},
		{"firefox partial", "/books/Dune.epub.part", true},
		{"office lock", "/books/~$notes.docx", true},
		{"extra pattern", "/books/Dune.epub.bak", true},
		{"ebook", "/books/Dune.epub", false},
		{"library under a hidden dir", "/home/me/.local/share/books/Dune.epub", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.skip(tt.path))
		})
	}
}

func TestFilter_Wants(t *testing.T) {
	all := newFilter(Options{})
	assert.True(t, all.wants("/books/notes.txt"), "no extension filter accepts everything")

	ebooks := newFilter(Options{Extensions: []string{".epub", "PDF"}})
	assert.True(t, ebooks.wants("/books/Dune.epub"))
	assert.True(t, ebooks.wants("/books/Report.pdf"), "extensions are normalised")
	assert.True(t, ebooks.wants("/books/Emma.EPUB"))
	assert.False(t, ebooks.wants("/books/cover.jpg"))
	assert.False(t, ebooks.wants("/books/README"))
}
