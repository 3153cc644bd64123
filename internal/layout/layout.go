// Package layout computes where a book belongs in the organized library:
// dest/Category/SubGenre/Author/file, or dest/Unclassified/file.
package layout

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ghiridhars/ebook-organizer/internal/author"
)

const (
	// UnknownAuthor names the folder for books without a usable author.
	UnknownAuthor = "Unknown Author"
	// UnclassifiedFolder holds books that are not classified.
	UnclassifiedFolder = "Unclassified"

	unknownComponent = "Unknown"
)

// forbidden replaces characters Windows refuses in file names, so a
// library organized on Linux survives a copy to NTFS.
var forbidden = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// Sanitize makes name safe as a single path component. Whitespace runs
// collapse to one space; an empty result becomes "Unknown".
func Sanitize(name string) string {
	s := forbidden.Replace(norm.NFC.String(name))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return unknownComponent
	}
	return s
}

// AuthorFolder returns the sanitized, cleaned author or UnknownAuthor.
func AuthorFolder(name string) string {
	if name == "" {
		return UnknownAuthor
	}
	cleaned := author.CleanName(name)
	if cleaned == "" || !author.IsValid(cleaned) {
		return UnknownAuthor
	}
	return Sanitize(cleaned)
}

// Placement is what the layout needs to know about a book.
type Placement struct {
	SourcePath string
	Author     string
	Category   string
	SubGenre   string
}

// Classified reports whether both category and sub-genre are set.
func (p Placement) Classified() bool {
	return strings.TrimSpace(p.Category) != "" && strings.TrimSpace(p.SubGenre) != ""
}

// TargetPath returns the organized location of p under dest, keeping the
// source file name.
func TargetPath(dest string, p Placement) string {
	name := filepath.Base(p.SourcePath)
	if !p.Classified() {
		return filepath.Join(dest, UnclassifiedFolder, name)
	}
	return filepath.Join(dest,
		Sanitize(p.Category),
		Sanitize(p.SubGenre),
		AuthorFolder(p.Author),
		name,
	)
}
