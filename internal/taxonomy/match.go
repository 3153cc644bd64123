package taxonomy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxGenreLength separates genre tags from descriptions stuffed into the
// subject field.
const maxGenreLength = 50

// minSubstringAlias is the shortest alias allowed to match inside a longer
// genre string. Shorter aliases ("sf", "ya", "art") would match everywhere.
const minSubstringAlias = 5

// genreBlacklist rejects values that are metadata junk rather than genres.
var genreBlacklist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^https?`),
	regexp.MustCompile(`(?i)^www\.`),
	regexp.MustCompile(`(?i)archive\.org`),
	regexp.MustCompile(`(?i)^IndirectObject`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^.{1,2}$`),
	regexp.MustCompile(` -- `), // Library of Congress heading separator
}

type folderRule struct {
	key string
	Classification
}

// folderRules maps library folder names onto the taxonomy. Order matters for
// the substring pass: full names come before their fragments.
var folderRules = []folderRule{
	{"amar chitra katha", Classification{Comics, "Indian Comics"}},
	{"indian comics", Classification{Comics, "Indian Comics"}},
	{"panchatantra", Classification{Comics, "Indian Comics"}},
	{"comics", Classification{Comics, "Graphic Novels"}},
	{"graphic novels", Classification{Comics, "Graphic Novels"}},
	{"manga", Classification{Comics, "Manga"}},

	{"historic rare", Classification{NonFiction, "History"}},
	{"history", Classification{NonFiction, "History"}},
	{"indian history", Classification{NonFiction, "History"}},

	{"j krishnamurthi", Classification{NonFiction, "Philosophy & Religion"}},
	{"j krishnamurti", Classification{NonFiction, "Philosophy & Religion"}},
	{"ayn rand", Classification{NonFiction, "Philosophy & Religion"}},
	{"philosophy", Classification{NonFiction, "Philosophy & Religion"}},
	{"osho", Classification{NonFiction, "Philosophy & Religion"}},
	{"spirituality", Classification{NonFiction, "Philosophy & Religion"}},
	{"vedanta", Classification{NonFiction, "Philosophy & Religion"}},
	{"religion", Classification{NonFiction, "Philosophy & Religion"}},

	{"tell me why", Classification{Children, "Educational"}},
	{"how it works", Classification{NonFiction, "Science & Technology"}},
	{"kids", Classification{Children, "Stories"}},
	{"children", Classification{Children, "Stories"}},

	{"science", Classification{NonFiction, "Science & Technology"}},
	{"programming", Classification{NonFiction, "Science & Technology"}},
	{"technology", Classification{NonFiction, "Science & Technology"}},
	{"vedic maths", Classification{NonFiction, "Science & Technology"}},
	{"vedic math", Classification{NonFiction, "Science & Technology"}},

	{"fiction", Classification{Fiction, "Literary"}},
	{"novels", Classification{Fiction, "Literary"}},
	{"sci-fi", Classification{Fiction, "Science Fiction"}},
	{"science fiction", Classification{Fiction, "Science Fiction"}},
	{"fantasy", Classification{Fiction, "Fantasy"}},
	{"mystery", Classification{Fiction, "Mystery & Thriller"}},
	{"thriller", Classification{Fiction, "Mystery & Thriller"}},
	{"crime", Classification{Fiction, "Mystery & Thriller"}},
	{"romance", Classification{Fiction, "Romance"}},
	{"horror", Classification{Fiction, "Horror"}},
	{"adventure", Classification{Fiction, "Adventure"}},
	{"poetry", Classification{Fiction, "Poetry"}},

	{"biography", Classification{NonFiction, "Biography & Memoir"}},
	{"biographies", Classification{NonFiction, "Biography & Memoir"}},
	{"autobiography", Classification{NonFiction, "Biography & Memoir"}},

	{"business", Classification{NonFiction, "Business & Finance"}},
	{"finance", Classification{NonFiction, "Business & Finance"}},
	{"self-help", Classification{NonFiction, "Self-Help"}},
	{"self help", Classification{NonFiction, "Self-Help"}},

	{"art", Classification{NonFiction, "Arts & Entertainment"}},
	{"music", Classification{NonFiction, "Arts & Entertainment"}},

	{"textbooks", Classification{Reference, "Textbooks"}},
	{"encyclopedia", Classification{Reference, "Encyclopedias"}},
}

type titleRule struct {
	Classification
	keywords []string
}

// titleRules is the last-resort keyword table for titles and filenames.
var titleRules = []titleRule{
	{Classification{Fiction, "Science Fiction"}, []string{"sci-fi", "starship", "alien invasion", "space station"}},
	{Classification{Fiction, "Fantasy"}, []string{"sword and sorcery", "epic fantasy", "dark lord"}},
	{Classification{Fiction, "Mystery & Thriller"}, []string{"murder mystery", "detective story", "whodunit"}},
	{Classification{Fiction, "Horror"}, []string{"horror stories", "haunted house", "supernatural horror"}},
	{Classification{NonFiction, "History"}, []string{"world history", "ancient history", "military history"}},
	{Classification{NonFiction, "Biography & Memoir"}, []string{"biography of", "life of", "autobiography of"}},
	{Classification{NonFiction, "Philosophy & Religion"}, []string{"philosophy of", "ethics of"}},
	{Classification{NonFiction, "Science & Technology"}, []string{"introduction to physics", "chemistry basics"}},
	{Classification{NonFiction, "Self-Help"}, []string{"how to succeed", "self improvement"}},
	{Classification{NonFiction, "Business & Finance"}, []string{"business strategy", "financial planning"}},
	{Classification{Children, "Educational"}, []string{"tell me why", "how it works", "for kids"}},
	{Classification{Comics, "Indian Comics"}, []string{"amar chitra katha", "panchatantra tales"}},
}

// IsJunkGenre reports whether raw looks like a URL, a number, a catalogue
// heading or a description rather than a genre tag.
func IsJunkGenre(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" || utf8.RuneCountInString(s) > maxGenreLength {
		return true
	}
	for _, re := range genreBlacklist {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// ClassifyGenre maps a raw genre string onto the taxonomy.
//
// Exact matches on sub-genre names and aliases are tried across the whole
// taxonomy first. Failing that, the longest alias (over four characters)
// contained in the input wins, ties going to declaration order. Negated
// occurrences ("non-fiction") do not count as containing the alias, so a
// plain "non-fiction" tag lands in Non-Fiction/Other.
func ClassifyGenre(raw string) (Classification, bool) {
	if IsJunkGenre(raw) {
		return Classification{}, false
	}
	genre := strings.ToLower(strings.TrimSpace(raw))

	for _, c := range categories {
		for _, s := range c.SubGenres {
			if s.Name == Other {
				continue
			}
			if genre == strings.ToLower(s.Name) {
				return Classification{c.Name, s.Name}, true
			}
			for _, alias := range s.Aliases {
				if genre == alias {
					return Classification{c.Name, s.Name}, true
				}
			}
		}
	}

	var (
		best    Classification
		bestLen int
	)
	for _, c := range categories {
		for _, s := range c.SubGenres {
			for _, alias := range s.Aliases {
				n := utf8.RuneCountInString(alias)
				if n < minSubstringAlias || n <= bestLen {
					continue
				}
				if containsAlias(genre, alias) {
					best, bestLen = Classification{c.Name, s.Name}, n
				}
			}
		}
	}
	if bestLen > 0 {
		return best, true
	}

	// Any un-negated "fiction" already matched the Literary alias above.
	if strings.Contains(genre, "non-fiction") || strings.Contains(genre, "nonfiction") {
		return Classification{NonFiction, Other}, true
	}

	return Classification{}, false
}

// containsAlias reports whether alias occurs in s other than as a negated
// form such as "non-fiction" or "nonfiction".
func containsAlias(s, alias string) bool {
	for offset := 0; ; {
		i := strings.Index(s[offset:], alias)
		if i < 0 {
			return false
		}
		i += offset
		prefix := s[:i]
		if !strings.HasSuffix(prefix, "non-") && !strings.HasSuffix(prefix, "non") {
			return true
		}
		offset = i + 1
	}
}

// ClassifyFromFolder inspects the ancestor directories of path, nearest
// first. A folder literally named like a rule key wins over one that merely
// contains it; the first ancestor with any match decides. Both slash styles
// are accepted so catalogues imported from Windows shares classify too.
func ClassifyFromFolder(path string) (Classification, bool) {
	for _, folder := range ancestors(path) {
		name := strings.ToLower(strings.TrimSpace(folder))
		if name == "" {
			continue
		}
		for _, r := range folderRules {
			if name == r.key {
				return r.Classification, true
			}
		}
		for _, r := range folderRules {
			if strings.Contains(name, r.key) {
				return r.Classification, true
			}
		}
	}
	return Classification{}, false
}

// ClassifyFromTitle does a case-insensitive keyword search over text.
func ClassifyFromTitle(text string) (Classification, bool) {
	if strings.TrimSpace(text) == "" {
		return Classification{}, false
	}
	lower := strings.ToLower(text)
	for _, r := range titleRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.Classification, true
			}
		}
	}
	return Classification{}, false
}

// ancestors returns the directory components of path, nearest first.
func ancestors(path string) []string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) <= 1 {
		return nil
	}
	dirs := parts[:len(parts)-1]
	out := make([]string, 0, len(dirs))
	for i := len(dirs) - 1; i >= 0; i-- {
		if dirs[i] == "." || dirs[i] == ".." {
			continue
		}
		out = append(out, dirs[i])
	}
	return out
}
