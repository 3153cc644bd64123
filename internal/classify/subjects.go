package classify

import (
	"strings"

	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
)

const minSubjectLength = 4

// genericSubjects carry no genre signal on their own.
var genericSubjects = map[string]struct{}{
	"fiction": {}, "nonfiction": {}, "non-fiction": {},
	"book": {}, "books": {}, "history": {},
}

type subjectRule struct {
	keywords []string
	result   taxonomy.Classification
}

func nf(sub string) taxonomy.Classification {
	return taxonomy.Classification{Category: taxonomy.NonFiction, SubGenre: sub}
}

func fic(sub string) taxonomy.Classification {
	return taxonomy.Classification{Category: taxonomy.Fiction, SubGenre: sub}
}

// bisacFiction refines "FICTION / ..." headings. Keywords are upper case.
var bisacFiction = []subjectRule{
	{[]string{"FANTASY"}, fic("Fantasy")},
	{[]string{"SCIENCE FICTION"}, fic("Science Fiction")},
	{[]string{"MYSTERY", "THRILLER"}, fic("Mystery & Thriller")},
	{[]string{"HORROR"}, fic("Horror")},
	{[]string{"ROMANCE"}, fic("Romance")},
	{[]string{"HISTORICAL"}, fic("Historical Fiction")},
	{[]string{"LITERARY"}, fic("Literary")},
}

// bisacNonFiction maps non-fiction BISAC heads. History is handled apart
// because it needs a length guard.
var bisacNonFiction = []subjectRule{
	{[]string{"SELF-HELP"}, nf("Self-Help")},
	{[]string{"BUSINESS & ECONOMICS"}, nf("Business & Finance")},
	{[]string{"TECHNOLOGY & ENGINEERING"}, nf("Science & Technology")},
}

var bisacNonFictionTail = []subjectRule{
	{[]string{"PSYCHOLOGY"}, nf("Psychology")},
	{[]string{"RELIGION", "PHILOSOPHY"}, nf("Philosophy & Religion")},
	{[]string{"HEALTH", "FITNESS"}, nf("Health & Wellness")},
	{[]string{"COOKING", "COOKBOOK"}, nf("Health & Wellness")},
}

// subjectKeywords is the plain-language scan. Keywords are lower case.
var subjectKeywords = []subjectRule{
	{[]string{"fantasy"}, fic("Fantasy")},
	{[]string{"science fiction", "sci-fi"}, fic("Science Fiction")},
	{[]string{"mystery", "detective"}, fic("Mystery & Thriller")},
	{[]string{"thriller", "suspense"}, fic("Mystery & Thriller")},
	{[]string{"horror"}, fic("Horror")},
	{[]string{"romance"}, fic("Romance")},
	{[]string{"programming", "computer"}, nf("Science & Technology")},
	{[]string{"mathematics", "physics"}, nf("Science & Technology")},
}

// categoryRank orders categories for the alias pass; lower wins.
var categoryRank = map[string]int{
	taxonomy.NonFiction: 1,
	taxonomy.Fiction:    2,
	taxonomy.Children:   3,
	taxonomy.Comics:     4,
	taxonomy.Reference:  5,
}

func (r subjectRule) matches(s string) bool {
	for _, k := range r.keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func firstRule(rules []subjectRule, s string) (taxonomy.Classification, bool) {
	for _, r := range rules {
		if r.matches(s) {
			return r.result, true
		}
	}
	return taxonomy.Classification{}, false
}

// ClassifySubjects maps external subject headings onto the taxonomy.
// Biographies win outright, then BISAC headings, then genre keywords, then
// taxonomy aliases ranked by category.
func ClassifySubjects(subjects []string) (taxonomy.Classification, bool) {
	if len(subjects) == 0 {
		return taxonomy.Classification{}, false
	}

	for _, s := range subjects {
		u := strings.ToUpper(s)
		if strings.Contains(u, "BIOGRAPHY") {
			return nf("Biography & Memoir"), true
		}
	}

	for _, s := range subjects {
		if c, ok := classifyBISAC(s); ok {
			return c, true
		}
	}

	for _, s := range subjects {
		lower, ok := usableSubject(s)
		if !ok {
			continue
		}
		if c, ok := firstRule(subjectKeywords, lower); ok {
			return c, true
		}
	}

	return classifyByAlias(subjects)
}

func classifyBISAC(s string) (taxonomy.Classification, bool) {
	u := strings.ToUpper(s)
	if strings.Contains(u, "FICTION /") {
		if c, ok := firstRule(bisacFiction, u); ok {
			return c, true
		}
		return fic("Literary"), true
	}
	if c, ok := firstRule(bisacNonFiction, u); ok {
		return c, true
	}
	if (strings.Contains(u, "HISTORY /") || strings.HasPrefix(u, "HISTORY")) && len(s) > 10 {
		return nf("History"), true
	}
	return firstRule(bisacNonFictionTail, u)
}

func usableSubject(s string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if len(lower) < minSubjectLength {
		return "", false
	}
	if _, generic := genericSubjects[lower]; generic {
		return "", false
	}
	return lower, true
}

func classifyByAlias(subjects []string) (taxonomy.Classification, bool) {
	var (
		best     taxonomy.Classification
		bestRank = len(categoryRank) + 1
	)
	cats := taxonomy.Categories()

	for _, s := range subjects {
		lower, ok := usableSubject(s)
		if !ok {
			continue
		}
		for _, cat := range cats {
			rank, ranked := categoryRank[cat.Name]
			if !ranked || rank >= bestRank {
				continue
			}
			for _, sub := range cat.SubGenres {
				if sub.Name == taxonomy.Other {
					continue
				}
				if subjectMatches(lower, sub) {
					best = taxonomy.Classification{Category: cat.Name, SubGenre: sub.Name}
					bestRank = rank
					break
				}
			}
		}
	}
	return best, best.Complete()
}

// subjectMatches accepts the sub-genre name exactly, or any alias that
// contains or is contained in the subject.
func subjectMatches(lower string, sub taxonomy.SubGenre) bool {
	if lower == strings.ToLower(sub.Name) {
		return true
	}
	for _, a := range sub.Aliases {
		a = strings.ToLower(a)
		if strings.Contains(lower, a) || strings.Contains(a, lower) {
			return true
		}
	}
	return false
}
