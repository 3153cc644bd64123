package author

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxAuthorWords = 4
	swapRatio      = 1.5
	minQueryTitle  = 3
)

var (
	handleMark     = regexp.MustCompile(`@\w+`)
	pdfDriveMark   = regexp.MustCompile(`(?i)\s*\(\s*PDFDrive\s*\)\s*`)
	zlibMark       = regexp.MustCompile(`(?i)\s*\(\s*z-lib\.org\s*\)\s*`)
	underscoreRuns = regexp.MustCompile(`_+`)
	bracketed      = regexp.MustCompile(`\[.*?\]`)
	parenthesised  = regexp.MustCompile(`\(.*?\)`)
	dashes         = regexp.MustCompile(`\s*-\s*`)
	years          = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	formatWords    = regexp.MustCompile(`(?i)\b(epub|pdf|mobi|azw3?)\b`)
	spaceRuns      = regexp.MustCompile(`\s+`)
)

// spacedPatterns run against the stem after underscores became spaces.
var spacedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?P<author>[^-]+?)\s*[-–—]\s*(?P<title>.+)$`),
	regexp.MustCompile(`(?i)^(?P<title>.+?)\s*[-–—]\s*(?P<author>[^-]+)$`),
	regexp.MustCompile(`(?i)^(?P<title>.+?)\s*\((?P<author>[^)]+)\)$`),
	regexp.MustCompile(`(?i)^(?P<title>.+?)\s*\[(?P<author>[^\]]+)\]$`),
}

// underscorePattern matches Title_Author_Name_Publisher_Year. It needs the
// underscores intact and relies on capitalisation, so it is case-sensitive.
var underscorePattern = regexp.MustCompile(`^(?P<title>.+?)_(?P<author>[A-Z][a-z]+(?:_[A-Z][a-z]+)+)(?:_\d{4})?(?:_.+)?$`)

// Stem returns the file name of path without directory or extension.
// Both slash styles are treated as separators.
func Stem(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndexByte(path, '.'); i > 0 {
		path = path[:i]
	}
	return path
}

// StripWatermarks removes download-site marks such as "@handle",
// "(PDFDrive)" and "(z-lib.org)".
func StripWatermarks(s string) string {
	s = handleMark.ReplaceAllString(s, "")
	s = pdfDriveMark.ReplaceAllString(s, "")
	s = zlibMark.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractFromFilename guesses the author from a structured file name such
// as "Author - Title.epub", "Title (Author).pdf" or
// "Title_First_Last_Publisher_2019.pdf". It returns "" when no pattern yields
// a valid name.
func ExtractFromFilename(path string) string {
	raw := StripWatermarks(Stem(path))
	spaced := strings.TrimSpace(underscoreRuns.ReplaceAllString(raw, " "))

	for _, re := range spacedPatterns {
		if name := candidate(re, spaced); name != "" {
			return name
		}
	}
	if name := candidate(underscorePattern, raw); name != "" {
		return name
	}
	return ""
}

func candidate(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[re.SubexpIndex("author")])
	title := strings.TrimSpace(m[re.SubexpIndex("title")])
	if name == "" {
		return ""
	}

	words := len(strings.Fields(strings.ReplaceAll(name, "_", " ")))
	if words > maxAuthorWords {
		return ""
	}
	// "Long Title - Author" read the wrong way round by the first pattern.
	nameLen, titleLen := utf8.RuneCountInString(name), utf8.RuneCountInString(title)
	if title != "" && float64(nameLen) > float64(titleLen)*swapRatio && words > 2 {
		name = title
	}

	name = CleanName(strings.ReplaceAll(name, "_", " "))
	if name == "" || !IsValid(name) {
		return ""
	}
	return name
}

// TitleFromFilename derives a search title from a file name by dropping
// watermarks, bracketed notes, years and format words. Results shorter than
// three characters are not worth querying and come back as "".
func TitleFromFilename(path string) string {
	s := StripWatermarks(Stem(path))
	s = bracketed.ReplaceAllString(s, "")
	s = parenthesised.ReplaceAllString(s, "")
	s = underscoreRuns.ReplaceAllString(s, " ")
	s = dashes.ReplaceAllString(s, " ")
	s = years.ReplaceAllString(s, "")
	s = formatWords.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
	if utf8.RuneCountInString(s) < minQueryTitle {
		return ""
	}
	return s
}
