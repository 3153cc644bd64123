// Package author validates, cleans and extracts author names from the junk
// that ebook metadata and download filenames tend to carry.
package author

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPrintableRatio = 0.8
	maxNonASCIIRun    = 5
)

// blacklist holds lower-cased values that are never real authors: tool
// artifacts, placeholders and download-site watermarks.
var blacklist = map[string]struct{}{
	"unknown": {}, "unknown author": {}, "none": {}, "null": {}, "n/a": {}, "na": {},
	"admin": {}, "administrator": {}, "user": {}, "owner": {},
	"author": {}, "writer": {}, "editor": {},
	"various": {}, "various authors": {}, "anonymous": {},
	"a": {}, "b": {}, "c": {}, "x": {}, "y": {}, "z": {},
	"nullobject": {}, "null object": {},
	"calibre": {}, "calibre user": {},
	"acrobat": {}, "adobe": {},
	"gnv64": {}, "mobilism": {}, "libgen": {}, "z-library": {},
	"downmagaz.net": {}, "downmagaz": {}, "useruplod.net": {}, "userupload": {},
}

var blacklistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^IndirectObject`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^.{1,2}$`),
	regexp.MustCompile(`(?i)^https?://`),
	regexp.MustCompile(`(?i)^www\.`),
	regexp.MustCompile(`(?i)\.(com|net|org)$`),
}

var (
	roleSuffix = regexp.MustCompile(`(?i)\s+(author|editor|translator|compiled by)\s*$`)
	lifespan   = regexp.MustCompile(`,?\s*\d{4}\s*-\s*\d{0,4}\s*$`)
)

// IsPrintableText reports whether s reads as text rather than serialized
// bytes or mis-decoded garbage. Accented names pass; long runs of non-ASCII
// runes do not.
func IsPrintableText(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "b'") || strings.HasPrefix(s, `b"`) {
		return false
	}
	if strings.Contains(s, `\x`) {
		return false
	}

	var total, printable, run, maxRun int
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		total++

		invalid := r == utf8.RuneError && size == 1
		if !invalid && (unicode.IsPrint(r) || unicode.IsSpace(r)) {
			printable++
		}
		if invalid || r > unicode.MaxASCII {
			run++
			maxRun = max(maxRun, run)
		} else {
			run = 0
		}
	}

	if float64(printable)/float64(total) < minPrintableRatio {
		return false
	}
	return maxRun <= maxNonASCIIRun
}

// IsValid reports whether s is plausibly a real author name.
func IsValid(s string) bool {
	if !IsPrintableText(s) {
		return false
	}
	trimmed := strings.TrimSpace(s)
	if _, bad := blacklist[strings.ToLower(trimmed)]; bad {
		return false
	}
	for _, re := range blacklistPatterns {
		if re.MatchString(trimmed) {
			return false
		}
	}
	return true
}

// CleanName strips role suffixes ("editor"), trailing life spans
// (", 1835-1910", "1954-") and trailing punctuation. It returns "" when
// nothing is left.
func CleanName(s string) string {
	s = roleSuffix.ReplaceAllString(s, "")
	s = lifespan.ReplaceAllString(s, "")
	s = strings.TrimRight(strings.TrimSpace(s), ".,;:")
	return strings.TrimSpace(s)
}

// Normalize runs the embedded-metadata pipeline: printable, cleaned, valid.
// It returns "" for anything that should not be stored as an author.
func Normalize(s string) string {
	if !IsPrintableText(s) {
		return ""
	}
	cleaned := CleanName(s)
	if cleaned == "" || !IsValid(cleaned) {
		return ""
	}
	return cleaned
}
