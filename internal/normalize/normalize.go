// Package normalize cleans metadata strings read from ebook files.
package normalize

import (
	"strings"
	"unicode"
)

// iso639_2to1 maps ISO 639-2 codes, terminologic and bibliographic, to
// ISO 639-1.
var iso639_2to1 = map[string]string{
	"eng": "en", "spa": "es", "fra": "fr", "fre": "fr", "deu": "de", "ger": "de",
	"ita": "it", "por": "pt", "nld": "nl", "dut": "nl", "rus": "ru", "jpn": "ja",
	"zho": "zh", "chi": "zh", "kor": "ko", "ara": "ar", "hin": "hi", "pol": "pl",
	"swe": "sv", "nor": "no", "dan": "da", "fin": "fi", "tur": "tr", "ell": "el",
	"gre": "el", "heb": "he", "ces": "cs", "cze": "cs", "hun": "hu", "ron": "ro",
	"rum": "ro", "tha": "th", "vie": "vi", "ind": "id", "msa": "ms", "may": "ms",
	"ukr": "uk", "cat": "ca", "hrv": "hr", "slk": "sk", "slo": "sk", "bul": "bg",
	"lit": "lt", "lav": "lv", "est": "et", "slv": "sl", "srp": "sr", "fas": "fa",
	"per": "fa", "ben": "bn", "tam": "ta", "tel": "te", "mar": "mr", "guj": "gu",
	"kan": "kn", "mal": "ml", "pan": "pa", "urd": "ur", "nep": "ne", "sin": "si",
	"san": "sa", "lat": "la", "epo": "eo", "cym": "cy", "wel": "cy", "gle": "ga",
	"eus": "eu", "baq": "eu", "isl": "is", "ice": "is", "afr": "af", "swa": "sw",
	"tgl": "tl", "fil": "tl", "bod": "bo", "tib": "bo",
}

// languageNames maps English language names to ISO 639-1.
var languageNames = map[string]string{
	"english": "en", "spanish": "es", "french": "fr", "german": "de",
	"italian": "it", "portuguese": "pt", "dutch": "nl", "russian": "ru",
	"japanese": "ja", "chinese": "zh", "mandarin": "zh", "korean": "ko",
	"arabic": "ar", "hindi": "hi", "polish": "pl", "swedish": "sv",
	"norwegian": "no", "danish": "da", "finnish": "fi", "turkish": "tr",
	"greek": "el", "hebrew": "he", "czech": "cs", "hungarian": "hu",
	"romanian": "ro", "thai": "th", "vietnamese": "vi", "indonesian": "id",
	"malay": "ms", "ukrainian": "uk", "catalan": "ca", "croatian": "hr",
	"slovak": "sk", "bulgarian": "bg", "serbian": "sr", "persian": "fa",
	"farsi": "fa", "bengali": "bn", "tamil": "ta", "telugu": "te",
	"marathi": "mr", "gujarati": "gu", "kannada": "kn", "malayalam": "ml",
	"punjabi": "pa", "urdu": "ur", "nepali": "ne", "sanskrit": "sa",
	"latin": "la", "esperanto": "eo", "welsh": "cy", "irish": "ga",
	"afrikaans": "af", "swahili": "sw", "tagalog": "tl", "tibetan": "bo",
}

// known2 is every ISO 639-1 code reachable from the tables above.
var known2 = func() map[string]bool {
	m := make(map[string]bool, len(iso639_2to1))
	for _, c := range iso639_2to1 {
		m[c] = true
	}
	for _, c := range languageNames {
		m[c] = true
	}
	return m
}()

// LanguageCode converts "en", "eng", "en-US", "en_GB" or "English" to the
// ISO 639-1 code. Unrecognized values come back as "".
func LanguageCode(raw string) string {
	s := strings.ToLower(Text(raw))
	if s == "" {
		return ""
	}
	if idx := strings.IndexAny(s, "-_"); idx > 0 {
		s = s[:idx]
	}

	switch {
	case len(s) == 2 && known2[s]:
		return s
	case len(s) == 3 && iso639_2to1[s] != "":
		return iso639_2to1[s]
	default:
		return languageNames[s]
	}
}

// Text drops NUL and other control characters, collapses whitespace runs
// and trims the result. Embedded metadata often carries all three.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
