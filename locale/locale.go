// Package locale canonicalizes and translates the portal's form labels.
//
// The portal serves its exposed-filter forms in German or Czech depending on
// the `language` parameter, and frequently mixes the two on one page. All
// label handling is pure data-table lookups plus a pure normalization
// function, so wording drift on the site only ever requires table edits.
package locale

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Locale selects the portal UI language for a crawl session.
type Locale string

const (
	German Locale = "de"
	Czech  Locale = "cs"
)

// Valid reports whether l is a supported portal language.
func (l Locale) Valid() bool { return l == German || l == Czech }

// foldDiacritics decomposes to NFD, drops combining marks, and recomposes.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// synonyms maps folded label forms of both languages onto one canonical key,
// so equivalent DE/CZ labels compare equal after Normalize. The values are
// deliberately outside the key set, which keeps Normalize idempotent.
var synonyms = map[string]string{
	// field labels
	"misto":         "place",
	"ort":           "place",
	"nadpis":        "title",
	"titulek":       "title",
	"titel":         "title",
	"od roku":       "year-from",
	"von jahr":      "year-from",
	"seit jahr":     "year-from",
	"do roku":       "year-to",
	"bis jahr":      "year-to",
	"archiv":        "archive",
	"typ":           "type",
	"jazyk":         "language",
	"sprache":       "language",
	"text":          "fulltext",
	"signatur":      "signature",
	"verlagsort":    "publication-place",
	"kroniky":       "chronicles",
	"chroniken":     "chronicles",
	"umkreis":       "vicinity",
	"okoli":         "vicinity",
	"v seznamu":     "view-list",
	"in liste":      "view-list",
	"na mape":       "view-map",
	"auf karte":     "view-map",
	// option labels
	"obecni kronika":   "chronicle-municipal",
	"gemeindechronik":  "chronicle-municipal",
	"skolni kronika":   "chronicle-school",
	"schulchronik":     "chronicle-school",
	"cirkevni kronika": "chronicle-church",
	"kirchenchronik":   "chronicle-church",
	"jine kroniky":     "chronicle-other",
	"andere chroniken": "chronicle-other",
	"vsechny kroniky":  "chronicle-all",
	"alle chroniken":   "chronicle-all",
	"pouze s obrazky":  "with-images-only",
	"nur mit bildern":  "with-images-only",
	"fotografie":       "photographs",
	"fotografien":      "photographs",
	"- alle -":         "any",
	"- vse -":          "any",
	"all":              "any",
}

// Normalize canonicalizes a form label or option text into a locale-stable
// key: diacritics folded, lower-cased, whitespace collapsed, and known DE/CZ
// synonym pairs mapped to one shared key. Pure and idempotent.
func Normalize(label string, _ Locale) string {
	s := CleanLabel(label)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	if canonical, ok := synonyms[s]; ok {
		return canonical
	}
	return s
}

// CleanLabel collapses runs of whitespace and trims the ends. It does not
// change case or letters, so it is safe for display text.
func CleanLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
