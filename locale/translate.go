package locale

import "strings"

// labelDE translates field labels the portal leaves in Czech (or mixes into
// German pages) to the German wording used elsewhere on the site.
var labelDE = map[string]string{
	"Místo":       "Ort",
	"Misto":       "Ort",
	"Od roku":     "Von Jahr",
	"Do roku":     "Bis Jahr",
	"Seit Jahr":   "Von Jahr",
	"Nadpis":      "Titel",
	"Titulek":     "Titel",
	"Archiv":      "Archiv",
	"Typ":         "Typ",
	"Jazyk":       "Sprache",
	"Kroniky":     "Chroniken",
	"Signatur":    "Signatur",
	"Verlagsort":  "Erscheinungsort",
	"v seznamu":   "In Liste",
	"na mapě":     "Auf Karte",
}

// optionDE translates option labels on chronicle, periodical, and language
// widgets.
var optionDE = map[string]string{
	"Obecní kronika":        "Gemeindechronik",
	"Školní kronika":        "Schulchronik",
	"Cirkevní kronika":      "Kirchenchronik",
	"Církevní kronika":      "Kirchenchronik",
	"Jiné kroniky":          "Andere Chroniken",
	"Fotografie":            "Fotografien",
	"Všechny kroniky":       "Alle Chroniken",
	"Pouze s obrázky":       "Nur mit Bildern",
	"Kur_listce, Adressbuch": "Kurliste / Adressbuch",
	"Kur_listce, adresář":   "Kurliste / Adressbuch",
	"Kurliste, Adressbuch":  "Kurliste / Adressbuch",
	"CZ":                    "Tschechisch (CZ)",
	"DE":                    "Deutsch (DE)",
	"- Vše -":               "- Alle -",
}

// TranslateDE maps a portal label to its German display form. Unknown text
// passes through cleaned but otherwise untouched.
func TranslateDE(text string) string {
	t := CleanLabel(text)
	if t == "" {
		return t
	}
	if de, ok := labelDE[t]; ok {
		return de
	}
	if de, ok := optionDE[t]; ok {
		return de
	}
	return t
}

// TranslateOptionDE is TranslateDE with option-table priority, for widget
// option labels where the same string may appear in both tables.
func TranslateOptionDE(text string) string {
	t := CleanLabel(text)
	if de, ok := optionDE[t]; ok {
		return de
	}
	return TranslateDE(t)
}

// nameHints maps substrings of a field's machine name to a German display
// label. Used when the portal ships a field without a usable label.
var nameHints = []struct {
	keys  []string
	label string
}{
	{[]string{"okoli", "okolí", "vicinity", "radius", "distance", "umkreis"}, "Umkreis"},
	{[]string{"archiv", "archive"}, "Archiv"},
	{[]string{"title", "titel", "nadpis"}, "Titel"},
	{[]string{"misto", "místo", "place", "ort", "lokal", "location"}, "Ort"},
	{[]string{"text", "fulltext", "query"}, "Text"},
	{[]string{"od_roku", "from", "seit", "von"}, "Von Jahr"},
	{[]string{"do_roku", "bis", "_to"}, "Bis Jahr"},
	{[]string{"typ", "type"}, "Typ"},
	{[]string{"jazyk", "language", "sprache"}, "Sprache"},
	{[]string{"signatur", "signature"}, "Signatur"},
	{[]string{"verlagsort", "publisher", "place_of_pub"}, "Erscheinungsort"},
	{[]string{"kronik", "chronicle"}, "Chroniken"},
}

// LabelFromName derives a German display label from a field's machine name
// when the current label is missing or just echoes the name. The vicinity
// hint is applied unconditionally because the portal labels that widget with
// the adjacent place field's text.
func LabelFromName(name, current string) string {
	n := strings.ToLower(name)
	cur := CleanLabel(current)

	for _, k := range nameHints[0].keys {
		if strings.Contains(n, k) {
			return nameHints[0].label
		}
	}

	if cur != "" && !strings.EqualFold(cur, n) {
		return cur
	}
	for _, hint := range nameHints[1:] {
		for _, k := range hint.keys {
			if strings.Contains(n, k) {
				return hint.label
			}
		}
	}
	if cur != "" {
		return cur
	}
	return name
}
