package crawl

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/archiv-tools/linkliste/locale"
)

// BuildPageURL maps a filter selection onto the visible GET URL of one
// result page: the form action plus the exposed items, the UI language, and
// the zero-based page index. Pure function; an empty selection produces a
// valid "all results" request.
//
// The query string is assembled by hand to keep the site's declared field
// order, matching what a browser submits.
func BuildPageURL(action string, exposed [][2]string, loc locale.Locale, page int) string {
	var qs strings.Builder

	hasLanguage := false
	for _, kv := range exposed {
		if strings.EqualFold(kv[0], "language") {
			hasLanguage = true
		}
		appendParam(&qs, kv[0], kv[1])
	}
	if !hasLanguage {
		appendParam(&qs, "language", string(loc))
	}
	appendParam(&qs, "page", strconv.Itoa(page))

	sep := "?"
	if strings.Contains(action, "?") {
		sep = "&"
	}
	return action + sep + qs.String()
}

func appendParam(qs *strings.Builder, key, value string) {
	if qs.Len() > 0 {
		qs.WriteByte('&')
	}
	qs.WriteString(url.QueryEscape(key))
	qs.WriteByte('=')
	qs.WriteString(url.QueryEscape(value))
}
