// Package extract turns result-page HTML fragments into candidate record
// links. It is purely syntactic: no network access, and an empty fragment is
// a legitimate answer, not an error.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/site"
)

// reScanID matches the numeric id of a scan-viewer resource anywhere in a
// fragment, markup or script alike.
var reScanID = regexp.MustCompile(`/iipimage/(\d+)`)

// scopeMatchers locate the result-item container, most specific first. The
// final fallback is the whole fragment, for AJAX responses that arrive
// without the usual view wrapper.
var scopeMatchers = []goquery.Matcher{
	cascadia.MustCompile("table.views-table"),
	cascadia.MustCompile(".view-content"),
	cascadia.MustCompile(".view"),
}

// ScanIDs returns the scan-viewer ids found anywhere in the text, in first
// occurrence order, deduplicated.
func ScanIDs(text string) []string {
	matches := reScanID.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var ids []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
	}
	return ids
}

// ScanURL builds the language-neutral scan-viewer URL for an id.
func ScanURL(baseURL, id string) string {
	return baseURL + "/iipimage/" + id
}

// Links extracts candidate record links from a results fragment for the
// given category. Relative hrefs are resolved against baseURL; links leaving
// the portal or outside the category's allowed path prefixes are dropped.
// A fragment with zero matching items yields an empty slice.
func Links(fragmentHTML, baseURL string, cat site.Category) []models.CandidateLink {
	var out []models.CandidateLink
	seen := make(map[string]struct{})

	// Fast path: when the fragment exposes scan-viewer ids and the category
	// prefers them, the anchors carry no extra information.
	if cat.ScanOnlyIfPresent {
		if ids := ScanIDs(fragmentHTML); len(ids) > 0 {
			for _, id := range ids {
				u := ScanURL(baseURL, id)
				if _, ok := seen[u]; ok {
					continue
				}
				seen[u] = struct{}{}
				out = append(out, models.CandidateLink{URL: u})
			}
			return out
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragmentHTML))
	if err == nil {
		scope := doc.Selection
		for _, m := range scopeMatchers {
			if found := doc.FindMatcher(m).First(); found.Length() > 0 {
				scope = found
				break
			}
		}

		scope.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			u, ok := NormalizeLink(cat, baseURL, a.AttrOr("href", ""))
			if !ok {
				return
			}
			if _, dup := seen[u]; dup {
				return
			}
			seen[u] = struct{}{}
			out = append(out, models.CandidateLink{
				URL:   u,
				Title: strings.Join(strings.Fields(a.Text()), " "),
			})
		})
	}

	// Periodical fragments list their issues as scan links outside the
	// anchor scope; sweep the raw text for them as well.
	if cat.IsPeriodical() {
		for _, id := range ScanIDs(fragmentHTML) {
			u := site.StripLanguageParam(ScanURL(baseURL, id))
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, models.CandidateLink{URL: u})
		}
	}

	return out
}

// reScanRoot matches a scan path and captures the id prefix.
var reScanRoot = regexp.MustCompile(`^/iipimage/(\d+)`)

// NormalizeLink resolves an href against the portal base and applies the
// category's link policy. Returns the canonical absolute URL and whether the
// link is a valid record candidate.
func NormalizeLink(cat site.Category, baseURL, href string) (string, bool) {
	if href == "" {
		return "", false
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !site.SameHost(resolved.Host, baseURL) {
		return "", false
	}

	path := resolved.Path
	allowed := false
	for _, prefix := range cat.AllowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", false
	}

	if cat.PreferScanRoot {
		if m := reScanRoot.FindStringSubmatch(path); m != nil {
			return ScanURL(baseURL, m[1]), true
		}
	}

	resolved.Fragment = ""
	return site.StripLanguageParam(resolved.String()), true
}
