// Package site describes the PortaFontium archive portal: its search
// categories, their result-link policies, and URL conventions shared by the
// rest of the crawler.
package site

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the production portal address. Overridable via config
// so tests can point the crawler at an httptest server.
const DefaultBaseURL = "https://www.portafontium.eu"

// AjaxPath is the Drupal views endpoint used by the fragment-update fallback.
const AjaxPath = "/views/ajax"

// Category is one searchable document category on the portal. The portal
// renders each as its own exposed-filter search page.
type Category struct {
	// Key is the stable identifier used in API requests and view paths.
	Key string `json:"key"`

	// SearchPath is the path of the category's search page, e.g. "/searching/register".
	SearchPath string `json:"search_path"`

	// AllowedPrefixes are the path prefixes a result link must match.
	AllowedPrefixes []string `json:"allowed_prefixes"`

	// PreferScanRoot collapses /iipimage/<id>/<rest> links to the bare
	// scan-viewer root /iipimage/<id>.
	PreferScanRoot bool `json:"prefer_scan_root"`

	// ScanOnlyIfPresent short-circuits extraction to scan-viewer IDs whenever
	// the fragment contains any. Periodicals keep it off because their
	// /periodical/ collection links must survive for the expansion step.
	ScanOnlyIfPresent bool `json:"scan_only_if_present"`
}

// IsPeriodical reports whether results of this category are serial
// collections that expand into per-issue records.
func (c Category) IsPeriodical() bool { return c.Key == "periodical" }

// Categories lists every searchable category in portal order.
var Categories = []Category{
	{Key: "register", SearchPath: "/searching/register", AllowedPrefixes: []string{"/register/", "/iipimage/"}, PreferScanRoot: true, ScanOnlyIfPresent: true},
	{Key: "chronicle", SearchPath: "/searching/chronicle", AllowedPrefixes: []string{"/chronicle/", "/iipimage/"}, PreferScanRoot: true, ScanOnlyIfPresent: true},
	{Key: "charter", SearchPath: "/searching/charter", AllowedPrefixes: []string{"/charter/", "/iipimage/"}, PreferScanRoot: true, ScanOnlyIfPresent: true},
	{Key: "photo", SearchPath: "/searching/photo", AllowedPrefixes: []string{"/photo/", "/iipimage/"}, PreferScanRoot: true, ScanOnlyIfPresent: true},
	{Key: "census", SearchPath: "/searching/census", AllowedPrefixes: []string{"/census/", "/iipimage/"}, PreferScanRoot: true, ScanOnlyIfPresent: true},
	{Key: "map", SearchPath: "/searching/map", AllowedPrefixes: []string{"/map/", "/iipimage/"}, PreferScanRoot: true, ScanOnlyIfPresent: true},
	{Key: "periodical", SearchPath: "/searching/periodical", AllowedPrefixes: []string{"/iipimage/", "/periodical/"}, PreferScanRoot: true, ScanOnlyIfPresent: false},
	{Key: "amtsbuch", SearchPath: "/searching/amtsbuch", AllowedPrefixes: []string{"/amtsbuch/", "/iipimage/"}, PreferScanRoot: true, ScanOnlyIfPresent: true},
}

// ByKey returns the category with the given key.
func ByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Keys returns all category keys in portal order.
func Keys() []string {
	keys := make([]string, len(Categories))
	for i, c := range Categories {
		keys[i] = c.Key
	}
	return keys
}

// StripLanguageParam removes the portal's `language` UI parameter and any
// fragment from a URL. Result links are exported language-neutral so the
// same record crawled under de and cs deduplicates to one URL.
func StripLanguageParam(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	if u.RawQuery == "" {
		return u.String()
	}
	kept := make(url.Values)
	for key, vals := range u.Query() {
		if strings.EqualFold(key, "language") {
			continue
		}
		kept[key] = vals
	}
	u.RawQuery = kept.Encode()
	return u.String()
}

// SameHost reports whether the given host belongs to the portal rooted at
// baseURL (exact host or a subdomain of its registrable domain).
func SameHost(host, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	bh := stripPort(base.Host)
	h := stripPort(host)
	if strings.EqualFold(h, bh) {
		return true
	}
	// www.portafontium.eu and portafontium.eu are the same archive.
	return strings.EqualFold(strings.TrimPrefix(h, "www."), strings.TrimPrefix(bh, "www."))
}

func stripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}
