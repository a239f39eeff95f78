// Package periodical expands serial-publication collection links into one
// record per issue. A periodical search result points at a /periodical/
// collection page; the exportable resources are the scan-viewer links of the
// individual issues listed there.
package periodical

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/archiv-tools/linkliste/extract"
	"github.com/archiv-tools/linkliste/fetch"
	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/site"
)

// Expander fetches periodical collection pages at the crawl's pace.
type Expander struct {
	client  *fetch.Client
	baseURL string
	delay   time.Duration
}

// NewExpander creates an Expander sharing the crawl's client and delay.
func NewExpander(client *fetch.Client, baseURL string, delay time.Duration) *Expander {
	return &Expander{client: client, baseURL: baseURL, delay: delay}
}

// IsCollection reports whether a candidate link is a periodical collection
// page that needs expansion.
func IsCollection(u string) bool {
	return strings.Contains(u, "/periodical/")
}

// Expand walks the collected candidates, fetches every collection page, and
// returns the issue-level records: scan-viewer links already collected plus
// one link per issue discovered inside a collection, deduplicated in first
// discovery order. Collection links themselves are not exported.
//
// A single collection's fetch or parse failure is logged and skipped; the
// expansion continues. Cancellation stops between fetches and keeps what was
// expanded so far.
func (x *Expander) Expand(ctx context.Context, links []models.CandidateLink) []models.CandidateLink {
	var collections []models.CandidateLink
	for _, l := range links {
		if IsCollection(l.URL) {
			collections = append(collections, l)
		}
	}
	if len(collections) == 0 {
		return issuesOnly(links)
	}

	slog.Info("expanding periodical collections", "collections", len(collections))

	seen := make(map[string]struct{}, len(links))
	out := make([]models.CandidateLink, 0, len(links))
	for _, l := range links {
		if _, dup := seen[l.URL]; dup {
			continue
		}
		seen[l.URL] = struct{}{}
		out = append(out, l)
	}

	var limiter *rate.Limiter
	if x.delay > 0 {
		limiter = rate.NewLimiter(rate.Every(x.delay), 1)
	}

	for i, coll := range collections {
		if ctx.Err() != nil {
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		html, err := x.client.Get(ctx, coll.URL)
		if err != nil {
			slog.Warn("periodical collection not loadable, skipping",
				"index", i+1,
				"of", len(collections),
				"url", coll.URL,
				"error", err,
			)
			continue
		}

		added := 0
		for _, id := range extract.ScanIDs(html) {
			u := site.StripLanguageParam(extract.ScanURL(x.baseURL, id))
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, models.CandidateLink{URL: u, Title: coll.Title})
			added++
		}
		slog.Debug("periodical collection expanded",
			"index", i+1,
			"of", len(collections),
			"issues", added,
		)
	}

	return issuesOnly(out)
}

// issuesOnly keeps scan-viewer links, dropping collection pages and anything
// else, preserving order and uniqueness.
func issuesOnly(links []models.CandidateLink) []models.CandidateLink {
	seen := make(map[string]struct{}, len(links))
	out := make([]models.CandidateLink, 0, len(links))
	for _, l := range links {
		u := site.StripLanguageParam(l.URL)
		if !strings.Contains(u, "/iipimage/") {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, models.CandidateLink{URL: u, Title: l.Title})
	}
	return out
}
