// Package crawl drives result pagination against the portal: it builds the
// visible GET URLs, falls back to the Drupal views AJAX endpoint when plain
// pagination does not advance, and decides when a category is exhausted.
package crawl

import (
	"time"

	"github.com/archiv-tools/linkliste/locale"
	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/schema"
	"github.com/archiv-tools/linkliste/site"
)

// Session is the immutable configuration of one crawl. Built once per
// invocation, consumed by the engine, never mutated mid-crawl.
type Session struct {
	Category site.Category
	Locale   locale.Locale
	Schema   *schema.Schema

	// Exposed is the flattened filter selection in form-field order.
	Exposed [][2]string

	// Delay is the cooperative pause between page fetches.
	Delay time.Duration

	// MaxPages caps pagination; 0 means unbounded.
	MaxPages int

	Title  string
	Period string
	Outdir string
}

// NewSession validates a filter selection against the discovered schema and
// freezes the crawl configuration. Select, radio, and checkbox values that
// are not declared options are rejected here, before any page is fetched.
func NewSession(cat site.Category, loc locale.Locale, sch *schema.Schema, filters map[string][]string, delay time.Duration, maxPages int, title, period, outdir string) (*Session, error) {
	if err := sch.Validate(filters); err != nil {
		return nil, models.NewCrawlError(models.ErrCodeInvalidInput, err.Error(), err)
	}
	if delay < 0 {
		delay = 0
	}
	if maxPages < 0 {
		maxPages = 0
	}
	return &Session{
		Category: cat,
		Locale:   loc,
		Schema:   sch,
		Exposed:  sch.ExposedItems(filters),
		Delay:    delay,
		MaxPages: maxPages,
		Title:    title,
		Period:   period,
		Outdir:   outdir,
	}, nil
}
