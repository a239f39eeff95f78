package crawl

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/archiv-tools/linkliste/config"
	"github.com/archiv-tools/linkliste/extract"
	"github.com/archiv-tools/linkliste/fetch"
	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/schema"
)

// Engine states. The pagination protocol is a small explicit machine so the
// retry, exhaustion, and failure policy lives in one place, away from the
// HTML parsing.
type state int

const (
	stateIdle state = iota
	stateFetching
	statePageReady
	stateExhausted
	stateFailed
	stateStopped
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateFetching:
		return "fetching"
	case statePageReady:
		return "page-ready"
	case stateExhausted:
		return "exhausted"
	case stateFailed:
		return "failed"
	case stateStopped:
		return "stopped"
	}
	return "unknown"
}

// Result is the terminal outcome of one crawl run. Links are preserved in
// discovery order even when the run ends in failed or stopped.
type Result struct {
	// Status is one of models.StatusCompleted, StatusStopped, StatusFailed.
	Status string

	// Links holds every unique candidate collected before termination.
	Links []models.CandidateLink

	// Pages is the number of logical pages fetched.
	Pages int

	// Err is the terminal error for failed runs; nil otherwise.
	Err error
}

// Engine paginates one category's results. One outstanding request at a
// time, a cooperative delay between pages, and a single AJAX retry per
// logical page.
type Engine struct {
	client  *fetch.Client
	baseURL string
	cfg     config.CrawlerConfig

	// progress, when non-nil, receives one event per fetched page. Sends
	// never block; a slow reader just misses intermediate events.
	progress chan<- models.Progress
}

// NewEngine creates an Engine. progress may be nil.
func NewEngine(client *fetch.Client, baseURL string, cfg config.CrawlerConfig, progress chan<- models.Progress) *Engine {
	if cfg.EmptyStreak <= 0 {
		cfg.EmptyStreak = 2
	}
	if cfg.NoNewStreak <= 0 {
		cfg.NoNewStreak = 2
	}
	return &Engine{client: client, baseURL: baseURL, cfg: cfg, progress: progress}
}

// Run executes the pagination loop for a session until a terminal state is
// reached. Cancellation is honored between transitions; in-flight requests
// run to completion or to their own timeout. Partial results survive every
// terminal state.
func (e *Engine) Run(ctx context.Context, s *Session) *Result {
	viewPath := strings.TrimPrefix(s.Category.SearchPath, "/")
	info := e.bootstrapViewInfo(ctx, s)
	ajaxAvailable := info.Complete()
	if !ajaxAvailable {
		slog.Warn("views ajax identifiers incomplete, crawling GET-only",
			"category", s.Category.Key,
			"viewName", info.ViewName,
		)
	}

	var limiter *rate.Limiter
	if s.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(s.Delay), 1)
	}

	seen := make(map[string]struct{})
	var links []models.CandidateLink
	emptyStreak, noNewStreak := 0, 0

	res := &Result{}
	st := stateIdle

	for page := 0; ; page++ {
		if s.MaxPages > 0 && page >= s.MaxPages {
			st = stateExhausted
			break
		}
		if ctx.Err() != nil {
			st = stateStopped
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				st = stateStopped
				break
			}
		}

		st = stateFetching
		pageURL := BuildPageURL(s.Schema.Action, s.Exposed, s.Locale, page)
		slog.Debug("fetching result page", "category", s.Category.Key, "page", page, "url", pageURL)

		var pageLinks []models.CandidateLink
		html, getErr := e.client.Get(ctx, pageURL)
		if getErr == nil {
			pageLinks = extract.Links(html, e.baseURL, s.Category)
		} else if ctx.Err() != nil {
			st = stateStopped
			break
		} else {
			slog.Warn("page GET failed, trying ajax fallback", "page", page, "error", getErr)
		}

		// Single AJAX retry for the same logical page. Some pager states
		// only exist on this path, and an empty GET fragment is ambiguous
		// between "no results" and "pager did not advance".
		var ajaxErr error
		if len(pageLinks) == 0 && ajaxAvailable {
			frag, err := fetchAjaxFragment(ctx, e.client, e.baseURL, info, viewPath, s.Exposed, s.Locale, page)
			if err != nil {
				ajaxErr = err
				if ctx.Err() != nil {
					st = stateStopped
					break
				}
				slog.Warn("ajax fallback failed", "page", page, "error", err)
			} else {
				pageLinks = extract.Links(frag, e.baseURL, s.Category)
			}
		}

		// Both paths failed outright: unrecoverable for this crawl.
		if getErr != nil && len(pageLinks) == 0 {
			if ajaxErr != nil || !ajaxAvailable {
				res.Err = getErr
				st = stateFailed
				break
			}
		}

		res.Pages = page + 1

		if len(pageLinks) == 0 {
			emptyStreak++
			slog.Debug("empty result page", "page", page, "streak", emptyStreak)
			e.emit(page, len(links), ajaxErr)
			if emptyStreak >= e.cfg.EmptyStreak {
				st = stateExhausted
				break
			}
			continue
		}
		emptyStreak = 0
		st = statePageReady

		newCount := 0
		for _, l := range pageLinks {
			if _, dup := seen[l.URL]; dup {
				continue
			}
			seen[l.URL] = struct{}{}
			links = append(links, l)
			newCount++
		}

		slog.Info("result page collected",
			"category", s.Category.Key,
			"page", page,
			"items", len(pageLinks),
			"new", newCount,
			"total", len(links),
		)
		e.emit(page, len(links), nil)

		// The pager serves the last page again for any index past the end;
		// pages that add nothing new mean the results are exhausted.
		if newCount == 0 {
			noNewStreak++
			if noNewStreak >= e.cfg.NoNewStreak {
				st = stateExhausted
				break
			}
		} else {
			noNewStreak = 0
		}
	}

	res.Links = links
	switch st {
	case stateStopped:
		res.Status = models.StatusStopped
	case stateFailed:
		res.Status = models.StatusFailed
	default:
		res.Status = models.StatusCompleted
	}

	slog.Info("pagination finished",
		"category", s.Category.Key,
		"state", st.String(),
		"pages", res.Pages,
		"links", len(links),
	)
	return res
}

// bootstrapViewInfo completes the schema's Drupal view identifiers with one
// extra landing-page fetch if discovery left them partial. The view_dom_id
// rotates per render, so a stale cached schema may need this.
func (e *Engine) bootstrapViewInfo(ctx context.Context, s *Session) schema.ViewInfo {
	info := s.Schema.ViewInfo
	if info.Complete() {
		return info
	}

	html, err := e.client.Get(ctx, e.baseURL+s.Category.SearchPath+"?language="+string(s.Locale))
	if err != nil {
		slog.Warn("view info bootstrap fetch failed", "category", s.Category.Key, "error", err)
		return info
	}

	boot := schema.ParseViewInfo(html)
	if info.ViewName == "" {
		info.ViewName = boot.ViewName
	}
	if info.ViewDisplayID == "" {
		info.ViewDisplayID = boot.ViewDisplayID
	}
	if info.ViewDomID == "" {
		info.ViewDomID = boot.ViewDomID
	}
	if info.Theme == "" {
		info.Theme = boot.Theme
	}
	if info.ThemeToken == "" {
		info.ThemeToken = boot.ThemeToken
	}
	return info
}

// emit sends a progress event without ever blocking the crawl.
func (e *Engine) emit(page, total int, lastErr error) {
	if e.progress == nil {
		return
	}
	ev := models.Progress{PageIndex: page, ItemsSoFar: total}
	if lastErr != nil {
		ev.LastError = lastErr.Error()
	}
	select {
	case e.progress <- ev:
	default:
	}
}
