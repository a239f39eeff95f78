package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/archiv-tools/linkliste/cache"
	"github.com/archiv-tools/linkliste/config"
	"github.com/archiv-tools/linkliste/crawl"
	"github.com/archiv-tools/linkliste/export"
	"github.com/archiv-tools/linkliste/fetch"
	"github.com/archiv-tools/linkliste/locale"
	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/periodical"
	"github.com/archiv-tools/linkliste/schema"
	"github.com/archiv-tools/linkliste/site"
	"github.com/archiv-tools/linkliste/webhook"
)

// Deps bundles what the crawl handlers need from the service wiring.
type Deps struct {
	Client  *fetch.Client
	Cfg     *config.Config
	Schemas *cache.Cache
}

// jobEntry pairs a job with its cancellation hook. The engine is the single
// writer of crawl state; the handler copies snapshots out under the mutex
// for status responses.
type jobEntry struct {
	mu     sync.Mutex
	job    *models.CrawlJob
	cancel context.CancelFunc
}

// crawlStore holds all in-flight and completed crawl jobs.
var crawlStore sync.Map

func init() {
	// Background goroutine to expire crawl jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			crawlStore.Range(func(key, value any) bool {
				e := value.(*jobEntry)
				e.mu.Lock()
				expired := e.job.CreatedAt < cutoff && e.job.Status != models.StatusProcessing
				e.mu.Unlock()
				if expired {
					crawlStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostCrawl returns a handler for POST /api/v1/crawl. It validates the
// request, starts the crawl in the background, and answers immediately with
// a job id.
func PostCrawl(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.CrawlStatusResponse{
				Status: models.StatusFailed,
				Error:  &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		cat, ok := site.ByKey(req.Category)
		if !ok {
			c.JSON(http.StatusBadRequest, models.CrawlStatusResponse{
				Status: models.StatusFailed,
				Error:  &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: "unknown category: " + req.Category},
			})
			return
		}

		loc := locale.Locale(req.Locale)
		if req.Locale == "" {
			loc = locale.German
		}

		// The schema is discovered (or served from cache) before the job is
		// accepted, so invalid filters and site redesigns fail fast.
		sch, cerr := discoverSchema(c.Request.Context(), deps, cat, loc)
		if cerr != nil {
			c.JSON(http.StatusBadGateway, models.CrawlStatusResponse{
				Status: models.StatusFailed,
				Error:  cerr.ToDetail(),
			})
			return
		}

		delay := deps.Cfg.Crawler.DefaultDelay
		if req.DelaySeconds != nil {
			delay = time.Duration(*req.DelaySeconds * float64(time.Second))
		}
		maxPages := deps.Cfg.Crawler.MaxPages
		if req.MaxPages > 0 {
			maxPages = req.MaxPages
		}

		session, err := crawl.NewSession(cat, loc, sch, req.Filters, delay, maxPages, req.Title, req.Period, req.Outdir)
		if err != nil {
			detail := &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()}
			if ce, ok := err.(*models.CrawlError); ok {
				detail = ce.ToDetail()
			}
			c.JSON(http.StatusBadRequest, models.CrawlStatusResponse{
				Status: models.StatusFailed,
				Error:  detail,
			})
			return
		}

		jobID := "crawl-" + randomID()
		ctx, cancel := context.WithCancel(context.Background())
		entry := &jobEntry{
			job: &models.CrawlJob{
				ID:            jobID,
				Status:        models.StatusProcessing,
				CreatedAt:     time.Now().Unix(),
				WebhookURL:    req.WebhookURL,
				WebhookSecret: req.WebhookSecret,
			},
			cancel: cancel,
		}
		crawlStore.Store(jobID, entry)

		go runCrawl(ctx, deps, entry, session)

		c.JSON(http.StatusOK, models.CrawlResponse{
			ID:     jobID,
			Status: models.StatusProcessing,
		})
	}
}

// GetCrawl returns a handler for GET /api/v1/crawl/:id.
func GetCrawl() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := loadJob(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "crawl job not found",
				},
			})
			return
		}

		entry.mu.Lock()
		resp := models.CrawlStatusResponse{
			ID:         entry.job.ID,
			Status:     entry.job.Status,
			PageIndex:  entry.job.PageIndex,
			ItemsSoFar: entry.job.ItemsSoFar,
			LastError:  entry.job.LastError,
			Export:     entry.job.Export,
			Error:      entry.job.Error,
		}
		entry.mu.Unlock()

		c.JSON(http.StatusOK, resp)
	}
}

// CancelCrawl returns a handler for POST /api/v1/crawl/:id/cancel.
// Cancellation is cooperative: the engine notices between pagination
// transitions, the in-flight request finishes or times out, and the records
// collected so far are exported as a partial snapshot.
func CancelCrawl() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := loadJob(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "crawl job not found",
				},
			})
			return
		}

		entry.cancel()
		entry.mu.Lock()
		status := entry.job.Status
		entry.mu.Unlock()

		c.JSON(http.StatusOK, gin.H{"id": entry.job.ID, "status": status, "cancel_requested": true})
	}
}

func loadJob(id string) (*jobEntry, bool) {
	val, ok := crawlStore.Load(id)
	if !ok {
		return nil, false
	}
	return val.(*jobEntry), true
}

// discoverSchema serves a schema from the TTL cache or discovers it fresh.
func discoverSchema(ctx context.Context, deps *Deps, cat site.Category, loc locale.Locale) (*schema.Schema, *models.CrawlError) {
	key := cache.Key(cat.Key, string(loc))
	if sch, ok := deps.Schemas.Get(key); ok {
		return sch, nil
	}

	sch, err := schema.Discover(ctx, deps.Client, deps.Cfg.Site.BaseURL, cat, loc)
	if err != nil {
		if ce, ok := err.(*models.CrawlError); ok {
			return nil, ce
		}
		return nil, models.NewCrawlError(models.ErrCodeInternal, "schema discovery failed", err)
	}
	deps.Schemas.Set(key, sch)
	return sch, nil
}

// runCrawl drives one crawl end to end: pagination, periodical expansion,
// export assembly, file write, webhook notification. Partial results are
// exported for stopped and failed runs alike.
func runCrawl(ctx context.Context, deps *Deps, entry *jobEntry, session *crawl.Session) {
	progress := make(chan models.Progress, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range progress {
			entry.mu.Lock()
			entry.job.PageIndex = ev.PageIndex
			entry.job.ItemsSoFar = ev.ItemsSoFar
			if ev.LastError != "" {
				entry.job.LastError = ev.LastError
			}
			entry.mu.Unlock()

			if entry.job.WebhookURL != "" {
				webhook.DeliverAsync(entry.job.WebhookURL, entry.job.WebhookSecret, &webhook.Event{
					Type:      "crawl.page",
					JobID:     entry.job.ID,
					Timestamp: time.Now().Unix(),
					Data:      ev,
				})
			}
		}
	}()

	engine := crawl.NewEngine(deps.Client, deps.Cfg.Site.BaseURL, deps.Cfg.Crawler, progress)
	result := engine.Run(ctx, session)
	close(progress)
	<-done

	links := result.Links
	if session.Category.IsPeriodical() && result.Status != models.StatusFailed {
		expander := periodical.NewExpander(deps.Client, deps.Cfg.Site.BaseURL, session.Delay)
		links = expander.Expand(ctx, links)
	}

	doc := export.Assemble(links, session.Title, session.Period, session.Outdir)
	path, werr := export.Write(deps.Cfg.Export.Dir, doc)

	entry.mu.Lock()
	entry.job.Export = doc
	entry.job.ItemsSoFar = len(doc.Records)
	switch {
	case werr != nil:
		entry.job.Status = models.StatusFailed
		entry.job.Error = &models.ErrorDetail{Code: models.ErrCodeInternal, Message: werr.Error()}
	case result.Status == models.StatusFailed:
		entry.job.Status = models.StatusFailed
		if result.Err != nil {
			entry.job.Error = &models.ErrorDetail{Code: models.ErrCodeFetch, Message: result.Err.Error()}
		}
	default:
		entry.job.Status = result.Status
	}
	status := entry.job.Status
	entry.mu.Unlock()

	slog.Info("crawl job finished",
		"id", entry.job.ID,
		"status", status,
		"records", len(doc.Records),
		"file", path,
	)

	if entry.job.WebhookURL != "" {
		webhook.DeliverAsync(entry.job.WebhookURL, entry.job.WebhookSecret, &webhook.Event{
			Type:      "crawl." + status,
			JobID:     entry.job.ID,
			Timestamp: time.Now().Unix(),
			Data:      doc,
		})
	}
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
