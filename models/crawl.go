package models

// CrawlRequest is the payload for POST /api/v1/crawl.
type CrawlRequest struct {
	// Category is the portal search category key (e.g. "register", "periodical"). Required.
	Category string `json:"category" binding:"required"`

	// Locale selects the portal UI language: "de" or "cs". Default: "de".
	// Affects label matching and display only, never the wire protocol.
	Locale string `json:"locale,omitempty" binding:"omitempty,oneof=de cs"`

	// Filters maps exposed-filter field names to chosen values. Select and
	// radio fields are validated against the discovered schema before any
	// page is fetched. Empty means "all results".
	Filters map[string][]string `json:"filters,omitempty"`

	// DelaySeconds is the pause between page fetches. Default: 1. Min: 0.
	DelaySeconds *float64 `json:"delay_seconds,omitempty"`

	// MaxPages limits the number of result pages fetched. 0 means unbounded.
	MaxPages int `json:"max_pages,omitempty" binding:"omitempty,min=0"`

	// Title and Period name the export file: Linkliste_<Title>_<Period>.json.
	Title  string `json:"title" binding:"required"`
	Period string `json:"period" binding:"required"`

	// Outdir is copied into every exported record for the download tool.
	Outdir string `json:"outdir"`

	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Crawl job statuses.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusStopped    = "stopped"
	StatusFailed     = "failed"
)

// CrawlResponse is the immediate response for POST /api/v1/crawl.
type CrawlResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CrawlStatusResponse is the response for GET /api/v1/crawl/:id.
type CrawlStatusResponse struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	PageIndex  int             `json:"page_index"`
	ItemsSoFar int             `json:"items_so_far"`
	LastError  string          `json:"last_error,omitempty"`
	Export     *ExportDocument `json:"export,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
}

// Progress is one engine progress event, relayed to the host over a
// one-way channel.
type Progress struct {
	PageIndex  int    `json:"page_index"`
	ItemsSoFar int    `json:"items_so_far"`
	LastError  string `json:"last_error,omitempty"`
}

// CrawlJob tracks an in-progress crawl operation in the API job store.
type CrawlJob struct {
	ID            string
	Status        string // processing, completed, stopped, failed
	PageIndex     int
	ItemsSoFar    int
	LastError     string
	Export        *ExportDocument
	Error         *ErrorDetail
	CreatedAt     int64 // unix timestamp
	WebhookURL    string
	WebhookSecret string
}
