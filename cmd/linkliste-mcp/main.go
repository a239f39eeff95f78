package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// crawlRequest mirrors the Linkliste API request model.
type crawlRequest struct {
	Category     string              `json:"category"`
	Locale       string              `json:"locale,omitempty"`
	Filters      map[string][]string `json:"filters,omitempty"`
	DelaySeconds *float64            `json:"delay_seconds,omitempty"`
	MaxPages     int                 `json:"max_pages,omitempty"`
	Title        string              `json:"title"`
	Period       string              `json:"period"`
	Outdir       string              `json:"outdir,omitempty"`
}

// crawlResponse mirrors the Linkliste crawl API response.
type crawlResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func main() {
	apiURL := os.Getenv("LINKLISTE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("LINKLISTE_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "LINKLISTE_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"linkliste",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	listCategoriesTool := mcp.NewTool("list_categories",
		mcp.WithDescription("List the searchable document categories of the PortaFontium archive portal (registers, chronicles, charters, photos, census records, maps, periodicals, official books)."),
	)
	s.AddTool(listCategoriesTool, handleGet(apiURL, apiKey, func(mcp.CallToolRequest) (string, error) {
		return "/api/v1/categories", nil
	}))

	discoverFormTool := mcp.NewTool("discover_form",
		mcp.WithDescription("Discover the search-filter form of a category: field names, kinds, and allowed option values. Use this before start_crawl to learn which filters exist."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category key, e.g. 'register' or 'periodical'"),
		),
		mcp.WithString("locale",
			mcp.Description("Label language: 'de' (default) or 'cs'"),
			mcp.Enum("de", "cs"),
		),
	)
	s.AddTool(discoverFormTool, handleGet(apiURL, apiKey, func(request mcp.CallToolRequest) (string, error) {
		category, err := request.RequireString("category")
		if err != nil {
			return "", fmt.Errorf("category is required")
		}
		return "/api/v1/schema/" + category + "?locale=" + request.GetString("locale", "de"), nil
	}))

	startCrawlTool := mcp.NewTool("start_crawl",
		mcp.WithDescription("Start a link crawl of one category with optional filters. Returns a job id; poll with crawl_status. The finished job exports a Linkliste JSON file of record links."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category key, e.g. 'register'"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title component of the export file name"),
		),
		mcp.WithString("period",
			mcp.Required(),
			mcp.Description("Period component of the export file name"),
		),
		mcp.WithString("locale",
			mcp.Description("Portal UI language: 'de' (default) or 'cs'"),
			mcp.Enum("de", "cs"),
		),
		mcp.WithString("filters",
			mcp.Description("JSON object mapping filter field names to value arrays, e.g. {\"archiv\":[\"2\"]}"),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Maximum result pages to fetch (0 = unbounded)"),
		),
	)
	s.AddTool(startCrawlTool, handleStartCrawl(apiURL, apiKey))

	crawlStatusTool := mcp.NewTool("crawl_status",
		mcp.WithDescription("Get the status and collected records of a crawl job."),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job id returned by start_crawl"),
		),
	)
	s.AddTool(crawlStatusTool, handleGet(apiURL, apiKey, func(request mcp.CallToolRequest) (string, error) {
		id, err := request.RequireString("job_id")
		if err != nil {
			return "", fmt.Errorf("job_id is required")
		}
		return "/api/v1/crawl/" + id, nil
	}))

	cancelCrawlTool := mcp.NewTool("cancel_crawl",
		mcp.WithDescription("Request cooperative cancellation of a running crawl job. Records collected so far are still exported."),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job id returned by start_crawl"),
		),
	)
	s.AddTool(cancelCrawlTool, handleCancelCrawl(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// handleGet builds a tool handler that GETs an API path and relays the body.
func handleGet(apiURL, apiKey string, path func(mcp.CallToolRequest) (string, error)) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := path(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+p, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		req.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func handleStartCrawl(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := request.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}
		title, err := request.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}
		period, err := request.RequireString("period")
		if err != nil {
			return mcp.NewToolResultError("period is required"), nil
		}

		reqBody := crawlRequest{
			Category: category,
			Title:    title,
			Period:   period,
			Locale:   request.GetString("locale", ""),
			MaxPages: request.GetInt("max_pages", 0),
		}
		if filtersJSON := request.GetString("filters", ""); filtersJSON != "" {
			if err := json.Unmarshal([]byte(filtersJSON), &reqBody.Filters); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("filters is not a valid JSON object: %v", err)), nil
			}
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/crawl", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var crawlResp crawlResponse
		if err := json.Unmarshal(respBody, &crawlResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if crawlResp.ID == "" {
			return mcp.NewToolResultError("crawl not accepted: " + string(respBody)), nil
		}
		return mcp.NewToolResultText(string(respBody)), nil
	}
}

func handleCancelCrawl(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("job_id")
		if err != nil {
			return mcp.NewToolResultError("job_id is required"), nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/crawl/"+id+"/cancel", nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		req.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}
