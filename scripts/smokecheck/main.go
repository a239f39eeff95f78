// Command smokecheck runs a capped crawl against every portal category
// through a running linkliste API and reports whether each one still
// discovers a form, paginates, and exports records. Run it after portal
// layout changes to see which categories broke.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL   = flag.String("api-url", "http://localhost:8080", "linkliste API base URL")
	apiKey   = flag.String("api-key", "", "API key for authenticated requests")
	maxPages = flag.Int("max-pages", 2, "Result pages to fetch per category")
	loc      = flag.String("locale", "de", "Portal UI language: de or cs")
	output   = flag.String("output", "smokecheck-results.json", "JSON output file path")
	timeout  = flag.Duration("timeout", 5*time.Minute, "Per-category wait limit")
)

// --- Request / Response types (mirrors models package) ---

type crawlRequest struct {
	Category string `json:"category"`
	Locale   string `json:"locale"`
	MaxPages int    `json:"max_pages"`
	Title    string `json:"title"`
	Period   string `json:"period"`
	Outdir   string `json:"outdir"`
}

type crawlResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type crawlStatus struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PageIndex  int    `json:"page_index"`
	ItemsSoFar int    `json:"items_so_far"`
	Export     *struct {
		Filename string `json:"filename"`
		Records  []struct {
			URL string `json:"url"`
		} `json:"records"`
	} `json:"export,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type categoryList struct {
	Categories []struct {
		Key string `json:"key"`
	} `json:"categories"`
}

// --- Report types ---

type categoryResult struct {
	Category  string `json:"category"`
	Status    string `json:"status"`
	Records   int    `json:"records"`
	Pages     int    `json:"pages"`
	Filename  string `json:"filename,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

type report struct {
	Timestamp string           `json:"timestamp"`
	APIURL    string           `json:"api_url"`
	Locale    string           `json:"locale"`
	MaxPages  int              `json:"max_pages"`
	Results   []categoryResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== linkliste category smoke check ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Locale:    %s\n", *loc)
	fmt.Printf("Max pages: %d\n", *maxPages)
	fmt.Println()

	categories, err := fetchCategories()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure linkliste is running\n")
		os.Exit(1)
	}

	rep := report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		APIURL:    *apiURL,
		Locale:    *loc,
		MaxPages:  *maxPages,
	}

	failures := 0
	for _, cat := range categories {
		fmt.Printf("Checking %-12s ... ", cat)
		cr := checkCategory(cat)
		if cr.Status == "completed" && cr.Records > 0 {
			fmt.Printf("OK  %d records in %dms\n", cr.Records, cr.ElapsedMs)
		} else if cr.Status == "completed" {
			fmt.Printf("EMPTY (no records; maybe a narrow default filter)\n")
		} else {
			fmt.Printf("FAILED: %s\n", cr.Error)
			failures++
		}
		rep.Results = append(rep.Results, cr)
	}

	fmt.Println()
	printTable(rep.Results)

	if err := writeJSON(*output, rep); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)

	if failures > 0 {
		os.Exit(1)
	}
}

func fetchCategories() ([]string, error) {
	body, err := apiGet("/api/v1/categories")
	if err != nil {
		return nil, err
	}
	var list categoryList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(list.Categories))
	for _, c := range list.Categories {
		keys = append(keys, c.Key)
	}
	return keys, nil
}

func checkCategory(category string) categoryResult {
	cr := categoryResult{Category: category, Status: "failed"}
	start := time.Now()

	reqBody := crawlRequest{
		Category: category,
		Locale:   *loc,
		MaxPages: *maxPages,
		Title:    "Smokecheck-" + category,
		Period:   time.Now().Format("2006-01-02"),
		Outdir:   "smokecheck",
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		cr.Error = fmt.Sprintf("marshal error: %v", err)
		return cr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/crawl", bytes.NewReader(bodyBytes))
	if err != nil {
		cr.Error = fmt.Sprintf("request error: %v", err)
		return cr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		cr.Error = fmt.Sprintf("request failed: %v", err)
		return cr
	}
	defer resp.Body.Close()

	var accepted crawlResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		cr.Error = fmt.Sprintf("decode error: %v", err)
		return cr
	}
	if accepted.ID == "" {
		cr.Error = fmt.Sprintf("crawl not accepted (HTTP %d)", resp.StatusCode)
		return cr
	}

	status, err := waitForJob(accepted.ID, start)
	if err != nil {
		cr.Error = err.Error()
		return cr
	}

	cr.Status = status.Status
	cr.Pages = status.PageIndex + 1
	cr.ElapsedMs = time.Since(start).Milliseconds()
	if status.Export != nil {
		cr.Records = len(status.Export.Records)
		cr.Filename = status.Export.Filename
	}
	if status.Error != nil {
		cr.Error = status.Error.Message
	}
	return cr
}

func waitForJob(id string, start time.Time) (*crawlStatus, error) {
	for time.Since(start) < *timeout {
		body, err := apiGet("/api/v1/crawl/" + id)
		if err != nil {
			return nil, fmt.Errorf("status poll failed: %w", err)
		}
		var status crawlStatus
		if err := json.Unmarshal(body, &status); err != nil {
			return nil, fmt.Errorf("status decode failed: %w", err)
		}
		if status.Status != "processing" {
			return &status, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("job %s still processing after %s", id, *timeout)
}

func apiGet(path string) ([]byte, error) {
	req, err := http.NewRequest("GET", *apiURL+path, nil)
	if err != nil {
		return nil, err
	}
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	return buf.Bytes(), nil
}

func printTable(results []categoryResult) {
	fmt.Println(strings.Repeat("─", 70))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Category\tStatus\tRecords\tPages\tElapsed\n")
	fmt.Fprintf(w, "────────\t──────\t───────\t─────\t───────\n")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%dms\n", r.Category, r.Status, r.Records, r.Pages, r.ElapsedMs)
	}
	w.Flush()
	fmt.Println(strings.Repeat("─", 70))
}

func writeJSON(path string, rep report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
