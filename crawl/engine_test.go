package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/archiv-tools/linkliste/config"
	"github.com/archiv-tools/linkliste/fetch"
	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/schema"
	"github.com/archiv-tools/linkliste/site"
)

func testClient(t *testing.T) *fetch.Client {
	t.Helper()
	return fetch.New(config.SiteConfig{
		UserAgent: "linkliste-test/1.0",
		Timeout:   5 * time.Second,
	})
}

func testCategory(t *testing.T, key string) site.Category {
	t.Helper()
	cat, ok := site.ByKey(key)
	if !ok {
		t.Fatalf("category %q missing", key)
	}
	return cat
}

func completeViewInfo() schema.ViewInfo {
	return schema.ViewInfo{
		ViewName:      "searching_register",
		ViewDisplayID: "page",
		ViewDomID:     "0123456789abcdef0123456789abcdef",
	}
}

// resultPage renders n scan links with ids starting at first.
func resultPage(first, n int) string {
	var b strings.Builder
	b.WriteString(`<div class="view-content"><table class="views-table">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<tr><td><a href="/iipimage/%d/soap-pn?language=de">Matrik %d</a></td></tr>`, first+i, first+i)
	}
	b.WriteString(`</table></div>`)
	return b.String()
}

const emptyPage = `<div class="view-content"><div class="view-empty">Keine Ergebnisse</div></div>`

func registerSession(srvURL string, maxPages int, delay time.Duration) *Session {
	cat, _ := site.ByKey("register")
	return &Session{
		Category: cat,
		Locale:   "de",
		Schema: &schema.Schema{
			Category: "register",
			Locale:   "de",
			Action:   srvURL + "/searching/register",
			ViewInfo: completeViewInfo(),
		},
		Delay:    delay,
		MaxPages: maxPages,
	}
}

func TestEngineRun_CompletesOnEmptyStreak(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`[]`))
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 3 {
			w.Write([]byte(resultPage(100+page*5, 5)))
			return
		}
		w.Write([]byte(emptyPage))
	}))
	defer srv.Close()

	engine := NewEngine(testClient(t), srv.URL, config.CrawlerConfig{EmptyStreak: 2, NoNewStreak: 2}, nil)
	res := engine.Run(context.Background(), registerSession(srv.URL, 0, 0))

	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q (err: %v)", res.Status, models.StatusCompleted, res.Err)
	}
	if len(res.Links) != 15 {
		t.Fatalf("got %d links, want 15", len(res.Links))
	}
	for i, l := range res.Links {
		want := fmt.Sprintf("%s/iipimage/%d", srv.URL, 100+i)
		if l.URL != want {
			t.Errorf("link[%d] = %q, want %q", i, l.URL, want)
		}
	}
	// Three result pages plus the two empty pages ending the streak.
	if res.Pages != 5 {
		t.Errorf("pages = %d, want 5", res.Pages)
	}
}

func TestEngineRun_MaxPagesCapsFetches(t *testing.T) {
	var gets int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&gets, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Write([]byte(resultPage(page*5, 5)))
	}))
	defer srv.Close()

	engine := NewEngine(testClient(t), srv.URL, config.CrawlerConfig{EmptyStreak: 2, NoNewStreak: 2}, nil)
	res := engine.Run(context.Background(), registerSession(srv.URL, 2, 0))

	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q", res.Status, models.StatusCompleted)
	}
	if len(res.Links) != 10 {
		t.Errorf("got %d links, want 10", len(res.Links))
	}
	if res.Pages != 2 {
		t.Errorf("pages = %d, want 2", res.Pages)
	}
	if n := atomic.LoadInt32(&gets); n != 2 {
		t.Errorf("server saw %d fetches, want 2", n)
	}
}

func TestEngineRun_AjaxFallback(t *testing.T) {
	var ajaxForms []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == site.AjaxPath {
			r.ParseForm()
			ajaxForms = append(ajaxForms, map[string]string{
				"view_name":       r.PostFormValue("view_name"),
				"view_display_id": r.PostFormValue("view_display_id"),
				"view_dom_id":     r.PostFormValue("view_dom_id"),
				"page":            r.PostFormValue("page"),
				"requested_with":  r.Header.Get("X-Requested-With"),
			})
			markup := strings.ReplaceAll(resultPage(200, 4), `"`, `\"`)
			fmt.Fprintf(w, `[{"command":"insert","data":"%s"}]`, markup)
			return
		}
		// The plain pager never advances on this view.
		w.Write([]byte(emptyPage))
	}))
	defer srv.Close()

	engine := NewEngine(testClient(t), srv.URL, config.CrawlerConfig{EmptyStreak: 2, NoNewStreak: 2}, nil)
	res := engine.Run(context.Background(), registerSession(srv.URL, 0, 0))

	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q (err: %v)", res.Status, models.StatusCompleted, res.Err)
	}
	if len(res.Links) != 4 {
		t.Fatalf("got %d links, want the 4 ajax-only items", len(res.Links))
	}
	if len(ajaxForms) == 0 {
		t.Fatal("ajax endpoint never called")
	}
	first := ajaxForms[0]
	if first["view_name"] != "searching_register" || first["view_display_id"] != "page" {
		t.Errorf("ajax form carried view %s/%s", first["view_name"], first["view_display_id"])
	}
	if first["view_dom_id"] != "0123456789abcdef0123456789abcdef" {
		t.Errorf("ajax form dom id = %q", first["view_dom_id"])
	}
	if first["page"] != "0" {
		t.Errorf("ajax form page = %q, want 0", first["page"])
	}
	if first["requested_with"] != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", first["requested_with"])
	}
}

func TestEngineRun_CancellationKeepsPartialResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`[]`))
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		// Endless supply of fresh links; only cancellation ends this crawl.
		w.Write([]byte(resultPage(page*5, 5)))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progress := make(chan models.Progress, 16)
	go func() {
		for ev := range progress {
			if ev.PageIndex >= 1 {
				cancel()
				return
			}
		}
	}()

	engine := NewEngine(testClient(t), srv.URL, config.CrawlerConfig{EmptyStreak: 2, NoNewStreak: 2}, progress)
	res := engine.Run(ctx, registerSession(srv.URL, 200, 50*time.Millisecond))

	if res.Status != models.StatusStopped {
		t.Fatalf("status = %q, want %q", res.Status, models.StatusStopped)
	}
	if len(res.Links) < 10 {
		t.Errorf("partial results lost: got %d links, want at least the first two pages", len(res.Links))
	}
	if len(res.Links)%5 != 0 {
		t.Errorf("got %d links, want whole pages only", len(res.Links))
	}
}

func TestEngineRun_FailsWhenBothPathsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := registerSession(srv.URL, 0, 0)
	// Incomplete identifiers plus a failing landing page: GET-only mode,
	// and the first page fetch fails for good.
	s.Schema.ViewInfo = schema.ViewInfo{}

	engine := NewEngine(testClient(t), srv.URL, config.CrawlerConfig{EmptyStreak: 2, NoNewStreak: 2}, nil)
	res := engine.Run(context.Background(), s)

	if res.Status != models.StatusFailed {
		t.Fatalf("status = %q, want %q", res.Status, models.StatusFailed)
	}
	if res.Err == nil {
		t.Error("failed run must carry its error")
	}
	if len(res.Links) != 0 {
		t.Errorf("got %d links from an all-failing server", len(res.Links))
	}
}

func TestNewSession_ValidatesFilters(t *testing.T) {
	cat := testCategory(t, "register")
	sch := &schema.Schema{
		Category: "register",
		Locale:   "de",
		Action:   "https://www.portafontium.eu/searching/register",
		Fields: []schema.Field{
			{Name: "place", Kind: schema.KindText, Label: "Ort"},
			{Name: "type", Kind: schema.KindSelect, Label: "Typ", Options: []schema.Option{
				{Value: "All", Label: "- Alle -"},
				{Value: "1", Label: "Matrik"},
			}, Default: "All"},
		},
	}

	if _, err := NewSession(cat, "de", sch, map[string][]string{"bogus": {"x"}}, 0, 0, "T", "P", "out"); err == nil {
		t.Error("unknown filter field must be rejected")
	}
	if _, err := NewSession(cat, "de", sch, map[string][]string{"type": {"99"}}, 0, 0, "T", "P", "out"); err == nil {
		t.Error("undeclared option must be rejected")
	}

	s, err := NewSession(cat, "de", sch, map[string][]string{"place": {"Pilsen"}}, -time.Second, -3, "T", "P", "out")
	if err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}
	if s.Delay != 0 || s.MaxPages != 0 {
		t.Errorf("negative delay/max pages not clamped: %v %d", s.Delay, s.MaxPages)
	}
	want := [][2]string{{"place", "Pilsen"}, {"type", "All"}}
	if len(s.Exposed) != len(want) {
		t.Fatalf("exposed = %v, want %v", s.Exposed, want)
	}
	for i := range want {
		if s.Exposed[i] != want[i] {
			t.Errorf("exposed[%d] = %v, want %v", i, s.Exposed[i], want[i])
		}
	}
}
