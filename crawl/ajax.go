package crawl

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/archiv-tools/linkliste/fetch"
	"github.com/archiv-tools/linkliste/locale"
	"github.com/archiv-tools/linkliste/schema"
	"github.com/archiv-tools/linkliste/site"
)

// fetchAjaxFragment replays one logical result page through the Drupal
// /views/ajax endpoint and returns the result-list HTML fragment. Some pager
// states are only reachable on this code path; a plain GET serves page 0
// markup for indexes the pager never rendered a link for.
func fetchAjaxFragment(ctx context.Context, client *fetch.Client, baseURL string, info schema.ViewInfo, viewPath string, exposed [][2]string, loc locale.Locale, page int) (string, error) {
	form := url.Values{}
	form.Set("view_name", info.ViewName)
	form.Set("view_display_id", info.ViewDisplayID)
	form.Set("view_args", "")
	form.Set("view_path", viewPath)
	form.Set("view_base_path", viewPath)
	form.Set("view_dom_id", info.ViewDomID)
	form.Set("pager_element", "0")
	form.Set("page", strconv.Itoa(page))
	if info.Theme != "" {
		form.Set("ajax_page_state[theme]", info.Theme)
	}
	if info.ThemeToken != "" {
		form.Set("ajax_page_state[theme_token]", info.ThemeToken)
	}
	for _, kv := range exposed {
		form.Add(kv[0], kv[1])
	}

	headers := map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"Referer":          baseURL + "/" + viewPath + "?language=" + string(loc),
	}

	body, err := client.PostForm(ctx, baseURL+site.AjaxPath, form, headers)
	if err != nil {
		return "", err
	}

	return ajaxFragmentHTML(body), nil
}

// ajaxFragmentHTML concatenates the markup carried by a views AJAX command
// response. The endpoint answers with a JSON array of commands whose "data"
// or "markup" members hold rendered HTML; anything else passes through
// untouched so a non-JSON response still reaches the extractor.
func ajaxFragmentHTML(body string) string {
	var cmds []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &cmds); err != nil {
		return body
	}

	var parts []string
	for _, cmd := range cmds {
		for _, key := range [...]string{"data", "markup"} {
			raw, ok := cmd[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				continue
			}
			if containsMarkup(s) {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// containsMarkup reports whether s holds at least one HTML element, so
// plain-text command payloads (status messages, counts) are skipped.
func containsMarkup(s string) bool {
	tok := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}
