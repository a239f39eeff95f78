package schema

import (
	"testing"
)

const viewInfoPage = `<html><body>
<div class="view view-searching-chronicle view-id-searching_chronicle view-display-id-page view-dom-id-0123456789abcdef0123456789abcdef">
  <form action="/searching/chronicle" method="get" id="views-exposed-form-searching-chronicle-page" accept-charset="UTF-8"></form>
</div>
<script>
jQuery.extend(Drupal.settings, {"basePath":"/","ajaxPageState":{"theme":"portafontium","theme_token":"tok-abc123"}});
var more = {"theme":"portafontium","theme_token":"tok-abc123"};
</script>
</body></html>`

func TestParseViewInfo(t *testing.T) {
	info := ParseViewInfo(viewInfoPage)

	if info.ViewName != "searching_chronicle" {
		t.Errorf("ViewName = %q, want searching_chronicle", info.ViewName)
	}
	if info.ViewDisplayID != "page" {
		t.Errorf("ViewDisplayID = %q, want page", info.ViewDisplayID)
	}
	if info.ViewDomID != "0123456789abcdef0123456789abcdef" {
		t.Errorf("ViewDomID = %q", info.ViewDomID)
	}
	if info.Theme != "portafontium" {
		t.Errorf("Theme = %q, want portafontium", info.Theme)
	}
	if info.ThemeToken != "tok-abc123" {
		t.Errorf("ThemeToken = %q, want tok-abc123", info.ThemeToken)
	}
	if !info.Complete() {
		t.Error("parsed info must be complete")
	}
}

func TestParseViewInfo_FormIDFallback(t *testing.T) {
	// No view-id classes anywhere, just the exposed form. The form id
	// encodes the display id with dashes where the settings use underscores.
	page := `<form id="views-exposed-form-searching_register-page-1" action="/searching/register"></form>`
	info := ParseViewInfo(page)

	if info.ViewName != "searching_register" {
		t.Errorf("ViewName = %q, want searching_register", info.ViewName)
	}
	if info.ViewDisplayID != "page_1" {
		t.Errorf("ViewDisplayID = %q, want page_1", info.ViewDisplayID)
	}
	if info.Complete() {
		t.Error("info without a dom id must not be complete")
	}
}

func TestParseViewInfo_Missing(t *testing.T) {
	info := ParseViewInfo("<html><body><p>maintenance page</p></body></html>")
	if info != (ViewInfo{}) {
		t.Errorf("expected zero value, got %+v", info)
	}
	if info.Complete() {
		t.Error("empty info must not be complete")
	}
}
