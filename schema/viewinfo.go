package schema

import (
	"regexp"
	"strings"
)

// The view identifiers appear as CSS classes on the rendered result view and
// inside the Drupal.settings JSON blob. Regexes over the raw page are more
// robust than DOM walks here: the theme moves these nodes around, the class
// strings do not change.
var (
	reViewName    = regexp.MustCompile(`\bview-id-([a-zA-Z0-9_]+)\b`)
	reViewDisplay = regexp.MustCompile(`\bview-display-id-([a-zA-Z0-9_]+)\b`)
	reViewDomID   = regexp.MustCompile(`\bview-dom-id-([a-f0-9]{32})\b`)
	reExposedForm = regexp.MustCompile(`id="views-exposed-form-([a-zA-Z0-9_]+)-([a-zA-Z0-9_\-]+)"`)
	reTheme       = regexp.MustCompile(`"theme"\s*:\s*"([^"]+)"`)
	reThemeToken  = regexp.MustCompile(`"theme_token"\s*:\s*"([^"]+)"`)
)

// ParseViewInfo extracts the Drupal view identifiers from a rendered search
// page. Missing pieces stay empty; callers decide whether the result is
// complete enough for an AJAX replay.
func ParseViewInfo(html string) ViewInfo {
	var info ViewInfo

	if m := reViewName.FindStringSubmatch(html); m != nil {
		info.ViewName = m[1]
	}
	if m := reViewDisplay.FindStringSubmatch(html); m != nil {
		info.ViewDisplayID = m[1]
	}
	if m := reViewDomID.FindStringSubmatch(html); m != nil {
		info.ViewDomID = m[1]
	}

	// The exposed form id encodes view name and display id with dashes.
	if m := reExposedForm.FindStringSubmatch(html); m != nil {
		if info.ViewName == "" {
			info.ViewName = m[1]
		}
		if info.ViewDisplayID == "" {
			info.ViewDisplayID = strings.ReplaceAll(m[2], "-", "_")
		}
	}

	if m := reTheme.FindStringSubmatch(html); m != nil {
		info.Theme = m[1]
	}
	if m := reThemeToken.FindStringSubmatch(html); m != nil {
		info.ThemeToken = m[1]
	}

	return info
}
