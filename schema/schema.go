// Package schema discovers the exposed-filter form of a portal search
// category at crawl time. The portal generates the field set server-side, so
// nothing about the form is hard-coded beyond the markup conventions of
// Drupal views.
package schema

import (
	"fmt"
	"strings"

	"github.com/archiv-tools/linkliste/locale"
)

// Field kinds.
const (
	KindText     = "text"
	KindSelect   = "select"
	KindRadio    = "radio"
	KindCheckbox = "checkbox"
)

// Option is one selectable {value, label} pair of a select, radio, or
// checkbox field, in the site's declared order.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`

	// Key is the locale-stable canonical form of Label.
	Key string `json:"key"`
}

// Field describes one exposed-filter form field.
type Field struct {
	// Name is the query-parameter name, unique within a schema.
	Name string `json:"name"`

	// Kind is one of text, select, radio, checkbox.
	Kind string `json:"kind"`

	// Label is the display label, localized for the session locale.
	Label string `json:"label"`

	// Key is the locale-stable canonical form of Label, used to match the
	// same field concept across the portal's German and Czech renderings.
	Key string `json:"key"`

	// Options is empty for text fields.
	Options []Option `json:"options,omitempty"`

	// Default is the preselected value for single-choice fields.
	Default string `json:"default,omitempty"`

	// DefaultsMulti holds the pre-checked values of a checkbox group.
	DefaultsMulti []string `json:"defaults_multi,omitempty"`
}

// HasOption reports whether value is one of the field's declared options.
func (f *Field) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// ViewInfo carries the Drupal identifiers needed to replay the category's
// result view through the /views/ajax fragment endpoint.
type ViewInfo struct {
	ViewName      string `json:"view_name"`
	ViewDisplayID string `json:"view_display_id"`
	ViewDomID     string `json:"view_dom_id"`
	Theme         string `json:"theme,omitempty"`
	ThemeToken    string `json:"theme_token,omitempty"`
}

// Complete reports whether the info suffices for an AJAX replay.
func (v ViewInfo) Complete() bool {
	return v.ViewName != "" && v.ViewDisplayID != "" && v.ViewDomID != ""
}

// Schema is the discovered form of one category in one locale.
type Schema struct {
	Category string    `json:"category"`
	Locale   string    `json:"locale"`
	Action   string    `json:"action"`
	ViewInfo ViewInfo  `json:"view_info"`
	Fields   []Field   `json:"fields"`
}

// FieldByName returns the field with the given query-parameter name.
func (s *Schema) FieldByName(name string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Validate checks a filter selection against the schema: every referenced
// field must exist, and choice fields only accept declared option values.
// Runs before any result page is fetched.
func (s *Schema) Validate(filters map[string][]string) error {
	for name, values := range filters {
		field, ok := s.FieldByName(name)
		if !ok {
			return fmt.Errorf("schema: unknown filter field %q", name)
		}
		switch field.Kind {
		case KindSelect, KindRadio, KindCheckbox:
			for _, v := range values {
				if v == "" {
					continue
				}
				if !field.HasOption(v) {
					return fmt.Errorf("schema: field %q has no option %q", name, v)
				}
			}
		default:
			if len(values) > 1 {
				return fmt.Errorf("schema: text field %q accepts a single value", name)
			}
		}
	}
	return nil
}

// ExposedItems flattens a filter selection into ordered key/value pairs,
// following schema field order and falling back to field defaults for
// fields the selection does not mention. This mirrors what the browser
// submits when the user presses the form's search button.
func (s *Schema) ExposedItems(filters map[string][]string) [][2]string {
	var items [][2]string
	for _, f := range s.Fields {
		values, chosen := filters[f.Name]
		if !chosen {
			switch {
			case f.Kind == KindCheckbox && len(f.DefaultsMulti) > 0:
				values = f.DefaultsMulti
			case f.Default != "":
				values = []string{f.Default}
			default:
				continue
			}
		}
		for _, v := range values {
			items = append(items, [2]string{f.Name, v})
		}
	}
	return items
}

// PickDefault chooses the option a browser would submit when the user
// touches nothing: an empty value, then "All", then a label reading
// Alle/Vše/All, then the first option.
func PickDefault(opts []Option) string {
	if len(opts) == 0 {
		return ""
	}
	for _, o := range opts {
		if o.Value == "" {
			return o.Value
		}
	}
	for _, o := range opts {
		if strings.EqualFold(o.Value, "all") {
			return o.Value
		}
	}
	for _, o := range opts {
		low := strings.ToLower(locale.CleanLabel(o.Label))
		if strings.Contains(low, "alle") || strings.Contains(low, "vše") || low == "all" {
			return o.Value
		}
	}
	return opts[0].Value
}
