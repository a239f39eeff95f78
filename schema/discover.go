package schema

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/archiv-tools/linkliste/fetch"
	"github.com/archiv-tools/linkliste/locale"
	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/site"
)

// textInputTypes are the input types treated as free-text fields.
var textInputTypes = map[string]bool{
	"text": true, "search": true, "number": true, "tel": true, "email": true, "url": true,
}

// Discover fetches a category's search page and parses its exposed-filter
// form into a Schema. It fails with a FETCH_FAILED error on network/HTTP
// trouble and with SCHEMA_PARSE_FAILED when the expected form markup is
// absent (site redesign).
func Discover(ctx context.Context, client *fetch.Client, baseURL string, cat site.Category, loc locale.Locale) (*Schema, error) {
	pageURL := baseURL + cat.SearchPath + "?language=" + string(loc)

	html, err := client.Get(ctx, pageURL)
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeFetch, "search page not reachable", err)
	}

	s, err := Parse(html, baseURL, cat, loc)
	if err != nil {
		return nil, err
	}

	slog.Debug("form schema discovered",
		"category", cat.Key,
		"locale", loc,
		"fields", len(s.Fields),
		"viewName", s.ViewInfo.ViewName,
	)
	return s, nil
}

// Parse builds a Schema from an already-fetched search page. Split out of
// Discover so fixtures can exercise the parser without a network round trip.
func Parse(html, baseURL string, cat site.Category, loc locale.Locale) (*Schema, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeSchemaParse, "search page is not parseable HTML", err)
	}

	form := doc.Find(`form[id^="views-exposed-form-"]`).First()
	if form.Length() == 0 {
		return nil, models.NewCrawlError(models.ErrCodeSchemaParse, "no views exposed form on search page", nil)
	}

	s := &Schema{
		Category: cat.Key,
		Locale:   string(loc),
		Action:   resolveAction(baseURL, cat.SearchPath, form.AttrOr("action", "")),
		ViewInfo: ParseViewInfo(html),
	}

	p := &formParser{form: form, loc: loc, seen: make(map[string]bool)}

	// Wrapper pass: views-exposed-widget blocks first, then stray form-item
	// blocks outside any widget (the map category hides fields there).
	wrappers := form.Find(".views-exposed-widget")
	form.Find(".form-item").Each(func(_ int, item *goquery.Selection) {
		if item.ParentsFiltered(".views-exposed-widget").Length() == 0 {
			wrappers = wrappers.AddSelection(item)
		}
	})
	if wrappers.Length() == 0 {
		wrappers = form
	}
	wrappers.Each(func(_ int, w *goquery.Selection) {
		p.parseWrapper(w)
	})

	// Sweep pass: any remaining named control, wherever the theme put it.
	form.Find("input[name], select[name], textarea[name]").Each(func(_ int, el *goquery.Selection) {
		p.parseStray(el)
	})

	s.Fields = p.fields
	if loc == locale.German {
		for i := range s.Fields {
			localizeFieldDE(&s.Fields[i])
		}
	}
	// Canonical keys are computed after localization so DE and CZ sessions
	// agree on them.
	for i := range s.Fields {
		f := &s.Fields[i]
		f.Key = locale.Normalize(f.Label, loc)
		for j := range f.Options {
			f.Options[j].Key = locale.Normalize(f.Options[j].Label, loc)
		}
	}

	return s, nil
}

// resolveAction resolves the form's action attribute against the portal base.
func resolveAction(baseURL, fallbackPath, action string) string {
	if action == "" {
		action = fallbackPath
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + action
	}
	resolved, err := base.Parse(action)
	if err != nil {
		return baseURL + action
	}
	return resolved.String()
}

// formParser accumulates fields while walking the form, deduplicating by
// control name across both passes.
type formParser struct {
	form   *goquery.Selection
	loc    locale.Locale
	seen   map[string]bool
	fields []Field
}

func (p *formParser) parseWrapper(w *goquery.Selection) {
	// Submit blocks carry no filter fields.
	if w.Find("input[type=submit], button[type=submit]").Length() > 0 {
		return
	}

	wLabel := wrapperLabel(w)

	// A wrapper holding several distinct controls must not donate its label
	// to all of them (the vicinity field would inherit the place label).
	names := make(map[string]bool)
	w.Find("input[name], select[name], textarea[name]").Each(func(_ int, el *goquery.Selection) {
		if !ignoredControl(el) {
			if name := el.AttrOr("name", ""); name != "" {
				names[name] = true
			}
		}
	})
	multi := len(names) > 1

	radios := make(map[string][]*goquery.Selection)
	checks := make(map[string][]*goquery.Selection)
	var radioOrder, checkOrder []string

	w.Find("input[name]").Each(func(_ int, inp *goquery.Selection) {
		if ignoredControl(inp) {
			return
		}
		name := inp.AttrOr("name", "")
		typ := strings.ToLower(inp.AttrOr("type", ""))
		switch {
		case typ == "radio":
			if _, ok := radios[name]; !ok {
				radioOrder = append(radioOrder, name)
			}
			radios[name] = append(radios[name], inp)
		case typ == "checkbox":
			if _, ok := checks[name]; !ok {
				checkOrder = append(checkOrder, name)
			}
			checks[name] = append(checks[name], inp)
		case textInputTypes[typ] || typ == "":
			label := p.elementLabel(inp)
			if label == "" && !multi {
				label = wLabel
			}
			p.addText(inp, label)
		}
	})

	for _, name := range radioOrder {
		p.addRadioGroup(name, wLabel, radios[name])
	}
	for _, name := range checkOrder {
		p.addCheckboxGroup(name, wLabel, checks[name])
	}

	w.Find("select[name]").Each(func(_ int, sel *goquery.Selection) {
		if ignoredControl(sel) {
			return
		}
		label := p.elementLabel(sel)
		if label == "" && !multi {
			label = wLabel
		}
		p.addSelect(sel, label)
	})

	w.Find("textarea[name]").Each(func(_ int, ta *goquery.Selection) {
		if ignoredControl(ta) {
			return
		}
		label := p.elementLabel(ta)
		if label == "" && !multi {
			label = wLabel
		}
		p.addText(ta, label)
	})
}

// parseStray handles named controls the wrapper pass never reached.
func (p *formParser) parseStray(el *goquery.Selection) {
	if ignoredControl(el) {
		return
	}
	name := el.AttrOr("name", "")
	if name == "" || p.seen[name] {
		return
	}

	switch goquery.NodeName(el) {
	case "select":
		p.addSelect(el, p.elementLabel(el))
	case "textarea":
		p.addText(el, p.elementLabel(el))
	case "input":
		typ := strings.ToLower(el.AttrOr("type", ""))
		switch {
		case typ == "radio":
			p.addRadioGroup(name, p.elementLabel(el), p.namedInputs("radio", name))
		case typ == "checkbox":
			p.addCheckboxGroup(name, p.elementLabel(el), p.namedInputs("checkbox", name))
		case textInputTypes[typ] || typ == "":
			p.addText(el, p.elementLabel(el))
		}
	}
}

// namedInputs collects the whole radio/checkbox group for a name.
func (p *formParser) namedInputs(typ, name string) []*goquery.Selection {
	var group []*goquery.Selection
	p.form.Find("input[type=" + typ + "]").Each(func(_ int, inp *goquery.Selection) {
		if inp.AttrOr("name", "") == name {
			group = append(group, inp)
		}
	})
	return group
}

func (p *formParser) addRadioGroup(name, groupLabel string, inputs []*goquery.Selection) {
	if name == "" || p.seen[name] || len(inputs) == 0 {
		return
	}
	var opts []Option
	var def string
	hasDefault := false
	for _, inp := range inputs {
		val := inp.AttrOr("value", "")
		label := p.elementLabel(inp)
		if label == "" {
			label = val
		}
		opts = append(opts, Option{Value: val, Label: locale.CleanLabel(label)})
		if _, checked := inp.Attr("checked"); checked {
			def = val
			hasDefault = true
		}
	}
	if !hasDefault {
		def = PickDefault(opts)
	}
	if groupLabel == "" {
		groupLabel = name
	}
	p.fields = append(p.fields, Field{Name: name, Kind: KindRadio, Label: groupLabel, Options: opts, Default: def})
	p.seen[name] = true
}

func (p *formParser) addCheckboxGroup(name, groupLabel string, inputs []*goquery.Selection) {
	if name == "" || p.seen[name] || len(inputs) == 0 {
		return
	}
	var opts []Option
	var defaults []string
	for _, inp := range inputs {
		val := inp.AttrOr("value", "1")
		label := p.elementLabel(inp)
		if label == "" {
			label = name
		}
		opts = append(opts, Option{Value: val, Label: locale.CleanLabel(label)})
		if _, checked := inp.Attr("checked"); checked {
			defaults = append(defaults, val)
		}
	}
	if groupLabel == "" {
		groupLabel = name
	}
	p.fields = append(p.fields, Field{Name: name, Kind: KindCheckbox, Label: groupLabel, Options: opts, DefaultsMulti: defaults})
	p.seen[name] = true
}

func (p *formParser) addSelect(sel *goquery.Selection, label string) {
	name := sel.AttrOr("name", "")
	if name == "" || p.seen[name] {
		return
	}
	var opts []Option
	var def string
	hasDefault := false
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		val := opt.AttrOr("value", "")
		opts = append(opts, Option{Value: val, Label: locale.CleanLabel(opt.Text())})
		if _, selected := opt.Attr("selected"); selected {
			def = val
			hasDefault = true
		}
	})
	if !hasDefault {
		def = PickDefault(opts)
	}
	if label == "" {
		label = name
	}
	// A select the portal ships without options degrades to free text
	// rather than failing the whole parse.
	kind := KindSelect
	if len(opts) == 0 {
		kind = KindText
	}
	p.fields = append(p.fields, Field{Name: name, Kind: kind, Label: label, Options: opts, Default: def})
	p.seen[name] = true
}

func (p *formParser) addText(el *goquery.Selection, label string) {
	name := el.AttrOr("name", "")
	if name == "" || p.seen[name] {
		return
	}
	if label == "" {
		label = name
	}
	p.fields = append(p.fields, Field{Name: name, Kind: KindText, Label: label, Default: el.AttrOr("value", "")})
	p.seen[name] = true
}

// elementLabel finds the display label for a control: a label[for=id] in the
// form wins, then the text of the control's parent node.
func (p *formParser) elementLabel(el *goquery.Selection) string {
	if id := el.AttrOr("id", ""); id != "" {
		var found string
		p.form.Find("label").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if l.AttrOr("for", "") == id {
				found = locale.CleanLabel(l.Text())
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	if parent := el.Parent(); parent.Length() > 0 {
		return locale.CleanLabel(parent.Text())
	}
	return ""
}

// wrapperLabel finds the label of a widget wrapper: a real label element,
// then a legend, then the first control's aria-label or placeholder.
func wrapperLabel(w *goquery.Selection) string {
	if l := w.Find("label").First(); l.Length() > 0 {
		if text := locale.CleanLabel(l.Text()); text != "" {
			return text
		}
	}
	if lg := w.Find("legend").First(); lg.Length() > 0 {
		if text := locale.CleanLabel(lg.Text()); text != "" {
			return text
		}
	}
	if first := w.Find("input, select, textarea").First(); first.Length() > 0 {
		if aria := first.AttrOr("aria-label", ""); aria != "" {
			return locale.CleanLabel(aria)
		}
		return locale.CleanLabel(first.AttrOr("placeholder", ""))
	}
	return ""
}

// ignoredControl filters controls that never carry filter values.
func ignoredControl(el *goquery.Selection) bool {
	if _, disabled := el.Attr("disabled"); disabled {
		return true
	}
	if goquery.NodeName(el) != "input" {
		return false
	}
	switch strings.ToLower(el.AttrOr("type", "")) {
	case "submit", "button", "image", "hidden", "reset":
		return true
	}
	return false
}

// localizeFieldDE rewrites a field's display labels into German, falling back
// to machine-name heuristics when the portal ships no usable label.
func localizeFieldDE(f *Field) {
	f.Label = locale.TranslateDE(f.Label)
	f.Label = locale.LabelFromName(f.Name, f.Label)
	for i := range f.Options {
		f.Options[i].Label = locale.TranslateOptionDE(f.Options[i].Label)
	}
}
