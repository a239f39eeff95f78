package schema

import (
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Category: "chronicle",
		Locale:   "de",
		Action:   "https://www.portafontium.eu/searching/chronicle",
		Fields: []Field{
			{Name: "place", Kind: KindText, Label: "Ort"},
			{Name: "type", Kind: KindSelect, Label: "Typ", Options: []Option{
				{Value: "All", Label: "- Alle -"},
				{Value: "1", Label: "Gemeindechronik"},
				{Value: "2", Label: "Schulchronik"},
			}, Default: "All"},
			{Name: "view", Kind: KindRadio, Label: "Ansicht", Options: []Option{
				{Value: "list", Label: "In Liste"},
				{Value: "map", Label: "Auf Karte"},
			}, Default: "list"},
			{Name: "images", Kind: KindCheckbox, Label: "Nur mit Bildern", Options: []Option{
				{Value: "1", Label: "Nur mit Bildern"},
			}},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	s := testSchema()
	filters := map[string][]string{
		"place": {"Pilsen"},
		"type":  {"1"},
	}
	if err := s.Validate(filters); err != nil {
		t.Errorf("valid selection rejected: %v", err)
	}
}

func TestValidate_UnknownField(t *testing.T) {
	s := testSchema()
	if err := s.Validate(map[string][]string{"bogus": {"x"}}); err == nil {
		t.Error("unknown field must be rejected")
	}
}

func TestValidate_UndeclaredOption(t *testing.T) {
	s := testSchema()
	if err := s.Validate(map[string][]string{"type": {"99"}}); err == nil {
		t.Error("undeclared select option must be rejected")
	}
	if err := s.Validate(map[string][]string{"view": {"globe"}}); err == nil {
		t.Error("undeclared radio option must be rejected")
	}
}

func TestValidate_EmptyChoiceValueAllowed(t *testing.T) {
	s := testSchema()
	if err := s.Validate(map[string][]string{"type": {""}}); err != nil {
		t.Errorf("empty choice value must pass: %v", err)
	}
}

func TestValidate_TextSingleValue(t *testing.T) {
	s := testSchema()
	if err := s.Validate(map[string][]string{"place": {"a", "b"}}); err == nil {
		t.Error("text field with two values must be rejected")
	}
}

func TestExposedItems_DefaultsAndOrder(t *testing.T) {
	s := testSchema()
	items := s.ExposedItems(map[string][]string{"place": {"Pilsen"}})

	want := [][2]string{
		{"place", "Pilsen"},
		{"type", "All"},
		{"view", "list"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items %v, want %d", len(items), items, len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item[%d] = %v, want %v", i, items[i], want[i])
		}
	}
}

func TestExposedItems_ExplicitOverridesDefault(t *testing.T) {
	s := testSchema()
	items := s.ExposedItems(map[string][]string{"type": {"2"}})
	for _, kv := range items {
		if kv[0] == "type" && kv[1] != "2" {
			t.Errorf("type = %q, want explicit value 2", kv[1])
		}
	}
}

func TestExposedItems_CheckboxMultiValues(t *testing.T) {
	s := testSchema()
	items := s.ExposedItems(map[string][]string{"images": {"1"}})
	found := false
	for _, kv := range items {
		if kv[0] == "images" && kv[1] == "1" {
			found = true
		}
	}
	if !found {
		t.Errorf("checkbox value missing from %v", items)
	}
}

func TestExposedItems_EmptySelection(t *testing.T) {
	s := testSchema()
	items := s.ExposedItems(nil)
	// Fields with defaults still submit; the defaultless checkbox does not.
	if len(items) != 2 {
		t.Fatalf("empty selection produced %v, want the two defaults", items)
	}
}

func TestPickDefault(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"empty value wins", []Option{{Value: "1", Label: "x"}, {Value: "", Label: "y"}}, ""},
		{"All value", []Option{{Value: "1", Label: "x"}, {Value: "All", Label: "y"}}, "All"},
		{"Alle label", []Option{{Value: "1", Label: "x"}, {Value: "0", Label: "- Alle -"}}, "0"},
		{"Vše label", []Option{{Value: "1", Label: "x"}, {Value: "0", Label: "- Vše -"}}, "0"},
		{"first as fallback", []Option{{Value: "a", Label: "x"}, {Value: "b", Label: "y"}}, "a"},
		{"no options", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickDefault(tt.opts); got != tt.want {
				t.Errorf("PickDefault = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViewInfo_Complete(t *testing.T) {
	full := ViewInfo{ViewName: "a", ViewDisplayID: "b", ViewDomID: "c"}
	if !full.Complete() {
		t.Error("full view info must be complete")
	}
	if (ViewInfo{ViewName: "a"}).Complete() {
		t.Error("partial view info must not be complete")
	}
}
