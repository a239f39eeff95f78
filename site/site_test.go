package site

import (
	"testing"
)

func TestByKey(t *testing.T) {
	for _, key := range Keys() {
		c, ok := ByKey(key)
		if !ok {
			t.Errorf("ByKey(%q) not found", key)
			continue
		}
		if c.Key != key {
			t.Errorf("ByKey(%q) returned category %q", key, c.Key)
		}
		if c.SearchPath != "/searching/"+key {
			t.Errorf("category %q has search path %q", key, c.SearchPath)
		}
		if len(c.AllowedPrefixes) == 0 {
			t.Errorf("category %q has no allowed prefixes", key)
		}
	}

	if _, ok := ByKey("nope"); ok {
		t.Error("ByKey(nope) must not resolve")
	}
}

func TestIsPeriodical(t *testing.T) {
	for _, c := range Categories {
		want := c.Key == "periodical"
		if c.IsPeriodical() != want {
			t.Errorf("category %q: IsPeriodical() = %v, want %v", c.Key, c.IsPeriodical(), want)
		}
	}
}

func TestPeriodicalKeepsCollectionLinks(t *testing.T) {
	c, _ := ByKey("periodical")
	if c.ScanOnlyIfPresent {
		t.Error("periodical must not short-circuit to scan links; collection links feed the expansion step")
	}
}

func TestStripLanguageParam(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"language only", "https://www.portafontium.eu/iipimage/30260/soap-pn?language=de", "https://www.portafontium.eu/iipimage/30260/soap-pn"},
		{"language among others", "https://www.portafontium.eu/searching/register?place=Pilsen&language=cs&page=2", "https://www.portafontium.eu/searching/register?page=2&place=Pilsen"},
		{"no query", "https://www.portafontium.eu/iipimage/30260", "https://www.portafontium.eu/iipimage/30260"},
		{"fragment dropped", "https://www.portafontium.eu/iipimage/30260#page3", "https://www.portafontium.eu/iipimage/30260"},
		{"case insensitive key", "https://www.portafontium.eu/x?Language=de", "https://www.portafontium.eu/x"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripLanguageParam(tt.in); got != tt.want {
				t.Errorf("StripLanguageParam(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripLanguageParam_Idempotent(t *testing.T) {
	in := "https://www.portafontium.eu/searching/register?place=Pilsen&language=cs"
	once := StripLanguageParam(in)
	if twice := StripLanguageParam(once); twice != once {
		t.Errorf("not idempotent: %q then %q", once, twice)
	}
}

func TestSameHost(t *testing.T) {
	base := "https://www.portafontium.eu"
	tests := []struct {
		host string
		want bool
	}{
		{"www.portafontium.eu", true},
		{"portafontium.eu", true},
		{"WWW.PORTAFONTIUM.EU", true},
		{"www.portafontium.eu:443", true},
		{"evil.example.com", false},
		{"portafontium.eu.evil.com", false},
	}
	for _, tt := range tests {
		if got := SameHost(tt.host, base); got != tt.want {
			t.Errorf("SameHost(%q, %q) = %v, want %v", tt.host, base, got, tt.want)
		}
	}
}
