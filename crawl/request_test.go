package crawl

import (
	"testing"

	"github.com/archiv-tools/linkliste/locale"
)

func TestBuildPageURL(t *testing.T) {
	action := "https://www.portafontium.eu/searching/register"
	exposed := [][2]string{
		{"place", "Pilsen"},
		{"type", "All"},
	}

	got := BuildPageURL(action, exposed, locale.German, 3)
	want := "https://www.portafontium.eu/searching/register?place=Pilsen&type=All&language=de&page=3"
	if got != want {
		t.Errorf("BuildPageURL = %q, want %q", got, want)
	}
}

func TestBuildPageURL_PreservesFieldOrder(t *testing.T) {
	exposed := [][2]string{
		{"zzz", "1"},
		{"aaa", "2"},
		{"mmm", "3"},
	}
	got := BuildPageURL("https://x.example/s", exposed, locale.Czech, 0)
	want := "https://x.example/s?zzz=1&aaa=2&mmm=3&language=cs&page=0"
	if got != want {
		t.Errorf("BuildPageURL = %q, want %q", got, want)
	}
}

func TestBuildPageURL_EmptySelection(t *testing.T) {
	got := BuildPageURL("https://x.example/s", nil, locale.German, 0)
	want := "https://x.example/s?language=de&page=0"
	if got != want {
		t.Errorf("BuildPageURL = %q, want %q", got, want)
	}
}

func TestBuildPageURL_ExplicitLanguageWins(t *testing.T) {
	exposed := [][2]string{{"language", "cs"}}
	got := BuildPageURL("https://x.example/s", exposed, locale.German, 1)
	want := "https://x.example/s?language=cs&page=1"
	if got != want {
		t.Errorf("BuildPageURL = %q, want %q", got, want)
	}
}

func TestBuildPageURL_ActionWithQuery(t *testing.T) {
	got := BuildPageURL("https://x.example/s?fixed=1", nil, locale.German, 2)
	want := "https://x.example/s?fixed=1&language=de&page=2"
	if got != want {
		t.Errorf("BuildPageURL = %q, want %q", got, want)
	}
}

func TestBuildPageURL_EscapesValues(t *testing.T) {
	exposed := [][2]string{{"place", "Bad Königswart"}}
	got := BuildPageURL("https://x.example/s", exposed, locale.German, 0)
	want := "https://x.example/s?place=Bad+K%C3%B6nigswart&language=de&page=0"
	if got != want {
		t.Errorf("BuildPageURL = %q, want %q", got, want)
	}
}
