package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/archiv-tools/linkliste/models"
)

func TestAssemble(t *testing.T) {
	links := []models.CandidateLink{
		{URL: "https://www.portafontium.eu/iipimage/1?language=de", Title: "a"},
		{URL: "https://www.portafontium.eu/iipimage/2", Title: "b"},
		{URL: "https://www.portafontium.eu/iipimage/1?language=cs", Title: "dup after strip"},
		{URL: "https://www.portafontium.eu/iipimage/3", Title: "c"},
	}

	doc := Assemble(links, "Test", "2024", "/data/scans")

	if doc.Filename != "Linkliste_Test_2024.json" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if len(doc.Records) != 3 {
		t.Fatalf("got %d records %v, want 3", len(doc.Records), doc.Records)
	}
	wantURLs := []string{
		"https://www.portafontium.eu/iipimage/1",
		"https://www.portafontium.eu/iipimage/2",
		"https://www.portafontium.eu/iipimage/3",
	}
	for i, r := range doc.Records {
		if r.URL != wantURLs[i] {
			t.Errorf("record[%d].URL = %q, want %q", i, r.URL, wantURLs[i])
		}
		if r.Outdir != "/data/scans" {
			t.Errorf("record[%d].Outdir = %q", i, r.Outdir)
		}
		if r.Pages != "" {
			t.Errorf("record[%d].Pages = %q, want empty", i, r.Pages)
		}
	}
}

func TestAssemble_Empty(t *testing.T) {
	doc := Assemble(nil, "Leer", "2024", "out")
	if len(doc.Records) != 0 {
		t.Errorf("empty crawl produced records: %v", doc.Records)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title, period, want string
	}{
		{"Test", "2024", "Linkliste_Test_2024.json"},
		{"Egerer Zeitung", "1890-1900", "Linkliste_Egerer_Zeitung_1890-1900.json"},
		{"a/b:c", "x?y", "Linkliste_a-b-c_x-y.json"},
		{"", "", "Linkliste_unbenannt_unbenannt.json"},
		{"Plzeň", "2024", "Linkliste_Plzeň_2024.json"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title, tt.period); got != tt.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", tt.title, tt.period, got, tt.want)
		}
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	doc := Assemble([]models.CandidateLink{
		{URL: "https://www.portafontium.eu/iipimage/1"},
		{URL: "https://www.portafontium.eu/iipimage/2"},
	}, "Test", "2024", "scans")

	path, err := Write(dir, doc)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "Linkliste_Test_2024.json" {
		t.Errorf("written path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	var records []models.LinkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("export is not a JSON record array: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].URL != "https://www.portafontium.eu/iipimage/1" || records[0].Outdir != "scans" {
		t.Errorf("record[0] = %+v", records[0])
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		for _, e := range entries {
			t.Logf("leftover: %s", e.Name())
		}
		t.Errorf("export dir holds %d entries, want 1", len(entries))
	}
}

func TestWrite_EmptyRecords(t *testing.T) {
	dir := t.TempDir()
	doc := Assemble(nil, "Leer", "0", "out")

	path, err := Write(dir, doc)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var records []models.LinkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("empty export is not a JSON array: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
