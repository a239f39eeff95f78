// Package export assembles and writes the Linkliste files consumed by the
// downstream download tool.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/site"
)

// Assemble finalizes collected candidates into an export document:
// language-neutral URLs, deduplicated first-seen-wins, discovery order
// preserved, every record stamped with the session's output directory.
func Assemble(links []models.CandidateLink, title, period, outdir string) *models.ExportDocument {
	seen := make(map[string]struct{}, len(links))
	records := make([]models.LinkRecord, 0, len(links))
	for _, l := range links {
		u := site.StripLanguageParam(l.URL)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		records = append(records, models.LinkRecord{URL: u, Outdir: outdir, Pages: ""})
	}

	return &models.ExportDocument{
		Filename: Filename(title, period),
		Records:  records,
	}
}

// Filename computes the export file name from the session's title and
// period metadata: Linkliste_<Title>_<Period>.json.
func Filename(title, period string) string {
	return fmt.Sprintf("Linkliste_%s_%s.json", sanitize(title), sanitize(period))
}

// Write persists the document into dir, creating it if needed. The file is
// written atomically (temp file + rename) so a crash never leaves a
// half-written Linkliste behind. Called exactly once per crawl, whether it
// completed or was stopped.
func Write(dir string, doc *models.ExportDocument) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create directory: %w", err)
	}

	data, err := json.MarshalIndent(doc.Records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: marshal records: %w", err)
	}

	path := filepath.Join(dir, doc.Filename)
	tmp, err := os.CreateTemp(dir, doc.Filename+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("export: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("export: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("export: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("export: rename into place: %w", err)
	}
	return path, nil
}

// sanitize keeps filename components filesystem-safe while leaving umlauts
// and diacritics alone.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unbenannt"
	}
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
		"\"", "-", "<", "-", ">", "-", "|", "-", " ", "_",
	)
	return replacer.Replace(s)
}
