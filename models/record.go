package models

// LinkRecord is the unit persisted to the export file. The field set and
// JSON shape are fixed by the downstream download tool that consumes the
// Linkliste files.
type LinkRecord struct {
	// URL is the absolute, language-neutral record address. Unique within
	// one export document.
	URL string `json:"url"`

	// Outdir is the download directory the consumer should write into.
	Outdir string `json:"outdir"`

	// Pages is reserved for a page-range selection; always empty today.
	Pages string `json:"pages"`
}

// CandidateLink is a link+title pair extracted from a results page before
// being finalized into an exportable record.
type CandidateLink struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// ExportDocument is the ordered, deduplicated record collection written at
// the end of a crawl.
type ExportDocument struct {
	// Filename is the computed export file name, e.g. "Linkliste_Pilsen_1880.json".
	Filename string `json:"filename"`

	// Records preserves first-discovery order.
	Records []LinkRecord `json:"records"`
}
