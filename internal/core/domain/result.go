package domain

import "time"

// Schema versions for the cached stage payloads. Bumping a version makes old
// entries decode-fail, which the runner treats as a cache miss.
const (
	ScanSchemaVersion     = 1
	DiscoverSchemaVersion = 1
	AnalyzeSchemaVersion  = 1
	TaxonomySchemaVersion = 1
	MoveSchemaVersion     = 1
)

// FileRecord describes one enumerated file. Path is relative to the scan root.
type FileRecord struct {
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	MIME       string    `json:"mime,omitempty"`
}

// ScanResult is the output of the scan stage.
type ScanResult struct {
	Root  string       `json:"root"`
	Files []FileRecord `json:"files"`
}

// ClassifiedFile is a scanned file with its coarse category.
type ClassifiedFile struct {
	FileRecord
	Category string `json:"category"`
}

// DiscoverResult is the output of the discover stage.
type DiscoverResult struct {
	Files []ClassifiedFile `json:"files"`
}

// Analysis is the AI-produced description of a single file.
type Analysis struct {
	Path          string   `json:"path"`
	SuggestedName string   `json:"suggested_name"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags,omitempty"`
}

// ItemError records a non-fatal per-item failure in the analyze stage.
type ItemError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// AnalysisResult is the output of the analyze stage. Items holds the
// successfully analyzed files in scan order; Errors the files whose analysis
// failed. The pipeline continues with the successful items only.
type AnalysisResult struct {
	Items  []Analysis  `json:"items"`
	Errors []ItemError `json:"errors,omitempty"`
}

// TaxonomyFolder is one target folder of the derived taxonomy.
type TaxonomyFolder struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TaxonomyResult is the output of the taxonomy stage. Assignments maps a
// source-relative file path to a folder name from Folders.
type TaxonomyResult struct {
	Folders     []TaxonomyFolder  `json:"folders"`
	Assignments map[string]string `json:"assignments"`
}

// MoveRecord describes one executed (or planned, in dry-run mode) move.
type MoveRecord struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Applied bool   `json:"applied"`
}

// MoveResult is the output of the move stage.
type MoveResult struct {
	DryRun bool         `json:"dry_run"`
	Moves  []MoveRecord `json:"moves"`
}
