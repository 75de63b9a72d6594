// Package classify assigns coarse categories to scanned files.
package classify

import (
	"path"
	"strings"

	"go.trai.ch/sift/internal/core/domain"
)

// Categories assigned by the classifier.
const (
	CategoryDocument = "document"
	CategoryImage    = "image"
	CategoryAudio    = "audio"
	CategoryVideo    = "video"
	CategoryArchive  = "archive"
	CategoryCode     = "code"
	CategoryData     = "data"
	CategoryOther    = "other"
)

// mimeCategories maps exact MIME types that do not follow their top-level
// type, such as archives and structured data shipped as application/*.
var mimeCategories = map[string]string{
	"application/pdf":              CategoryDocument,
	"application/msword":           CategoryDocument,
	"application/rtf":              CategoryDocument,
	"application/zip":              CategoryArchive,
	"application/gzip":             CategoryArchive,
	"application/x-tar":            CategoryArchive,
	"application/x-7z-compressed":  CategoryArchive,
	"application/x-rar-compressed": CategoryArchive,
	"application/json":             CategoryData,
	"application/xml":              CategoryData,
	"application/x-yaml":           CategoryData,
	"application/sql":              CategoryData,
}

// extCategories maps extensions that MIME detection reports too generically.
var extCategories = map[string]string{
	".md":      CategoryDocument,
	".docx":    CategoryDocument,
	".xlsx":    CategoryData,
	".csv":     CategoryData,
	".tsv":     CategoryData,
	".go":      CategoryCode,
	".py":      CategoryCode,
	".js":      CategoryCode,
	".ts":      CategoryCode,
	".rs":      CategoryCode,
	".java":    CategoryCode,
	".c":       CategoryCode,
	".h":       CategoryCode,
	".cpp":     CategoryCode,
	".sh":      CategoryCode,
	".sql":     CategoryData,
	".yaml":    CategoryData,
	".yml":     CategoryData,
	".toml":    CategoryData,
	".parquet": CategoryData,
}

// Classifier implements ports.Classifier with static MIME and extension rules.
type Classifier struct{}

// NewClassifier creates a new Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify derives a category for every scanned file. The input order is
// preserved so classification never perturbs downstream cache identities.
func (c *Classifier) Classify(scan *domain.ScanResult) (*domain.DiscoverResult, error) {
	files := make([]domain.ClassifiedFile, 0, len(scan.Files))
	for _, f := range scan.Files {
		files = append(files, domain.ClassifiedFile{
			FileRecord: f,
			Category:   categorize(f),
		})
	}
	return &domain.DiscoverResult{Files: files}, nil
}

func categorize(f domain.FileRecord) string {
	if cat, ok := extCategories[strings.ToLower(path.Ext(f.Path))]; ok {
		return cat
	}
	if cat, ok := mimeCategories[f.MIME]; ok {
		return cat
	}

	switch {
	case strings.HasPrefix(f.MIME, "text/"):
		return CategoryDocument
	case strings.HasPrefix(f.MIME, "image/"):
		return CategoryImage
	case strings.HasPrefix(f.MIME, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(f.MIME, "video/"):
		return CategoryVideo
	}
	return CategoryOther
}
