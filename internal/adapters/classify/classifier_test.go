package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/classify"
	"go.trai.ch/sift/internal/core/domain"
)

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		mime     string
		category string
	}{
		{name: "plain text", path: "notes.txt", mime: "text/plain", category: "document"},
		{name: "markdown", path: "README.md", mime: "text/markdown", category: "document"},
		{name: "pdf", path: "report.pdf", mime: "application/pdf", category: "document"},
		{name: "jpeg", path: "photo.jpg", mime: "image/jpeg", category: "image"},
		{name: "mp3", path: "song.mp3", mime: "audio/mpeg", category: "audio"},
		{name: "mp4", path: "clip.mp4", mime: "video/mp4", category: "video"},
		{name: "zip", path: "bundle.zip", mime: "application/zip", category: "archive"},
		{name: "go source", path: "main.go", mime: "text/plain", category: "code"},
		{name: "csv", path: "export.csv", mime: "text/csv", category: "data"},
		{name: "json", path: "payload.json", mime: "application/json", category: "data"},
		{name: "unknown binary", path: "blob.bin", mime: "application/octet-stream", category: "other"},
		{name: "uppercase extension", path: "SCRIPT.PY", mime: "text/plain", category: "code"},
	}

	c := classify.NewClassifier()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := c.Classify(&domain.ScanResult{
				Files: []domain.FileRecord{{Path: tt.path, MIME: tt.mime}},
			})
			require.NoError(t, err)
			require.Len(t, result.Files, 1)

			assert.Equal(t, tt.category, result.Files[0].Category)
		})
	}
}

func TestClassifier_PreservesOrder(t *testing.T) {
	c := classify.NewClassifier()

	result, err := c.Classify(&domain.ScanResult{
		Files: []domain.FileRecord{
			{Path: "a.txt", MIME: "text/plain"},
			{Path: "b.jpg", MIME: "image/jpeg"},
			{Path: "c.zip", MIME: "application/zip"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 3)

	assert.Equal(t, "a.txt", result.Files[0].Path)
	assert.Equal(t, "b.jpg", result.Files[1].Path)
	assert.Equal(t, "c.zip", result.Files[2].Path)
}
