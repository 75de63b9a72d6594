package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/ai"
	"go.trai.ch/sift/internal/core/domain"
)

type noopLogger struct{}

func (noopLogger) Info(string) {}
func (noopLogger) Warn(string) {}
func (noopLogger) Error(error) {}

// fakeClient replays a canned reply and records the prompts it received.
type fakeClient struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeClient) Complete(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClient) Name() string { return "fake" }

func classifiedFile(path, mimeType, category string, size int64) domain.ClassifiedFile {
	return domain.ClassifiedFile{
		FileRecord: domain.FileRecord{Path: path, Size: size, MIME: mimeType},
		Category:   category,
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Run("parses reply", func(t *testing.T) {
		client := &fakeClient{
			reply: `{"name": "q3-sales-report", "description": "Quarterly sales figures.", "tags": ["sales", "report"]}`,
		}
		a := ai.NewAnalyzer(noopLogger{}, ai.WithAnalyzerClient(client), ai.WithAnalyzerFs(afero.NewMemMapFs()))

		analysis, err := a.Analyze(context.Background(), "/inbox", classifiedFile("report.pdf", "application/pdf", "document", 1024))
		require.NoError(t, err)

		assert.Equal(t, "report.pdf", analysis.Path)
		assert.Equal(t, "q3-sales-report", analysis.SuggestedName)
		assert.Equal(t, "Quarterly sales figures.", analysis.Description)
		assert.Equal(t, []string{"sales", "report"}, analysis.Tags)
	})

	t.Run("prompt carries metadata and excerpt", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/inbox/notes.txt", []byte("meeting notes from monday"), 0o644))

		client := &fakeClient{reply: `{"name": "meeting-notes"}`}
		a := ai.NewAnalyzer(noopLogger{}, ai.WithAnalyzerClient(client), ai.WithAnalyzerFs(fs))

		_, err := a.Analyze(context.Background(), "/inbox", classifiedFile("notes.txt", "text/plain", "document", 25))
		require.NoError(t, err)

		require.Len(t, client.prompts, 1)
		prompt := client.prompts[0]
		assert.Contains(t, prompt, "Filename: notes.txt")
		assert.Contains(t, prompt, "MIME type: text/plain")
		assert.Contains(t, prompt, "Category: document")
		assert.Contains(t, prompt, "meeting notes from monday")
	})

	t.Run("binary file gets no excerpt", func(t *testing.T) {
		client := &fakeClient{reply: `{"name": "photo"}`}
		a := ai.NewAnalyzer(noopLogger{}, ai.WithAnalyzerClient(client), ai.WithAnalyzerFs(afero.NewMemMapFs()))

		_, err := a.Analyze(context.Background(), "/inbox", classifiedFile("photo.jpg", "image/jpeg", "image", 9000))
		require.NoError(t, err)

		require.Len(t, client.prompts, 1)
		assert.NotContains(t, client.prompts[0], "Content excerpt")
	})

	t.Run("provider failure", func(t *testing.T) {
		client := &fakeClient{err: errors.New("connection refused")}
		a := ai.NewAnalyzer(noopLogger{}, ai.WithAnalyzerClient(client), ai.WithAnalyzerFs(afero.NewMemMapFs()))

		_, err := a.Analyze(context.Background(), "/inbox", classifiedFile("a.txt", "text/plain", "document", 1))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrItemAnalysisFailed.Error())
	})

	t.Run("empty name rejected", func(t *testing.T) {
		client := &fakeClient{reply: `{"name": "", "description": "x"}`}
		a := ai.NewAnalyzer(noopLogger{}, ai.WithAnalyzerClient(client), ai.WithAnalyzerFs(afero.NewMemMapFs()))

		_, err := a.Analyze(context.Background(), "/inbox", classifiedFile("a.txt", "text/plain", "document", 1))
		require.Error(t, err)
	})

	t.Run("not configured", func(t *testing.T) {
		a := ai.NewAnalyzer(noopLogger{})

		_, err := a.Analyze(context.Background(), "/inbox", classifiedFile("a.txt", "text/plain", "document", 1))
		require.Error(t, err)
	})
}

func TestBuilder_Build(t *testing.T) {
	analysis := &domain.AnalysisResult{
		Items: []domain.Analysis{
			{Path: "report.pdf", SuggestedName: "q3-sales-report", Tags: []string{"sales"}},
			{Path: "photo.jpg", SuggestedName: "beach-sunset", Tags: []string{"vacation"}},
			{Path: "song.mp3", SuggestedName: "road-trip-mix"},
		},
	}

	t.Run("parses folders and assignments", func(t *testing.T) {
		client := &fakeClient{reply: `{
			"folders": [
				{"name": "Finance", "description": "Reports and invoices"},
				{"name": "Media", "description": "Photos and music"}
			],
			"assignments": {
				"report.pdf": "Finance",
				"photo.jpg": "Media",
				"song.mp3": "Media"
			}
		}`}
		b := ai.NewBuilder(noopLogger{}, ai.WithBuilderClient(client))

		result, err := b.Build(context.Background(), analysis)
		require.NoError(t, err)

		require.Len(t, result.Folders, 2)
		assert.Equal(t, "Finance", result.Folders[0].Name)
		assert.Equal(t, "Finance", result.Assignments["report.pdf"])
		assert.Equal(t, "Media", result.Assignments["song.mp3"])
	})

	t.Run("unassigned files fall back", func(t *testing.T) {
		client := &fakeClient{reply: `{
			"folders": [{"name": "Finance"}],
			"assignments": {"report.pdf": "Finance", "photo.jpg": "Ghost"}
		}`}
		b := ai.NewBuilder(noopLogger{}, ai.WithBuilderClient(client))

		result, err := b.Build(context.Background(), analysis)
		require.NoError(t, err)

		assert.Equal(t, ai.FallbackFolder, result.Assignments["photo.jpg"])
		assert.Equal(t, ai.FallbackFolder, result.Assignments["song.mp3"])

		names := make([]string, 0, len(result.Folders))
		for _, f := range result.Folders {
			names = append(names, f.Name)
		}
		assert.Contains(t, names, ai.FallbackFolder)
	})

	t.Run("empty analysis skips provider", func(t *testing.T) {
		client := &fakeClient{reply: `ignored`}
		b := ai.NewBuilder(noopLogger{}, ai.WithBuilderClient(client))

		result, err := b.Build(context.Background(), &domain.AnalysisResult{})
		require.NoError(t, err)

		assert.Empty(t, result.Folders)
		assert.Empty(t, result.Assignments)
		assert.Empty(t, client.prompts)
	})

	t.Run("no folders in reply", func(t *testing.T) {
		client := &fakeClient{reply: `{"folders": [], "assignments": {}}`}
		b := ai.NewBuilder(noopLogger{}, ai.WithBuilderClient(client))

		_, err := b.Build(context.Background(), analysis)
		require.Error(t, err)
	})
}
