package ai

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

// excerptLen caps the number of content bytes included in the prompt.
const excerptLen = 2048

const analyzerSystemPrompt = `You are a file organization assistant.
Given metadata about a single file, respond with a JSON object of the form
{"name": "...", "description": "...", "tags": ["...", "..."]}.
"name" is a short descriptive filename without extension, "description" is
one sentence, "tags" is 1 to 5 lowercase keywords. Respond with JSON only.`

// Analyzer implements ports.Analyzer by asking the configured AI provider
// for a name, description and tags per file.
type Analyzer struct {
	logger    ports.Logger
	fs        afero.Fs
	client    Client
	newClient func(domain.ProviderSettings) (Client, error)
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithAnalyzerFs overrides the filesystem used for content excerpts.
func WithAnalyzerFs(fs afero.Fs) AnalyzerOption {
	return func(a *Analyzer) {
		a.fs = fs
	}
}

// WithAnalyzerClient injects a prebuilt provider client, bypassing Configure.
func WithAnalyzerClient(client Client) AnalyzerOption {
	return func(a *Analyzer) {
		a.client = client
	}
}

// NewAnalyzer creates a new Analyzer. It is unusable until Configure or
// WithAnalyzerClient provides a provider client.
func NewAnalyzer(logger ports.Logger, options ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		logger:    logger,
		fs:        afero.NewOsFs(),
		newClient: NewClient,
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Configure builds the provider client from the effective settings.
func (a *Analyzer) Configure(settings domain.ProviderSettings) error {
	client, err := a.newClient(settings)
	if err != nil {
		return err
	}
	a.client = client
	return nil
}

// Analyze asks the provider about a single file and parses the reply.
func (a *Analyzer) Analyze(ctx context.Context, root string, file domain.ClassifiedFile) (*domain.Analysis, error) {
	if a.client == nil {
		return nil, zerr.With(domain.ErrItemAnalysisFailed, "reason", "analyzer not configured")
	}

	reply, err := a.client.Complete(ctx, analyzerSystemPrompt, a.buildPrompt(root, file))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrItemAnalysisFailed.Error()), "path", file.Path)
	}

	var parsed struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
	}
	if err := decodeReply(reply, &parsed); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrItemAnalysisFailed.Error()), "path", file.Path)
	}
	if parsed.Name == "" {
		return nil, zerr.With(
			zerr.With(domain.ErrItemAnalysisFailed, "reason", "empty name in reply"),
			"path", file.Path,
		)
	}

	return &domain.Analysis{
		Path:          file.Path,
		SuggestedName: parsed.Name,
		Description:   parsed.Description,
		Tags:          parsed.Tags,
	}, nil
}

func (a *Analyzer) buildPrompt(root string, file domain.ClassifiedFile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filename: %s\n", filepath.Base(file.Path))
	fmt.Fprintf(&b, "Relative path: %s\n", file.Path)
	fmt.Fprintf(&b, "MIME type: %s\n", file.MIME)
	fmt.Fprintf(&b, "Category: %s\n", file.Category)
	fmt.Fprintf(&b, "Size: %d bytes\n", file.Size)

	if excerpt := a.readExcerpt(root, file); excerpt != "" {
		fmt.Fprintf(&b, "\nContent excerpt:\n%s\n", excerpt)
	}
	return b.String()
}

// readExcerpt returns the leading content of text-like files. Binary files
// and read failures yield an empty excerpt; metadata alone still gives the
// model something to work with.
func (a *Analyzer) readExcerpt(root string, file domain.ClassifiedFile) string {
	if !textLike(file) {
		return ""
	}

	f, err := a.fs.Open(filepath.Join(root, filepath.FromSlash(file.Path)))
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, excerptLen)
	n, _ := f.Read(buf)
	if n <= 0 {
		return ""
	}

	excerpt := buf[:n]
	// Drop a trailing partial rune from the cut-off point
	for i := 0; i < utf8.UTFMax && len(excerpt) > 0 && !utf8.Valid(excerpt); i++ {
		excerpt = excerpt[:len(excerpt)-1]
	}
	if !utf8.Valid(excerpt) {
		return ""
	}
	return string(excerpt)
}

func textLike(file domain.ClassifiedFile) bool {
	if strings.HasPrefix(file.MIME, "text/") {
		return true
	}
	switch file.Category {
	case "code", "data":
		return true
	}
	return false
}
