package ai

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

// FallbackFolder receives every file the model failed to assign.
const FallbackFolder = "Unsorted"

const taxonomySystemPrompt = `You are a file organization assistant.
Given a list of analyzed files, derive a flat folder structure that groups
them sensibly. Respond with a JSON object of the form
{"folders": [{"name": "...", "description": "..."}],
 "assignments": {"<file path>": "<folder name>"}}.
Use between 2 and 12 folders. Every file must appear in assignments.
Respond with JSON only.`

// Builder implements ports.TaxonomyBuilder using the configured AI provider.
type Builder struct {
	logger    ports.Logger
	client    Client
	newClient func(domain.ProviderSettings) (Client, error)
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBuilderClient injects a prebuilt provider client, bypassing Configure.
func WithBuilderClient(client Client) BuilderOption {
	return func(b *Builder) {
		b.client = client
	}
}

// NewBuilder creates a new Builder. It is unusable until Configure or
// WithBuilderClient provides a provider client.
func NewBuilder(logger ports.Logger, options ...BuilderOption) *Builder {
	b := &Builder{
		logger:    logger,
		newClient: NewClient,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Configure builds the provider client from the effective settings.
func (b *Builder) Configure(settings domain.ProviderSettings) error {
	client, err := b.newClient(settings)
	if err != nil {
		return err
	}
	b.client = client
	return nil
}

// Build derives the folder structure from the analyses in a single provider
// call. Files the model leaves unassigned, or assigns to a folder it never
// declared, land in the fallback folder.
func (b *Builder) Build(ctx context.Context, analysis *domain.AnalysisResult) (*domain.TaxonomyResult, error) {
	if b.client == nil {
		return nil, zerr.With(domain.ErrStageFailed, "reason", "taxonomy builder not configured")
	}

	if len(analysis.Items) == 0 {
		return &domain.TaxonomyResult{Assignments: map[string]string{}}, nil
	}

	reply, err := b.client.Complete(ctx, taxonomySystemPrompt, buildTaxonomyPrompt(analysis))
	if err != nil {
		return nil, zerr.Wrap(err, "taxonomy derivation failed")
	}

	var parsed struct {
		Folders []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"folders"`
		Assignments map[string]string `json:"assignments"`
	}
	if err := decodeReply(reply, &parsed); err != nil {
		return nil, zerr.Wrap(err, "taxonomy derivation failed")
	}
	if len(parsed.Folders) == 0 {
		return nil, zerr.With(domain.ErrProviderResponseInvalid, "reason", "no folders in reply")
	}

	result := &domain.TaxonomyResult{
		Assignments: make(map[string]string, len(analysis.Items)),
	}
	known := make(map[string]bool, len(parsed.Folders))
	for _, f := range parsed.Folders {
		if f.Name == "" || known[f.Name] {
			continue
		}
		known[f.Name] = true
		result.Folders = append(result.Folders, domain.TaxonomyFolder{
			Name:        f.Name,
			Description: f.Description,
		})
	}

	fallbackUsed := false
	for _, item := range analysis.Items {
		folder, ok := parsed.Assignments[item.Path]
		if !ok || !known[folder] {
			folder = FallbackFolder
			fallbackUsed = true
			b.logger.Warn(fmt.Sprintf("no folder assigned for %s, using %s", item.Path, FallbackFolder))
		}
		result.Assignments[item.Path] = folder
	}

	if fallbackUsed && !known[FallbackFolder] {
		result.Folders = append(result.Folders, domain.TaxonomyFolder{
			Name:        FallbackFolder,
			Description: "Files that could not be assigned to a folder",
		})
	}

	return result, nil
}

func buildTaxonomyPrompt(analysis *domain.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("Files:\n")
	for _, item := range analysis.Items {
		fmt.Fprintf(&b, "- path: %s\n  name: %s\n  description: %s\n  tags: %s\n",
			item.Path, item.SuggestedName, item.Description, strings.Join(item.Tags, ", "))
	}
	return b.String()
}
