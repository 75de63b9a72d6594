package domain

// ProviderSettings selects and configures the AI provider.
type ProviderSettings struct {
	// Name is one of "openai", "anthropic" or "ollama".
	Name string
	// Model is the provider-specific model identifier.
	Model string
	// BaseURL overrides the provider endpoint, e.g. for OpenAI-compatible gateways.
	BaseURL string
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string
}

// Settings is the effective configuration of a run, merged from the config
// file and command-line flags.
type Settings struct {
	Source   string
	CacheDir string
	Ignore   []string
	DryRun   bool
	Provider ProviderSettings
}

// DefaultSettings returns the configuration used when no sift.yaml is found.
func DefaultSettings() *Settings {
	return &Settings{
		CacheDir: DefaultCachePath(),
		Provider: ProviderSettings{
			Name:      "ollama",
			Model:     "llama3.2",
			APIKeyEnv: "SIFT_API_KEY",
		},
	}
}
