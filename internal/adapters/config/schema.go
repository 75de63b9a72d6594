package config

// File represents the structure of the sift.yaml configuration file.
type File struct {
	Version  string       `yaml:"version"`
	Source   string       `yaml:"source"`
	CacheDir string       `yaml:"cacheDir"`
	Ignore   []string     `yaml:"ignore"`
	DryRun   bool         `yaml:"dryRun"`
	Provider *ProviderDTO `yaml:"provider"`
}

// ProviderDTO represents the AI provider section of the configuration.
type ProviderDTO struct {
	Name      string `yaml:"name"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"baseUrl"`
	APIKeyEnv string `yaml:"apiKeyEnv"`
}
