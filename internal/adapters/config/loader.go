// Package config provides the configuration loader for sift.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load searches for a sift.yaml starting at cwd and walking up to the
// filesystem root. When no file is found the built-in defaults are returned.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	configPath, found := l.findConfiguration(cwd)
	if !found {
		return domain.DefaultSettings(), nil
	}

	// #nosec G304 -- path comes from upward directory discovery
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	l.Logger.Info(fmt.Sprintf("loaded configuration from %s", configPath))

	return merge(configPath, &file), nil
}

func (l *Loader) findConfiguration(cwd string) (string, bool) {
	currentDir := cwd

	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

// merge overlays the file values onto the defaults. Relative source and
// cache paths are resolved against the config file's directory so a run
// started in a subdirectory still targets the same tree.
func merge(configPath string, file *File) *domain.Settings {
	settings := domain.DefaultSettings()
	baseDir := filepath.Dir(configPath)

	if file.Source != "" {
		settings.Source = resolvePath(baseDir, file.Source)
	}
	if file.CacheDir != "" {
		settings.CacheDir = resolvePath(baseDir, file.CacheDir)
	}
	if len(file.Ignore) > 0 {
		settings.Ignore = file.Ignore
	}
	if file.DryRun {
		settings.DryRun = true
	}

	if file.Provider != nil {
		if file.Provider.Name != "" {
			settings.Provider.Name = file.Provider.Name
		}
		if file.Provider.Model != "" {
			settings.Provider.Model = file.Provider.Model
		}
		if file.Provider.BaseURL != "" {
			settings.Provider.BaseURL = file.Provider.BaseURL
		}
		if file.Provider.APIKeyEnv != "" {
			settings.Provider.APIKeyEnv = file.Provider.APIKeyEnv
		}
	}

	return settings
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
