package ports

import "go.trai.ch/sift/internal/core/domain"

// ConfigLoader defines the interface for loading the run configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers sift.yaml upward from cwd and returns the settings.
	// When no config file exists the defaults are returned, not an error.
	Load(cwd string) (*domain.Settings, error)
}
