package ports

import "go.trai.ch/pack/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load returns the project for cwd.
	//
	// When configPath is empty the configuration file is discovered by walking up
	// from cwd; if none exists, the built-in default targets are returned with cwd
	// as the project root. A relative configPath is resolved against cwd.
	Load(cwd, configPath string) (*domain.Project, error)
}
