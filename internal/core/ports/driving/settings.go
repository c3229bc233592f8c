package driving

import "github.com/custodia-labs/finrag/internal/core/domain"

// SettingsService resolves and persists application settings.
type SettingsService interface {
	// Get returns settings layered as defaults, config file, then environment.
	Get() (*domain.AppSettings, error)

	// Set persists a single config file key.
	Set(key, value string) error

	// SetAPIKey stores the API key for a provider in the config file.
	SetAPIKey(provider domain.AIProvider, key string) error

	// Path returns the config file location.
	Path() string
}
