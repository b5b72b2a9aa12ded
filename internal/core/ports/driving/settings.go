package driving

import "github.com/custodia-labs/notecourier/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetRollbackPolicy updates the default partial-failure policy.
	SetRollbackPolicy(policy domain.RollbackPolicy) error

	// SetDispatchMode updates the dispatcher selection.
	SetDispatchMode(mode domain.DispatchMode) error

	// Validate checks current settings for consistency.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
