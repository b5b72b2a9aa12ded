package services

import (
	"fmt"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
	"github.com/custodia-labs/notecourier/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRelayRollback = "relay.rollback"
	keyDispatchMode  = "dispatch.mode"
	keyDispatchRate  = "dispatch.rate_per_second"
	keyDispatchBurst = "dispatch.burst"
	keySMTPHost      = "smtp.host"
	keySMTPPort      = "smtp.port"
	keySMTPUsername  = "smtp.username"
	keySMTPPassword  = "smtp.password"
	keySMTPFrom      = "smtp.from"
	keySMTPTLS       = "smtp.tls"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling gaps with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Relay: domain.RelaySettings{
			Rollback: domain.RollbackPolicy(s.getString(keyRelayRollback, defaults.Relay.Rollback.String())),
		},
		Dispatch: domain.DispatchSettings{
			Mode:          domain.DispatchMode(s.getString(keyDispatchMode, defaults.Dispatch.Mode.String())),
			RatePerSecond: s.configStore.GetFloat(keyDispatchRate),
			Burst:         s.getInt(keyDispatchBurst, defaults.Dispatch.Burst),
		},
		SMTP: domain.SMTPSettings{
			Host:     s.configStore.GetString(keySMTPHost),
			Port:     s.getInt(keySMTPPort, defaults.SMTP.Port),
			Username: s.configStore.GetString(keySMTPUsername),
			Password: s.configStore.GetString(keySMTPPassword),
			From:     s.configStore.GetString(keySMTPFrom),
			TLS:      domain.TLSPolicy(s.getString(keySMTPTLS, string(defaults.SMTP.TLS))),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyRelayRollback, settings.Relay.Rollback.String()},
		{keyDispatchMode, settings.Dispatch.Mode.String()},
		{keyDispatchRate, settings.Dispatch.RatePerSecond},
		{keyDispatchBurst, settings.Dispatch.Burst},
		{keySMTPHost, settings.SMTP.Host},
		{keySMTPPort, settings.SMTP.Port},
		{keySMTPUsername, settings.SMTP.Username},
		{keySMTPFrom, settings.SMTP.From},
		{keySMTPTLS, string(settings.SMTP.TLS)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Only overwrite a stored password when a new one is supplied
	if settings.SMTP.Password != "" {
		if err := s.configStore.Set(keySMTPPassword, settings.SMTP.Password); err != nil {
			return fmt.Errorf("save %s: %w", keySMTPPassword, err)
		}
	}

	return nil
}

// SetRollbackPolicy updates the default partial-failure policy.
func (s *SettingsService) SetRollbackPolicy(policy domain.RollbackPolicy) error {
	if !policy.IsValid() {
		return fmt.Errorf("invalid rollback policy: %s", policy)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Relay.Rollback = policy
	return s.Save(settings)
}

// SetDispatchMode updates the dispatcher selection.
func (s *SettingsService) SetDispatchMode(mode domain.DispatchMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid dispatch mode: %s", mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Dispatch.Mode = mode
	return s.Save(settings)
}

// Validate checks current settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}
