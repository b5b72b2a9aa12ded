package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.settings.Dispatch.Mode == "" {
		m.settings = domain.DefaultAppSettings()
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetRollbackPolicy(policy domain.RollbackPolicy) error {
	if !policy.IsValid() {
		return domain.ErrInvalidInput
	}
	s, _ := m.Get()
	s.Relay.Rollback = policy
	return m.Save(s)
}

func (m *mockSettingsService) SetDispatchMode(mode domain.DispatchMode) error {
	if !mode.IsValid() {
		return domain.ErrInvalidInput
	}
	s, _ := m.Get()
	s.Dispatch.Mode = mode
	return m.Save(s)
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short secret", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long secret", input: "app-password-1234", expected: "app-...1234"},
		{name: "Empty secret", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.input))
		})
	}
}

func TestSettingsCmd_Show(t *testing.T) {
	svc := &mockSettingsService{}
	withServices(t, nil, nil, svc)

	out, err := executeCommand(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Rollback: none")
	assert.Contains(t, out, "Mode: Record only")
	assert.Contains(t, out, "Rate: unlimited")
	assert.Contains(t, out, "Status: not configured")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCmd_ShowMasksPassword(t *testing.T) {
	svc := &mockSettingsService{}
	s := domain.DefaultAppSettings()
	s.SMTP.Username = "relay"
	s.SMTP.Password = "app-password-1234"
	svc.settings = s
	withServices(t, nil, nil, svc)

	out, err := executeCommand(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Password: app-...1234")
	assert.NotContains(t, out, "app-password-1234")
}

func TestSettingsCmd_Rollback(t *testing.T) {
	svc := &mockSettingsService{}
	withServices(t, nil, nil, svc)

	out, err := executeCommand(t, "settings", "rollback", "cleanup")

	require.NoError(t, err)
	assert.Contains(t, out, "Rollback policy set to: cleanup")
	assert.Equal(t, domain.RollbackCleanup, svc.settings.Relay.Rollback)
}

func TestSettingsCmd_RollbackInvalid(t *testing.T) {
	withServices(t, nil, nil, &mockSettingsService{})

	_, err := executeCommand(t, "settings", "rollback", "sometimes")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsCmd_ModeWarnsWhenInvalid(t *testing.T) {
	svc := &mockSettingsService{validateErr: domain.ErrInvalidInput}
	withServices(t, nil, nil, svc)

	out, err := executeCommand(t, "settings", "mode", "smtp")

	require.NoError(t, err)
	assert.Equal(t, domain.DispatchModeSMTP, svc.settings.Dispatch.Mode)
	assert.Contains(t, out, "Warning:")
}
