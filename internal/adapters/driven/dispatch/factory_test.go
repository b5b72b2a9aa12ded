package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notecourier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/notecourier/internal/core/domain"
)

func TestNew_RecordMode(t *testing.T) {
	d, err := New(domain.DefaultAppSettings(), memory.NewMessageStore(), memory.NewAttachmentStore())
	require.NoError(t, err)
	assert.IsType(t, &RecordDispatcher{}, d)
}

func TestNew_RateLimited(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Dispatch.RatePerSecond = 5
	settings.Dispatch.Burst = 2

	d, err := New(settings, memory.NewMessageStore(), memory.NewAttachmentStore())
	require.NoError(t, err)
	assert.IsType(t, &RateLimitedDispatcher{}, d)
}

func TestNew_SMTPMode(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Dispatch.Mode = domain.DispatchModeSMTP
	settings.SMTP = testSMTPSettings()

	d, err := New(settings, memory.NewMessageStore(), memory.NewAttachmentStore())
	require.NoError(t, err)
	assert.IsType(t, &SMTPDispatcher{}, d)
}

func TestNew_SMTPModeUnconfigured(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Dispatch.Mode = domain.DispatchModeSMTP

	_, err := New(settings, memory.NewMessageStore(), memory.NewAttachmentStore())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
