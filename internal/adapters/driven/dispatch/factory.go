package dispatch

import (
	"fmt"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
)

// New builds the dispatcher selected by settings, rate limited when configured.
func New(
	settings domain.AppSettings,
	messages driven.MessageStore,
	attachments driven.AttachmentStore,
) (driven.MessageDispatcher, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var d driven.MessageDispatcher
	switch settings.Dispatch.Mode {
	case domain.DispatchModeRecord:
		d = NewRecordDispatcher(messages)
	case domain.DispatchModeSMTP:
		smtp, err := NewSMTPDispatcher(settings.SMTP, messages, attachments)
		if err != nil {
			return nil, fmt.Errorf("create smtp dispatcher: %w", err)
		}
		d = smtp
	default:
		return nil, fmt.Errorf("%w: dispatch mode %q", domain.ErrInvalidInput, settings.Dispatch.Mode)
	}

	return NewRateLimitedDispatcher(d, settings.Dispatch.RatePerSecond, settings.Dispatch.Burst), nil
}
