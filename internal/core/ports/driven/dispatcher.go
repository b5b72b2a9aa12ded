package driven

import (
	"context"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

// MessageDispatcher hands a message to the messaging subsystem.
// A dispatch either fully succeeds or fails; failures wrap domain.ErrDispatchFailed
// unless the message could not be found (domain.ErrNotFound).
type MessageDispatcher interface {
	Send(ctx context.Context, req domain.SendRequest) (*domain.SendResponse, error)
}
