package driving

import (
	"context"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

// AttachmentRelay copies a contact's note files onto an email, sends it,
// and updates the initiator's bookkeeping.
type AttachmentRelay interface {
	// Run executes one aggregation-and-send pass.
	// On failure the returned result, if non-nil, reports the stage reached.
	Run(ctx context.Context, inv domain.Invocation) (*domain.RelayResult, error)
}
