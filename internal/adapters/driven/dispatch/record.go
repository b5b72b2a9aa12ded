package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
)

// Ensure RecordDispatcher implements the interface.
var _ driven.MessageDispatcher = (*RecordDispatcher)(nil)

// RecordDispatcher dispatches by updating the email's status in the record store.
// IssueSend marks it sent; otherwise it is left pending for deferred delivery.
type RecordDispatcher struct {
	messages driven.MessageStore
	now      func() time.Time
}

// NewRecordDispatcher creates a dispatcher backed by the message store.
func NewRecordDispatcher(messages driven.MessageStore) *RecordDispatcher {
	return &RecordDispatcher{messages: messages, now: time.Now}
}

// Send records the dispatch.
func (d *RecordDispatcher) Send(ctx context.Context, req domain.SendRequest) (*domain.SendResponse, error) {
	if req.EmailID == "" {
		return nil, fmt.Errorf("%w: email id is required", domain.ErrInvalidInput)
	}

	msg, err := d.messages.Get(ctx, req.EmailID)
	if err != nil {
		return nil, fmt.Errorf("retrieve email %s: %w", req.EmailID, err)
	}

	status := domain.MessageStatusPendingSend
	if req.IssueSend {
		status = domain.MessageStatusSent
	}

	if err := d.messages.MarkDispatched(ctx, msg.ID, status, req.TrackingToken, d.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("mark email %s: %w", msg.ID, err)
		}
		return nil, fmt.Errorf("%w: mark email %s %s: %w", domain.ErrDispatchFailed, msg.ID, status, err)
	}

	return &domain.SendResponse{Subject: msg.Subject, Status: status}, nil
}
