package driving

import (
	"context"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

// RecordService exposes read and import operations over the record store.
type RecordService interface {
	// Import saves every record in the set, users and contacts first.
	Import(ctx context.Context, set domain.RecordSet) error

	// MessageDetails returns a message with its attachments.
	MessageDetails(ctx context.Context, messageID string) (*MessageDetails, error)

	// User returns a user record.
	User(ctx context.Context, userID string) (*domain.User, error)
}

// MessageDetails is a message together with the attachments it owns.
type MessageDetails struct {
	Message     domain.Message
	Attachments []domain.Attachment
}
