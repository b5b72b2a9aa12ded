package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

// ContactStore provides access to contact records.
type ContactStore interface {
	// Get retrieves a contact by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Contact, error)

	// Save stores or updates a contact.
	Save(ctx context.Context, contact domain.Contact) error
}

// NoteStore provides access to note records.
type NoteStore interface {
	// ListByObject returns every note whose owning-object ID equals objectID.
	// Only the fields named in domain.NoteColumns are populated; the rest
	// are left absent. An empty result is not an error.
	ListByObject(ctx context.Context, objectID string) ([]domain.Note, error)

	// Save stores or updates a note.
	Save(ctx context.Context, note domain.Note) error
}

// MessageStore persists outgoing messages.
type MessageStore interface {
	// Get retrieves a message with all of its attributes.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Message, error)

	// Save stores or updates a message.
	Save(ctx context.Context, msg domain.Message) error

	// SetAssociatedUser links the message to a user.
	// Returns domain.ErrNotFound if the message does not exist.
	SetAssociatedUser(ctx context.Context, messageID string, user domain.EntityReference) error

	// MarkDispatched records a dispatch outcome on the message.
	// A non-empty tracking token replaces the stored one.
	// Returns domain.ErrNotFound if the message does not exist.
	MarkDispatched(ctx context.Context, messageID string, status domain.MessageStatus,
		trackingToken string, at time.Time) error
}

// AttachmentStore persists message attachments.
type AttachmentStore interface {
	// Create stores a new attachment. The ID must be set by the caller.
	Create(ctx context.Context, att domain.Attachment) error

	// Delete removes an attachment. Deleting a missing attachment is not an error.
	Delete(ctx context.Context, id string) error

	// ListByMessage returns attachments owned by a message.
	ListByMessage(ctx context.Context, messageID string) ([]domain.Attachment, error)
}

// UserStore provides access to user records.
type UserStore interface {
	// Get retrieves a user by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Save stores or updates a user.
	Save(ctx context.Context, user domain.User) error

	// IncrementSendCount atomically adds one to the user's send counter,
	// treating an absent counter as zero, and returns the new value.
	// Returns domain.ErrNotFound if the user does not exist.
	IncrementSendCount(ctx context.Context, userID string) (int64, error)
}
