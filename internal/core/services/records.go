package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
	"github.com/custodia-labs/notecourier/internal/core/ports/driving"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService reads and imports records for operators.
type RecordService struct {
	contacts    driven.ContactStore
	notes       driven.NoteStore
	messages    driven.MessageStore
	attachments driven.AttachmentStore
	users       driven.UserStore
}

// NewRecordService creates a new record service.
func NewRecordService(
	contacts driven.ContactStore,
	notes driven.NoteStore,
	messages driven.MessageStore,
	attachments driven.AttachmentStore,
	users driven.UserStore,
) *RecordService {
	return &RecordService{
		contacts:    contacts,
		notes:       notes,
		messages:    messages,
		attachments: attachments,
		users:       users,
	}
}

// Import saves every record in the set. Owners are saved before the
// records that reference them.
func (s *RecordService) Import(ctx context.Context, set domain.RecordSet) error {
	for _, u := range set.Users {
		if u.ID == "" {
			return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
		}
		if err := s.users.Save(ctx, u); err != nil {
			return fmt.Errorf("save user %s: %w", u.ID, err)
		}
	}
	for _, c := range set.Contacts {
		if c.ID == "" {
			return fmt.Errorf("%w: contact id is required", domain.ErrInvalidInput)
		}
		if err := s.contacts.Save(ctx, c); err != nil {
			return fmt.Errorf("save contact %s: %w", c.ID, err)
		}
	}
	for _, m := range set.Messages {
		if m.ID == "" {
			return fmt.Errorf("%w: email id is required", domain.ErrInvalidInput)
		}
		if m.Status == "" {
			m.Status = domain.MessageStatusDraft
		}
		if err := s.messages.Save(ctx, m); err != nil {
			return fmt.Errorf("save email %s: %w", m.ID, err)
		}
	}
	for _, n := range set.Notes {
		if n.ID == "" || n.ObjectID == "" {
			return fmt.Errorf("%w: note id and object id are required", domain.ErrInvalidInput)
		}
		if err := s.notes.Save(ctx, n); err != nil {
			return fmt.Errorf("save note %s: %w", n.ID, err)
		}
	}
	return nil
}

// MessageDetails returns a message with its attachments.
func (s *RecordService) MessageDetails(ctx context.Context, messageID string) (*driving.MessageDetails, error) {
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	atts, err := s.attachments.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return &driving.MessageDetails{Message: *msg, Attachments: atts}, nil
}

// User returns a user record.
func (s *RecordService) User(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}
