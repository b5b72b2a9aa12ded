package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
)

// Ensure the stores implement their interfaces.
var (
	_ driven.ContactStore    = (*ContactStore)(nil)
	_ driven.NoteStore       = (*NoteStore)(nil)
	_ driven.MessageStore    = (*MessageStore)(nil)
	_ driven.AttachmentStore = (*AttachmentStore)(nil)
	_ driven.UserStore       = (*UserStore)(nil)
)

// ==================== Contact Store ====================

// ContactStore is an in-memory implementation of driven.ContactStore.
type ContactStore struct {
	mu       sync.RWMutex
	contacts map[string]domain.Contact
}

// NewContactStore creates a new in-memory contact store.
func NewContactStore() *ContactStore {
	return &ContactStore{contacts: make(map[string]domain.Contact)}
}

// Get retrieves a contact by ID.
func (s *ContactStore) Get(_ context.Context, id string) (*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// Save stores or updates a contact.
func (s *ContactStore) Save(_ context.Context, contact domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.ID] = contact
	return nil
}

// ==================== Note Store ====================

// NoteStore is an in-memory implementation of driven.NoteStore.
// Notes are returned in insertion order.
type NoteStore struct {
	mu    sync.RWMutex
	notes []domain.Note
}

// NewNoteStore creates a new in-memory note store.
func NewNoteStore() *NoteStore {
	return &NoteStore{}
}

// ListByObject returns notes owned by objectID.
func (s *NoteStore) ListByObject(_ context.Context, objectID string) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Note
	for _, n := range s.notes {
		if n.ObjectID == objectID {
			result = append(result, n)
		}
	}
	return result, nil
}

// Save stores or updates a note.
func (s *NoteStore) Save(_ context.Context, note domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == note.ID {
			s.notes[i] = note
			return nil
		}
	}
	s.notes = append(s.notes, note)
	return nil
}

// ==================== Message Store ====================

// MessageStore is an in-memory implementation of driven.MessageStore.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[string]domain.Message
}

// NewMessageStore creates a new in-memory message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[string]domain.Message)}
}

// Get retrieves a message by ID.
func (s *MessageStore) Get(_ context.Context, id string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	m.To = slices.Clone(m.To)
	return &m, nil
}

// Save stores or updates a message.
func (s *MessageStore) Save(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.To = slices.Clone(msg.To)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.ModifiedAt = time.Now().UTC()
	s.messages[msg.ID] = msg
	return nil
}

// SetAssociatedUser links a message to a user.
func (s *MessageStore) SetAssociatedUser(_ context.Context, messageID string, user domain.EntityReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return domain.ErrNotFound
	}
	m.AssociatedUser = domain.Some(user)
	m.ModifiedAt = time.Now().UTC()
	s.messages[messageID] = m
	return nil
}

// MarkDispatched records a dispatch outcome.
func (s *MessageStore) MarkDispatched(
	_ context.Context,
	messageID string,
	status domain.MessageStatus,
	trackingToken string,
	at time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return domain.ErrNotFound
	}
	m.Status = status
	if status == domain.MessageStatusSent {
		m.SentAt = domain.Some(at)
	}
	if trackingToken != "" {
		m.TrackingToken = trackingToken
	}
	m.ModifiedAt = at
	s.messages[messageID] = m
	return nil
}

// ==================== Attachment Store ====================

// AttachmentStore is an in-memory implementation of driven.AttachmentStore.
type AttachmentStore struct {
	mu          sync.RWMutex
	attachments []domain.Attachment
}

// NewAttachmentStore creates a new in-memory attachment store.
func NewAttachmentStore() *AttachmentStore {
	return &AttachmentStore{}
}

// Create stores a new attachment.
func (s *AttachmentStore) Create(_ context.Context, att domain.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, att)
	return nil
}

// Delete removes an attachment.
func (s *AttachmentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = slices.DeleteFunc(s.attachments, func(a domain.Attachment) bool {
		return a.ID == id
	})
	return nil
}

// ListByMessage returns attachments owned by a message, in creation order.
func (s *AttachmentStore) ListByMessage(_ context.Context, messageID string) ([]domain.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Attachment
	for _, a := range s.attachments {
		if a.ObjectID.ID == messageID {
			result = append(result, a)
		}
	}
	return result, nil
}

// Count returns the total number of stored attachments.
func (s *AttachmentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attachments)
}

// ==================== User Store ====================

// UserStore is an in-memory implementation of driven.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

// Get retrieves a user by ID.
func (s *UserStore) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// Save stores or updates a user.
func (s *UserStore) Save(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

// IncrementSendCount adds one to the counter while holding the store lock.
func (s *UserStore) IncrementSendCount(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	next := u.SendEmailsCount.OrElse(0) + 1
	u.SendEmailsCount = domain.Some(next)
	s.users[userID] = u
	return next, nil
}
