package domain

import "time"

// Contact is the record whose notes are aggregated.
// The relay only reads its ID.
type Contact struct {
	// ID is the unique identifier for the contact.
	ID string

	// FullName is the display name.
	FullName string

	// EmailAddress is the primary address.
	EmailAddress string

	// CreatedAt is when the contact was created.
	CreatedAt time.Time
}

// Note is a free-form annotation owned by another record.
// Every content field is optional; a note may carry only some of them.
type Note struct {
	// ID is the unique identifier for the note.
	ID string

	// ObjectID is the identifier of the owning record.
	ObjectID string

	// Subject is the note title.
	Subject Optional[string]

	// MimeType is the media type of the attached file.
	MimeType Optional[string]

	// FileName is the name of the attached file.
	FileName Optional[string]

	// DocumentBody is the base64-encoded file content.
	DocumentBody Optional[string]

	// CreatedAt is when the note was created.
	CreatedAt time.Time
}

// NoteColumns are the only note fields the collector requests.
var NoteColumns = []string{"subject", "mimetype", "filename", "documentbody"}

// MessageStatus is the lifecycle state of an outgoing message.
type MessageStatus string

// Message statuses.
const (
	// MessageStatusDraft is a persisted message that has not been dispatched.
	MessageStatusDraft MessageStatus = "draft"

	// MessageStatusPendingSend is a message queued for deferred delivery.
	MessageStatusPendingSend MessageStatus = "pending_send"

	// MessageStatusSent is a message handed to the messaging subsystem.
	MessageStatusSent MessageStatus = "sent"
)

// IsValid returns true if the status is recognised.
func (s MessageStatus) IsValid() bool {
	switch s {
	case MessageStatusDraft, MessageStatusPendingSend, MessageStatusSent:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s MessageStatus) String() string {
	return string(s)
}

// Message is the outgoing email being processed.
type Message struct {
	// ID is the unique identifier for the message.
	ID string

	// Subject is the email subject line.
	Subject string

	// Description is the email body.
	Description string

	// From is the sender address.
	From string

	// To holds the recipient addresses.
	To []string

	// Status is the dispatch lifecycle state.
	Status MessageStatus

	// AssociatedUser links the message to the user whose run attached files to it.
	AssociatedUser Optional[EntityReference]

	// TrackingToken correlates replies with this message.
	TrackingToken string

	// SentAt is when the message was last dispatched.
	SentAt Optional[time.Time]

	// CreatedAt is when the message was created.
	CreatedAt time.Time

	// ModifiedAt is when the message was last updated.
	ModifiedAt time.Time
}

// Reference returns an email reference to this message.
func (m Message) Reference() EntityReference {
	return NewReference(EntityEmail, m.ID)
}

// Attachment is a file record linked to an outgoing message.
type Attachment struct {
	// ID is the unique identifier for the attachment.
	ID string

	// ObjectID references the owning message.
	ObjectID EntityReference

	// ObjectTypeCode marks the owner type. Always EntityEmail for relay output.
	ObjectTypeCode string

	// Subject is copied from the note subject.
	Subject Optional[string]

	// FileName is copied from the note filename.
	FileName Optional[string]

	// Body is copied from the note document body (base64).
	Body Optional[string]

	// MimeType is copied from the note media type.
	MimeType Optional[string]

	// CreatedAt is when the attachment was created.
	CreatedAt time.Time
}

// User is the identity on whose behalf a workflow runs.
type User struct {
	// ID is the unique identifier for the user.
	ID string

	// FullName is the display name.
	FullName string

	// SendEmailsCount counts emails sent through the relay.
	// Absent until the first run for this user completes.
	SendEmailsCount Optional[int64]
}

// Reference returns a systemuser reference to this user.
func (u User) Reference() EntityReference {
	return NewReference(EntitySystemUser, u.ID)
}

// RecordSet is a batch of records to import into a store.
type RecordSet struct {
	Contacts []Contact
	Users    []User
	Messages []Message
	Notes    []Note
}
