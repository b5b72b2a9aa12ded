package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
	"github.com/custodia-labs/notecourier/internal/logger"
)

// Materialized reports the attachments created by one materialisation pass.
type Materialized struct {
	// AttachmentIDs lists created attachments in creation order.
	AttachmentIDs []string
}

// AttachmentsExist reports whether at least one attachment was created.
func (m Materialized) AttachmentsExist() bool {
	return len(m.AttachmentIDs) > 0
}

// AttachmentMaterializer turns notes into email attachments.
type AttachmentMaterializer struct {
	attachments driven.AttachmentStore
	newID       func() string
	now         func() time.Time
}

// NewAttachmentMaterializer creates a materializer backed by the given store.
func NewAttachmentMaterializer(attachments driven.AttachmentStore) *AttachmentMaterializer {
	return &AttachmentMaterializer{
		attachments: attachments,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// Materialize creates one attachment per note, each owned by message.
// Creation stops at the first failure; attachments created before it are
// listed in the returned value and are not removed here.
func (m *AttachmentMaterializer) Materialize(
	ctx context.Context,
	notes []domain.Note,
	message domain.EntityReference,
) (Materialized, error) {
	var out Materialized
	if message.LogicalName != domain.EntityEmail || message.ID == "" {
		return out, fmt.Errorf("%w: attachments must target an email, got %s", domain.ErrInvalidInput, message)
	}

	for i, note := range notes {
		att := AttachmentFromNote(note, message)
		att.ID = m.newID()
		att.CreatedAt = m.now().UTC()

		if err := m.attachments.Create(ctx, att); err != nil {
			return out, fmt.Errorf("create attachment %d of %d from note %s: %w: %w",
				i+1, len(notes), note.ID, domain.ErrWriteFailed, err)
		}
		out.AttachmentIDs = append(out.AttachmentIDs, att.ID)
		logger.Debug("Attached note %s to %s as %s", note.ID, message, att.ID)
	}

	return out, nil
}

// AttachmentFromNote builds an attachment for message from note.
// Only fields present on the note are carried over; absent fields stay absent.
// The owner reference and object type code are always set.
func AttachmentFromNote(note domain.Note, message domain.EntityReference) domain.Attachment {
	return domain.Attachment{
		ObjectID:       message,
		ObjectTypeCode: domain.EntityEmail,
		Subject:        note.Subject,
		FileName:       note.FileName,
		Body:           note.DocumentBody,
		MimeType:       note.MimeType,
	}
}
