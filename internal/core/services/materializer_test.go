package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notecourier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/notecourier/internal/core/domain"
)

func TestAttachmentFromNote_CopiesOnlyPresentFields(t *testing.T) {
	email := domain.NewReference(domain.EntityEmail, "email-1")

	tests := []struct {
		name string
		note domain.Note
		want domain.Attachment
	}{
		{
			name: "all fields",
			note: fullNote("n-1"),
			want: domain.Attachment{
				ObjectID:       email,
				ObjectTypeCode: domain.EntityEmail,
				Subject:        domain.Some("Contract"),
				FileName:       domain.Some("contract.pdf"),
				Body:           domain.Some("JVBERi0xLjQK"),
				MimeType:       domain.Some("application/pdf"),
			},
		},
		{
			name: "body only",
			note: domain.Note{ID: "n-2", DocumentBody: domain.Some("aGk=")},
			want: domain.Attachment{
				ObjectID:       email,
				ObjectTypeCode: domain.EntityEmail,
				Body:           domain.Some("aGk="),
			},
		},
		{
			name: "empty filename is still present",
			note: domain.Note{ID: "n-3", FileName: domain.Some("")},
			want: domain.Attachment{
				ObjectID:       email,
				ObjectTypeCode: domain.EntityEmail,
				FileName:       domain.Some(""),
			},
		},
		{
			name: "nothing but owner",
			note: domain.Note{ID: "n-4"},
			want: domain.Attachment{ObjectID: email, ObjectTypeCode: domain.EntityEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AttachmentFromNote(tt.note, email))
		})
	}
}

func TestAttachmentMaterializer_OnePerNote(t *testing.T) {
	store := memory.NewAttachmentStore()
	m := NewAttachmentMaterializer(store)
	seq := 0
	m.newID = func() string {
		seq++
		return fmt.Sprintf("att-%d", seq)
	}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	notes := []domain.Note{fullNote("n-1"), {ID: "n-2"}, fullNote("n-3")}
	email := domain.NewReference(domain.EntityEmail, "email-1")

	out, err := m.Materialize(context.Background(), notes, email)
	require.NoError(t, err)

	assert.True(t, out.AttachmentsExist())
	assert.Equal(t, []string{"att-1", "att-2", "att-3"}, out.AttachmentIDs)

	atts, err := store.ListByMessage(context.Background(), "email-1")
	require.NoError(t, err)
	require.Len(t, atts, 3)
	for _, a := range atts {
		assert.Equal(t, email, a.ObjectID)
		assert.Equal(t, fixed, a.CreatedAt)
	}
}

func TestAttachmentMaterializer_NoNotes(t *testing.T) {
	m := NewAttachmentMaterializer(memory.NewAttachmentStore())

	out, err := m.Materialize(context.Background(), nil, domain.NewReference(domain.EntityEmail, "email-1"))

	require.NoError(t, err)
	assert.False(t, out.AttachmentsExist())
}

func TestAttachmentMaterializer_RejectsNonEmailTarget(t *testing.T) {
	m := NewAttachmentMaterializer(memory.NewAttachmentStore())

	_, err := m.Materialize(context.Background(), []domain.Note{fullNote("n")},
		domain.NewReference(domain.EntityContact, "c-1"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAttachmentMaterializer_GeneratesUUIDs(t *testing.T) {
	m := NewAttachmentMaterializer(memory.NewAttachmentStore())

	out, err := m.Materialize(context.Background(), []domain.Note{{ID: "a"}, {ID: "b"}},
		domain.NewReference(domain.EntityEmail, "email-1"))
	require.NoError(t, err)

	require.Len(t, out.AttachmentIDs, 2)
	assert.Len(t, out.AttachmentIDs[0], 36)
	assert.NotEqual(t, out.AttachmentIDs[0], out.AttachmentIDs[1])
}
