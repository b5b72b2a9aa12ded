package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driving"
)

// mockRecordService implements driving.RecordService for testing.
type mockRecordService struct {
	imported domain.RecordSet
	details  *driving.MessageDetails
	user     *domain.User
	err      error
}

func (m *mockRecordService) Import(_ context.Context, set domain.RecordSet) error {
	m.imported = set
	return m.err
}

func (m *mockRecordService) MessageDetails(_ context.Context, _ string) (*driving.MessageDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.details, nil
}

func (m *mockRecordService) User(_ context.Context, _ string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func TestShowMessageCmd_PrintsAttachments(t *testing.T) {
	sentAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	records := &mockRecordService{details: &driving.MessageDetails{
		Message: domain.Message{
			ID:             "email-1",
			Subject:        "Engine notes",
			To:             []string{"a@example.com", "b@example.com"},
			Status:         domain.MessageStatusSent,
			AssociatedUser: domain.Some(domain.NewReference(domain.EntitySystemUser, "user-1")),
			SentAt:         domain.Some(sentAt),
		},
		Attachments: []domain.Attachment{
			{ID: "att-1", FileName: domain.Some("engine.txt"), MimeType: domain.Some("text/plain")},
			{ID: "att-2"},
		},
	}}
	withServices(t, nil, records, nil)

	out, err := executeCommand(t, "show", "message", "email-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Subject:  Engine notes")
	assert.Contains(t, out, "To:       a@example.com, b@example.com")
	assert.Contains(t, out, "Linked:   systemuser:user-1")
	assert.Contains(t, out, "Sent at:  2026-03-01T09:30:00Z")
	assert.Contains(t, out, "Attachments (2)")
	assert.Contains(t, out, "att-1  engine.txt  text/plain")
	assert.Contains(t, out, "att-2  (no file name)  (no type)")
}

func TestShowMessageCmd_NotFound(t *testing.T) {
	withServices(t, nil, &mockRecordService{err: domain.ErrNotFound}, nil)

	_, err := executeCommand(t, "show", "message", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShowMessageCmd_RequiresID(t *testing.T) {
	withServices(t, nil, &mockRecordService{}, nil)

	_, err := executeCommand(t, "show", "message")
	assert.Error(t, err)
}

func TestShowUserCmd_UnsetCount(t *testing.T) {
	withServices(t, nil, &mockRecordService{user: &domain.User{ID: "user-1", FullName: "Ada"}}, nil)

	out, err := executeCommand(t, "show", "user", "user-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Name:        Ada")
	assert.Contains(t, out, "Send count:  (unset)")
}

func TestShowUserCmd_Count(t *testing.T) {
	withServices(t, nil, &mockRecordService{user: &domain.User{ID: "user-1", SendEmailsCount: domain.Some[int64](7)}}, nil)

	out, err := executeCommand(t, "show", "user", "user-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Send count:  7")
}

func TestShowUserCmd_NoService(t *testing.T) {
	withServices(t, nil, nil, nil)

	_, err := executeCommand(t, "show", "user", "user-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record service not configured")
}
