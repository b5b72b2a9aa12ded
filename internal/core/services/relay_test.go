package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notecourier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/notecourier/internal/core/domain"
)

// --- Mock implementations for relay testing ---

// relayMockDispatcher records send requests and optionally fails.
type relayMockDispatcher struct {
	requests  []domain.SendRequest
	err       error
	statusErr error
}

func (m *relayMockDispatcher) Send(_ context.Context, req domain.SendRequest) (*domain.SendResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SendResponse{Status: domain.MessageStatusSent, StatusErr: m.statusErr}, nil
}

// spyMessageStore counts SetAssociatedUser calls.
type spyMessageStore struct {
	*memory.MessageStore
	linkCalls int
	linkErr   error
}

func (s *spyMessageStore) SetAssociatedUser(ctx context.Context, id string, user domain.EntityReference) error {
	s.linkCalls++
	if s.linkErr != nil {
		return s.linkErr
	}
	return s.MessageStore.SetAssociatedUser(ctx, id, user)
}

// flakyAttachmentStore fails the Nth Create call (1-based) and optionally every Delete.
type flakyAttachmentStore struct {
	*memory.AttachmentStore
	failOn    int
	calls     int
	deleteErr error
}

func (s *flakyAttachmentStore) Create(ctx context.Context, att domain.Attachment) error {
	s.calls++
	if s.failOn > 0 && s.calls == s.failOn {
		return errors.New("constraint violation")
	}
	return s.AttachmentStore.Create(ctx, att)
}

func (s *flakyAttachmentStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.AttachmentStore.Delete(ctx, id)
}

// brokenNoteStore always fails to list.
type brokenNoteStore struct {
	*memory.NoteStore
}

func (brokenNoteStore) ListByObject(context.Context, string) ([]domain.Note, error) {
	return nil, errors.New("store unavailable")
}

// brokenUserCounter fails to increment.
type brokenUserCounter struct {
	*memory.UserStore
}

func (brokenUserCounter) IncrementSendCount(context.Context, string) (int64, error) {
	return 0, errors.New("locked")
}

type relayFixture struct {
	contacts    *memory.ContactStore
	notes       *memory.NoteStore
	messages    *spyMessageStore
	attachments *flakyAttachmentStore
	users       *memory.UserStore
	dispatcher  *relayMockDispatcher
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	ctx := context.Background()
	f := &relayFixture{
		contacts:    memory.NewContactStore(),
		notes:       memory.NewNoteStore(),
		messages:    &spyMessageStore{MessageStore: memory.NewMessageStore()},
		attachments: &flakyAttachmentStore{AttachmentStore: memory.NewAttachmentStore()},
		users:       memory.NewUserStore(),
		dispatcher:  &relayMockDispatcher{},
	}
	require.NoError(t, f.contacts.Save(ctx, domain.Contact{ID: "contact-1"}))
	require.NoError(t, f.messages.Save(ctx, domain.Message{ID: "email-1", Status: domain.MessageStatusDraft}))
	require.NoError(t, f.users.Save(ctx, domain.User{ID: "user-1"}))
	return f
}

func (f *relayFixture) service() *RelayService {
	return NewRelayService(f.contacts, f.notes, f.messages, f.attachments, f.users, f.dispatcher)
}

func (f *relayFixture) addNote(t *testing.T, note domain.Note) {
	t.Helper()
	if note.ObjectID == "" {
		note.ObjectID = "contact-1"
	}
	require.NoError(t, f.notes.Save(context.Background(), note))
}

func (f *relayFixture) sendCount(t *testing.T) domain.Optional[int64] {
	t.Helper()
	u, err := f.users.Get(context.Background(), "user-1")
	require.NoError(t, err)
	return u.SendEmailsCount
}

func (f *relayFixture) message(t *testing.T) *domain.Message {
	t.Helper()
	m, err := f.messages.Get(context.Background(), "email-1")
	require.NoError(t, err)
	return m
}

func testInvocation() domain.Invocation {
	return domain.Invocation{
		PrimaryEntity:    domain.NewReference(domain.EntityContact, "contact-1"),
		InitiatingUserID: "user-1",
		TargetMessage:    domain.NewReference(domain.EntityEmail, "email-1"),
	}
}

func fullNote(id string) domain.Note {
	return domain.Note{
		ID:           id,
		Subject:      domain.Some("Contract"),
		MimeType:     domain.Some("application/pdf"),
		FileName:     domain.Some("contract.pdf"),
		DocumentBody: domain.Some("JVBERi0xLjQK"),
	}
}

// --- Tests ---

func TestRelayService_TwoNotes_AttachesLinksAndCounts(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.addNote(t, domain.Note{ID: "note-2", DocumentBody: domain.Some("aGVsbG8=")})

	result, err := f.service().Run(context.Background(), testInvocation())
	require.NoError(t, err)

	assert.Equal(t, domain.StageCounted, result.Stage)
	assert.Len(t, result.AttachmentIDs, 2)
	assert.True(t, result.Linked)
	assert.Equal(t, int64(1), result.SendCount)

	atts, err := f.attachments.ListByMessage(context.Background(), "email-1")
	require.NoError(t, err)
	require.Len(t, atts, 2)

	byBody := map[string]domain.Attachment{}
	for _, a := range atts {
		assert.Equal(t, domain.NewReference(domain.EntityEmail, "email-1"), a.ObjectID)
		assert.Equal(t, domain.EntityEmail, a.ObjectTypeCode)
		byBody[a.Body.OrElse("")] = a
	}

	full := byBody["JVBERi0xLjQK"]
	assert.Equal(t, "Contract", full.Subject.OrElse(""))
	assert.Equal(t, "application/pdf", full.MimeType.OrElse(""))
	assert.Equal(t, "contract.pdf", full.FileName.OrElse(""))

	bodyOnly := byBody["aGVsbG8="]
	assert.False(t, bodyOnly.Subject.IsSet())
	assert.False(t, bodyOnly.FileName.IsSet())
	assert.False(t, bodyOnly.MimeType.IsSet())

	linked, ok := f.message(t).AssociatedUser.Get()
	require.True(t, ok)
	assert.Equal(t, domain.NewReference(domain.EntitySystemUser, "user-1"), linked)
	assert.Equal(t, int64(1), f.sendCount(t).OrElse(0))
}

func TestRelayService_NoNotes_SendsWithoutLinking(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, domain.Note{ID: "other", ObjectID: "contact-2", FileName: domain.Some("x.txt")})

	result, err := f.service().Run(context.Background(), testInvocation())
	require.NoError(t, err)

	assert.Equal(t, domain.StageCounted, result.Stage)
	assert.Empty(t, result.AttachmentIDs)
	assert.False(t, result.Linked)
	assert.Equal(t, 0, f.attachments.Count())
	assert.Equal(t, 0, f.messages.linkCalls, "link update must not be issued without attachments")
	assert.False(t, f.message(t).AssociatedUser.IsSet())
	assert.Len(t, f.dispatcher.requests, 1)
	assert.Equal(t, int64(1), f.sendCount(t).OrElse(0))
}

func TestRelayService_SendsImmediatelyOnce(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))

	_, err := f.service().Run(context.Background(), testInvocation())
	require.NoError(t, err)

	require.Len(t, f.dispatcher.requests, 1)
	assert.Equal(t, domain.SendRequest{EmailID: "email-1", IssueSend: true}, f.dispatcher.requests[0])
}

func TestRelayService_IncrementsExistingCounter(t *testing.T) {
	f := newRelayFixture(t)
	require.NoError(t, f.users.Save(context.Background(), domain.User{ID: "user-1", SendEmailsCount: domain.Some(int64(9))}))

	result, err := f.service().Run(context.Background(), testInvocation())
	require.NoError(t, err)

	assert.Equal(t, int64(10), result.SendCount)
	assert.Equal(t, int64(10), f.sendCount(t).OrElse(0))
}

func TestRelayService_RunTwice_IsNotIdempotent(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.addNote(t, fullNote("note-2"))
	f.addNote(t, fullNote("note-3"))
	svc := f.service()

	_, err := svc.Run(context.Background(), testInvocation())
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), testInvocation())
	require.NoError(t, err)

	assert.Equal(t, 6, f.attachments.Count())
	assert.Equal(t, int64(2), f.sendCount(t).OrElse(0))
	assert.Len(t, f.dispatcher.requests, 2)
}

func TestRelayService_DispatchFailure_KeepsAttachmentsByDefault(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.addNote(t, fullNote("note-2"))
	f.dispatcher.err = errors.New("mailbox unavailable")

	result, err := f.service().Run(context.Background(), testInvocation())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrDispatchFailed)
	assert.Contains(t, err.Error(), "mailbox unavailable")
	require.NotNil(t, result)
	assert.Equal(t, domain.StageAttached, result.Stage)
	assert.Equal(t, 2, f.attachments.Count())
	assert.Empty(t, result.RemovedAttachmentIDs)
	assert.Equal(t, 0, f.messages.linkCalls)
	assert.False(t, f.sendCount(t).IsSet(), "counter must not change when dispatch fails")
}

func TestRelayService_DispatchFailure_CleanupRemovesAttachments(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.addNote(t, fullNote("note-2"))
	f.dispatcher.err = fmtDispatchErr()

	inv := testInvocation()
	inv.Rollback = domain.RollbackCleanup

	result, err := f.service().Run(context.Background(), inv)
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrDispatchFailed)
	assert.Equal(t, 0, f.attachments.Count())
	assert.ElementsMatch(t, result.AttachmentIDs, result.RemovedAttachmentIDs)
	assert.False(t, f.sendCount(t).IsSet())
}

func TestRelayService_UnrecordedStatus_CompletesWithoutCleanup(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.dispatcher.statusErr = errors.New("disk full")

	inv := testInvocation()
	inv.Rollback = domain.RollbackCleanup

	result, err := f.service().Run(context.Background(), inv)
	require.NoError(t, err)

	assert.True(t, result.StatusUnrecorded)
	assert.Equal(t, domain.StageCounted, result.Stage)
	assert.Len(t, f.dispatcher.requests, 1)
	assert.Equal(t, 1, f.attachments.Count())
	assert.Empty(t, result.RemovedAttachmentIDs)
	assert.True(t, result.Linked)
	assert.Equal(t, domain.Some(int64(1)), f.sendCount(t))
}

func fmtDispatchErr() error {
	return errors.Join(domain.ErrDispatchFailed, errors.New("relay denied"))
}

func TestRelayService_CleanupFailureIsJoined(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.dispatcher.err = errors.New("timeout")
	f.attachments.deleteErr = errors.New("read-only")

	svc := f.service()
	svc.SetDefaultRollback(domain.RollbackCleanup)

	result, err := svc.Run(context.Background(), testInvocation())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrDispatchFailed)
	assert.Contains(t, err.Error(), "read-only")
	assert.Empty(t, result.RemovedAttachmentIDs)
	assert.Equal(t, 1, f.attachments.Count())
}

func TestRelayService_AttachmentFailure_StopsBeforeDispatch(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.addNote(t, fullNote("note-2"))
	f.addNote(t, fullNote("note-3"))
	f.attachments.failOn = 2

	result, err := f.service().Run(context.Background(), testInvocation())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Contains(t, err.Error(), "note-2")
	assert.Equal(t, domain.StageFetched, result.Stage)
	assert.Len(t, result.AttachmentIDs, 1)
	assert.Equal(t, 1, f.attachments.Count(), "earlier attachments are kept under the default policy")
	assert.Empty(t, f.dispatcher.requests)
	assert.False(t, f.sendCount(t).IsSet())
}

func TestRelayService_AttachmentFailure_CleanupRemovesEarlierAttachments(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.addNote(t, fullNote("note-2"))
	f.attachments.failOn = 2

	inv := testInvocation()
	inv.Rollback = domain.RollbackCleanup

	result, err := f.service().Run(context.Background(), inv)
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Len(t, result.RemovedAttachmentIDs, 1)
	assert.Equal(t, 0, f.attachments.Count())
}

func TestRelayService_LinkFailure_NoCleanupAfterSend(t *testing.T) {
	f := newRelayFixture(t)
	f.addNote(t, fullNote("note-1"))
	f.messages.linkErr = errors.New("validation error")

	inv := testInvocation()
	inv.Rollback = domain.RollbackCleanup

	result, err := f.service().Run(context.Background(), inv)
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Equal(t, domain.StageSent, result.Stage)
	assert.Equal(t, 1, f.attachments.Count())
	assert.False(t, f.sendCount(t).IsSet())
}

func TestRelayService_CounterFailure(t *testing.T) {
	f := newRelayFixture(t)
	svc := NewRelayService(f.contacts, f.notes, f.messages, f.attachments,
		brokenUserCounter{UserStore: f.users}, f.dispatcher)

	result, err := svc.Run(context.Background(), testInvocation())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Equal(t, domain.StageSent, result.Stage)
	assert.Len(t, f.dispatcher.requests, 1)
}

func TestRelayService_QueryFailure(t *testing.T) {
	f := newRelayFixture(t)
	svc := NewRelayService(f.contacts, brokenNoteStore{NoteStore: f.notes}, f.messages,
		f.attachments, f.users, f.dispatcher)

	result, err := svc.Run(context.Background(), testInvocation())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrQueryFailed)
	assert.Equal(t, domain.StageFetched, result.Stage)
	assert.Empty(t, f.dispatcher.requests)
}

func TestRelayService_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Invocation)
		want   string
	}{
		{
			name:   "contact",
			mutate: func(i *domain.Invocation) { i.PrimaryEntity.ID = "contact-x" },
			want:   "retrieve contact",
		},
		{
			name:   "email",
			mutate: func(i *domain.Invocation) { i.TargetMessage.ID = "email-x" },
			want:   "retrieve email",
		},
		{
			name:   "user",
			mutate: func(i *domain.Invocation) { i.InitiatingUserID = "user-x" },
			want:   "retrieve user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRelayFixture(t)
			f.addNote(t, fullNote("note-1"))
			inv := testInvocation()
			tt.mutate(&inv)

			result, err := f.service().Run(context.Background(), inv)
			require.Error(t, err)

			assert.ErrorIs(t, err, domain.ErrNotFound)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, domain.Stage(""), result.Stage)
			assert.Equal(t, 0, f.attachments.Count())
			assert.Empty(t, f.dispatcher.requests)
		})
	}
}

func TestRelayService_InvalidInvocation(t *testing.T) {
	f := newRelayFixture(t)
	inv := testInvocation()
	inv.TargetMessage.LogicalName = domain.EntityContact

	result, err := f.service().Run(context.Background(), inv)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.dispatcher.requests)
}

func TestRelayService_SetDefaultRollback_IgnoresInvalid(t *testing.T) {
	f := newRelayFixture(t)
	svc := f.service()

	svc.SetDefaultRollback("bogus")
	assert.Equal(t, domain.RollbackNone, svc.defaultRollback)

	svc.SetDefaultRollback(domain.RollbackCleanup)
	assert.Equal(t, domain.RollbackCleanup, svc.defaultRollback)
}
