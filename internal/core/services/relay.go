package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
	"github.com/custodia-labs/notecourier/internal/core/ports/driving"
	"github.com/custodia-labs/notecourier/internal/logger"
)

// Ensure RelayService implements the interface.
var _ driving.AttachmentRelay = (*RelayService)(nil)

// RelayService coordinates note collection, attachment creation, dispatch
// and the initiator's bookkeeping for one workflow invocation.
type RelayService struct {
	contacts     driven.ContactStore
	messages     driven.MessageStore
	attachments  driven.AttachmentStore
	users        driven.UserStore
	dispatcher   driven.MessageDispatcher
	collector    *NoteCollector
	materializer *AttachmentMaterializer

	defaultRollback domain.RollbackPolicy
}

// NewRelayService creates a new relay service.
func NewRelayService(
	contacts driven.ContactStore,
	notes driven.NoteStore,
	messages driven.MessageStore,
	attachments driven.AttachmentStore,
	users driven.UserStore,
	dispatcher driven.MessageDispatcher,
) *RelayService {
	return &RelayService{
		contacts:        contacts,
		messages:        messages,
		attachments:     attachments,
		users:           users,
		dispatcher:      dispatcher,
		collector:       NewNoteCollector(notes),
		materializer:    NewAttachmentMaterializer(attachments),
		defaultRollback: domain.RollbackNone,
	}
}

// SetDefaultRollback sets the policy used when an invocation does not name one.
func (s *RelayService) SetDefaultRollback(policy domain.RollbackPolicy) {
	if policy.IsValid() {
		s.defaultRollback = policy
	}
}

// Run executes one aggregation-and-send pass.
//
// The stages run strictly in order: fetch, attach, send, link (only when
// attachments were created) and count. Any failure ends the run; the result
// reports the last stage that completed.
//
//nolint:gocyclo // Sequential orchestration with one exit per stage
func (s *RelayService) Run(ctx context.Context, inv domain.Invocation) (*domain.RelayResult, error) {
	if inv.Rollback == "" {
		inv.Rollback = s.defaultRollback
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	result := &domain.RelayResult{MessageID: inv.TargetMessage.ID}
	logger.Section("Relay " + inv.TargetMessage.String())

	// 1. Resolve the records the run depends on
	contact, err := s.contacts.Get(ctx, inv.PrimaryEntity.ID)
	if err != nil {
		return result, fmt.Errorf("retrieve contact %s: %w", inv.PrimaryEntity.ID, err)
	}
	msg, err := s.messages.Get(ctx, inv.TargetMessage.ID)
	if err != nil {
		return result, fmt.Errorf("retrieve email %s: %w", inv.TargetMessage.ID, err)
	}
	if _, err := s.users.Get(ctx, inv.InitiatingUserID); err != nil {
		return result, fmt.Errorf("retrieve user %s: %w", inv.InitiatingUserID, err)
	}
	result.Stage = domain.StageFetched

	// 2. Copy note files onto the email
	notes, err := s.collector.Collect(ctx, contact.ID)
	if err != nil {
		return result, err
	}
	materialized, err := s.materializer.Materialize(ctx, notes, msg.Reference())
	result.AttachmentIDs = materialized.AttachmentIDs
	if err != nil {
		return result, s.abort(ctx, inv.Rollback, result, err)
	}
	result.Stage = domain.StageAttached
	logger.Info("Created %d attachments on %s", len(result.AttachmentIDs), msg.ID)

	// 3. Send immediately
	resp, err := s.dispatcher.Send(ctx, domain.SendRequest{EmailID: msg.ID, IssueSend: true})
	if err != nil {
		if !errors.Is(err, domain.ErrDispatchFailed) && !errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: %w", domain.ErrDispatchFailed, err)
		}
		return result, s.abort(ctx, inv.Rollback, result, fmt.Errorf("send email %s: %w", msg.ID, err))
	}
	result.Stage = domain.StageSent
	if resp != nil && resp.StatusErr != nil {
		result.StatusUnrecorded = true
		logger.Warn("Sent %s but its status was not stored: %v", msg.ID, resp.StatusErr)
	} else {
		logger.Info("Sent %s", msg.ID)
	}

	// 4. Link the email to the initiator when it carries note files
	if materialized.AttachmentsExist() {
		if err := s.messages.SetAssociatedUser(ctx, msg.ID, inv.Initiator()); err != nil {
			return result, writeError("link email "+msg.ID+" to initiator", err)
		}
		result.Linked = true
		result.Stage = domain.StageLinked
	}

	// 5. Bump the initiator's send counter
	count, err := s.users.IncrementSendCount(ctx, inv.InitiatingUserID)
	if err != nil {
		return result, writeError("update send count for "+inv.InitiatingUserID, err)
	}
	result.SendCount = count
	result.Stage = domain.StageCounted
	logger.Info("User %s send count is now %d", inv.InitiatingUserID, count)

	return result, nil
}

// abort applies the rollback policy to attachments created in this run and
// returns cause, joined with any cleanup failures.
func (s *RelayService) abort(
	ctx context.Context,
	policy domain.RollbackPolicy,
	result *domain.RelayResult,
	cause error,
) error {
	if policy != domain.RollbackCleanup || len(result.AttachmentIDs) == 0 {
		return cause
	}

	// Cleanup must run even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)

	errs := []error{cause}
	for _, id := range result.AttachmentIDs {
		if err := s.attachments.Delete(ctx, id); err != nil {
			logger.Warn("Failed to remove attachment %s: %v", id, err)
			errs = append(errs, fmt.Errorf("remove attachment %s: %w", id, err))
			continue
		}
		result.RemovedAttachmentIDs = append(result.RemovedAttachmentIDs, id)
	}
	logger.Info("Removed %d of %d attachments after failure",
		len(result.RemovedAttachmentIDs), len(result.AttachmentIDs))

	return errors.Join(errs...)
}

// writeError wraps a store write failure, leaving not-found errors unwrapped.
func writeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteFailed, err)
}
