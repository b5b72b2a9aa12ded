package domain

import "fmt"

// RollbackPolicy decides what happens to attachments already created
// when a later step of the same run fails.
type RollbackPolicy string

// Available rollback policies.
const (
	// RollbackNone keeps attachments written before a failure (at-least-once).
	RollbackNone RollbackPolicy = "none"

	// RollbackCleanup deletes attachments created in the failed run on a
	// best-effort basis. Applies to materialisation and dispatch failures only.
	RollbackCleanup RollbackPolicy = "cleanup"
)

// IsValid returns true if the policy is recognised.
func (p RollbackPolicy) IsValid() bool {
	switch p {
	case RollbackNone, RollbackCleanup:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p RollbackPolicy) String() string {
	return string(p)
}

// Invocation is the context a host supplies for one relay run.
type Invocation struct {
	// PrimaryEntity is the record the workflow runs against (a contact).
	PrimaryEntity EntityReference

	// InitiatingUserID identifies the user who triggered the workflow.
	InitiatingUserID string

	// TargetMessage is the email that receives the attachments.
	TargetMessage EntityReference

	// Rollback selects the partial-failure policy. Empty means RollbackNone.
	Rollback RollbackPolicy
}

// Validate checks that every required field is present and typed correctly.
func (i Invocation) Validate() error {
	if i.PrimaryEntity.ID == "" {
		return fmt.Errorf("%w: primary entity id is required", ErrInvalidInput)
	}
	if i.PrimaryEntity.LogicalName != EntityContact {
		return fmt.Errorf("%w: primary entity must be a %s, got %q",
			ErrInvalidInput, EntityContact, i.PrimaryEntity.LogicalName)
	}
	if i.InitiatingUserID == "" {
		return fmt.Errorf("%w: initiating user id is required", ErrInvalidInput)
	}
	if i.TargetMessage.ID == "" {
		return fmt.Errorf("%w: target message id is required", ErrInvalidInput)
	}
	if i.TargetMessage.LogicalName != EntityEmail {
		return fmt.Errorf("%w: target message must be an %s, got %q",
			ErrInvalidInput, EntityEmail, i.TargetMessage.LogicalName)
	}
	if i.Rollback != "" && !i.Rollback.IsValid() {
		return fmt.Errorf("%w: unknown rollback policy %q", ErrInvalidInput, i.Rollback)
	}
	return nil
}

// Initiator returns a systemuser reference to the initiating user.
func (i Invocation) Initiator() EntityReference {
	return NewReference(EntitySystemUser, i.InitiatingUserID)
}

// Stage is the furthest point a relay run reached.
type Stage string

// Relay stages, in order.
const (
	StageFetched  Stage = "fetched"
	StageAttached Stage = "attached"
	StageSent     Stage = "sent"
	StageLinked   Stage = "linked"
	StageCounted  Stage = "counted"
)

// String returns the string representation.
func (s Stage) String() string {
	if s == "" {
		return "pending"
	}
	return string(s)
}

// IsTerminal reports whether the run completed.
func (s Stage) IsTerminal() bool {
	return s == StageCounted
}

// RelayResult describes the outcome of one relay run.
type RelayResult struct {
	// MessageID is the dispatched message.
	MessageID string

	// AttachmentIDs lists the attachments created in this run.
	AttachmentIDs []string

	// RemovedAttachmentIDs lists attachments deleted by the cleanup policy.
	RemovedAttachmentIDs []string

	// Linked is true when the message was linked to the initiator.
	Linked bool

	// SendCount is the initiator's counter after the run.
	SendCount int64

	// StatusUnrecorded is true when the message went out but the store
	// still holds its pre-send status.
	StatusUnrecorded bool

	// Stage is the furthest stage reached.
	Stage Stage
}

// AttachmentsExist reports whether the run created at least one attachment.
func (r *RelayResult) AttachmentsExist() bool {
	return len(r.AttachmentIDs) > 0
}

// SendRequest asks the messaging subsystem to dispatch a message.
type SendRequest struct {
	// EmailID identifies the message to send.
	EmailID string

	// IssueSend requests immediate delivery. False defers the message.
	IssueSend bool

	// TrackingToken is stamped on the message when non-empty.
	TrackingToken string
}

// SendResponse is returned by a successful dispatch.
type SendResponse struct {
	// Subject is the subject of the dispatched message.
	Subject string

	// Status is the message status after dispatch.
	Status MessageStatus

	// StatusErr is set when the message was delivered but its new status
	// could not be stored. The send itself succeeded and must not be retried.
	StatusErr error
}
