package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

// RelayInput is the input schema for the relay_notes tool.
type RelayInput struct {
	ContactID string `json:"contact_id" jsonschema:"contact whose notes are attached"`
	UserID    string `json:"user_id" jsonschema:"user who initiated the run"`
	MessageID string `json:"message_id" jsonschema:"email that receives the attachments"`
	Rollback  string `json:"rollback,omitempty" jsonschema:"none or cleanup; defaults to the configured policy"`
}

// RelayOutput is the output schema for the relay_notes tool.
type RelayOutput struct {
	MessageID            string   `json:"message_id"`
	Stage                string   `json:"stage"`
	AttachmentIDs        []string `json:"attachment_ids"`
	RemovedAttachmentIDs []string `json:"removed_attachment_ids,omitempty"`
	Linked               bool     `json:"linked"`
	SendCount            int64    `json:"send_count,omitempty"`
	StatusUnrecorded     bool     `json:"status_unrecorded,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "relay_notes",
		Description: "Attach every note of a contact to an email, send it, link it to the " +
			"initiating user and count the send. Not idempotent: each call attaches and sends again.",
	}, s.handleRelay)
}

// handleRelay handles the relay_notes tool invocation.
func (s *Server) handleRelay(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RelayInput,
) (*mcp.CallToolResult, RelayOutput, error) {
	inv := domain.Invocation{
		PrimaryEntity:    domain.NewReference(domain.EntityContact, input.ContactID),
		InitiatingUserID: input.UserID,
		TargetMessage:    domain.NewReference(domain.EntityEmail, input.MessageID),
		Rollback:         domain.RollbackPolicy(strings.ToLower(input.Rollback)),
	}

	result, err := s.ports.Relay.Run(ctx, inv)
	if err != nil {
		return nil, RelayOutput{}, err
	}

	return nil, toRelayOutput(result), nil
}

func toRelayOutput(r *domain.RelayResult) RelayOutput {
	ids := r.AttachmentIDs
	if ids == nil {
		ids = []string{}
	}
	return RelayOutput{
		MessageID:            r.MessageID,
		Stage:                r.Stage.String(),
		AttachmentIDs:        ids,
		RemovedAttachmentIDs: r.RemovedAttachmentIDs,
		Linked:               r.Linked,
		SendCount:            r.SendCount,
		StatusUnrecorded:     r.StatusUnrecorded,
	}
}
