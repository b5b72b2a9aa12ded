package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

const uriScheme = "notecourier://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "emails/{emailId}",
		Name:        "email",
		Description: "An email with its attachment metadata",
		MIMEType:    "application/json",
	}, s.handleEmailResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "users/{userId}",
		Name:        "user",
		Description: "A user and their send count",
		MIMEType:    "application/json",
	}, s.handleUserResource)
}

type attachmentInfo struct {
	ID       string `json:"id"`
	Subject  string `json:"subject,omitempty"`
	FileName string `json:"filename,omitempty"`
	MimeType string `json:"mimetype,omitempty"`
}

type emailInfo struct {
	ID             string           `json:"id"`
	Subject        string           `json:"subject"`
	To             []string         `json:"to,omitempty"`
	Status         string           `json:"status"`
	AssociatedUser string           `json:"associated_user,omitempty"`
	SentAt         *time.Time       `json:"sent_at,omitempty"`
	Attachments    []attachmentInfo `json:"attachments"`
}

type userInfo struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name,omitempty"`
	SendEmailsCount *int64 `json:"send_emails_count"`
}

// handleEmailResource returns an email and its attachments without bodies.
func (s *Server) handleEmailResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractID(req.Params.URI, "emails/")
	if s.ports.Records == nil || id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	details, err := s.ports.Records.MessageDetails(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting email: %w", err)
	}

	msg := details.Message
	info := emailInfo{
		ID:          msg.ID,
		Subject:     msg.Subject,
		To:          msg.To,
		Status:      msg.Status.String(),
		SentAt:      msg.SentAt.Ptr(),
		Attachments: make([]attachmentInfo, len(details.Attachments)),
	}
	if user, ok := msg.AssociatedUser.Get(); ok {
		info.AssociatedUser = user.String()
	}
	for i, att := range details.Attachments {
		info.Attachments[i] = attachmentInfo{
			ID:       att.ID,
			Subject:  att.Subject.OrElse(""),
			FileName: att.FileName.OrElse(""),
			MimeType: att.MimeType.OrElse(""),
		}
	}

	return jsonResource(req.Params.URI, info)
}

// handleUserResource returns a user record.
func (s *Server) handleUserResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractID(req.Params.URI, "users/")
	if s.ports.Records == nil || id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	user, err := s.ports.Records.User(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return jsonResource(req.Params.URI, userInfo{
		ID:              user.ID,
		FullName:        user.FullName,
		SendEmailsCount: user.SendEmailsCount.Ptr(),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractID returns the single path segment after uriScheme+kind,
// e.g. notecourier://emails/{id}.
func extractID(uri, kind string) string {
	prefix := uriScheme + kind
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
