package mcp

import (
	"context"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driving"
)

// mockRelay is a mock implementation of driving.AttachmentRelay.
type mockRelay struct {
	got    domain.Invocation
	result *domain.RelayResult
	err    error
}

func (m *mockRelay) Run(_ context.Context, inv domain.Invocation) (*domain.RelayResult, error) {
	m.got = inv
	return m.result, m.err
}

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	details *driving.MessageDetails
	user    *domain.User
	err     error
}

func (m *mockRecordService) Import(_ context.Context, _ domain.RecordSet) error {
	return m.err
}

func (m *mockRecordService) MessageDetails(_ context.Context, _ string) (*driving.MessageDetails, error) {
	return m.details, m.err
}

func (m *mockRecordService) User(_ context.Context, _ string) (*domain.User, error) {
	return m.user, m.err
}
