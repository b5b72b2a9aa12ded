package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
	"github.com/custodia-labs/notecourier/internal/logger"
)

// NoteCollector fetches the notes owned by a source record.
type NoteCollector struct {
	notes driven.NoteStore
}

// NewNoteCollector creates a collector backed by the given note store.
func NewNoteCollector(notes driven.NoteStore) *NoteCollector {
	return &NoteCollector{notes: notes}
}

// Collect returns the notes whose owning object is sourceID.
// An empty slice means there is nothing to attach and is not an error.
func (c *NoteCollector) Collect(ctx context.Context, sourceID string) ([]domain.Note, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("%w: source id is required", domain.ErrInvalidInput)
	}

	notes, err := c.notes.ListByObject(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: list notes for %s: %w", domain.ErrQueryFailed, sourceID, err)
	}

	logger.Debug("Collected %d notes for %s", len(notes), sourceID)
	return notes, nil
}
