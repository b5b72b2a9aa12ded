package mcp

import (
	"github.com/custodia-labs/notecourier/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Relay runs the attach-and-send workflow.
	Relay driving.AttachmentRelay

	// Records reads emails and users. Optional; resources report not found without it.
	Records driving.RecordService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Relay == nil {
		return ErrMissingRelayService
	}
	return nil
}
