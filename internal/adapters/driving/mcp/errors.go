// Package mcp exposes the relay over the Model Context Protocol so a workflow
// host or assistant can trigger runs and inspect the resulting records.
package mcp

import "errors"

// ErrMissingRelayService is returned when the relay service is not provided.
var ErrMissingRelayService = errors.New("mcp: relay service is required")
