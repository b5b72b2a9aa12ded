// Package domain defines the core business entities for notecourier.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Contact: The record whose notes are aggregated
//   - Note: A free-form annotation, optionally carrying a file
//   - Message: The outgoing email being dispatched
//   - Attachment: A file record linked to a message, materialised from a note
//   - User: The initiating identity and its send counter
//   - Invocation: The explicit context a host passes to a relay run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
