// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ContactStore: Source record lookup
//   - NoteStore: Note queries by owning record
//   - MessageStore: Outgoing message persistence
//   - AttachmentStore: Attachment persistence
//   - UserStore: Initiator lookup and atomic send counter
//   - MessageDispatcher: Hands a message to the messaging subsystem
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
