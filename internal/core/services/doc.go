// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The relay is split into three sequential stages:
//
//   - NoteCollector: reads the notes owned by the source contact
//   - AttachmentMaterializer: creates one email attachment per note
//   - RelayService: dispatches the email, links it to the initiator
//     when attachments were created, and bumps the send counter
package services
