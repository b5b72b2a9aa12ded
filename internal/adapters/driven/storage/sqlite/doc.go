// Package sqlite provides a unified SQLite-based implementation of the record store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every record store
// interface through a single database connection:
//
//   - ContactStore: Contact records
//   - NoteStore: Annotations, queried by owning object
//   - MessageStore: Outgoing emails and their dispatch status
//   - AttachmentStore: Email attachments
//   - UserStore: System users and their send counters
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Nullable columns map to domain.Optional values, so an absent note field
// stays absent on the attachment created from it.
//
// # Data Location
//
// By default, the database is stored at ~/.notecourier/data/records.db
//
// # Thread Safety
//
// All operations are thread-safe. The send counter is incremented with a single
// UPDATE ... RETURNING statement, so concurrent relay runs for the same user
// never lose an increment.
package sqlite
