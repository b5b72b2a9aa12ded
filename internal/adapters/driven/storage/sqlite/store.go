package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/notecourier/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all record store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.notecourier/data/records.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".notecourier", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "records.db")

	// WAL lets concurrent readers proceed while a relay run writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ContactStore returns a ContactStore interface backed by this store.
func (s *Store) ContactStore() driven.ContactStore {
	return &contactStore{store: s}
}

// NoteStore returns a NoteStore interface backed by this store.
func (s *Store) NoteStore() driven.NoteStore {
	return &noteStore{store: s}
}

// MessageStore returns a MessageStore interface backed by this store.
func (s *Store) MessageStore() driven.MessageStore {
	return &messageStore{store: s}
}

// AttachmentStore returns an AttachmentStore interface backed by this store.
func (s *Store) AttachmentStore() driven.AttachmentStore {
	return &attachmentStore{store: s}
}

// UserStore returns a UserStore interface backed by this store.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{store: s}
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Contact Store ====================

// contactStore implements driven.ContactStore.
type contactStore struct {
	store *Store
}

var _ driven.ContactStore = (*contactStore)(nil)

// Get retrieves a contact by ID.
func (s *contactStore) Get(ctx context.Context, id string) (*domain.Contact, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, full_name, email_address, created_at FROM contacts WHERE id = ?
	`, id)

	var c domain.Contact
	if err := row.Scan(&c.ID, &c.FullName, &c.EmailAddress, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning contact: %w", err)
	}
	return &c, nil
}

// Save stores or updates a contact.
func (s *contactStore) Save(ctx context.Context, c domain.Contact) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO contacts (id, full_name, email_address, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			email_address = excluded.email_address
	`, c.ID, c.FullName, c.EmailAddress, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving contact: %w", err)
	}
	return nil
}

// ==================== Note Store ====================

// noteStore implements driven.NoteStore.
type noteStore struct {
	store *Store
}

var _ driven.NoteStore = (*noteStore)(nil)

// ListByObject returns notes owned by objectID, oldest first.
// Only the columns in domain.NoteColumns are selected.
func (s *noteStore) ListByObject(ctx context.Context, objectID string) ([]domain.Note, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, object_id, `+strings.Join(domain.NoteColumns, ", ")+`
		FROM annotations
		WHERE object_id = ?
		ORDER BY created_at, id
	`, objectID)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		var subject, mimeType, fileName, body sql.NullString
		if err := rows.Scan(&n.ID, &n.ObjectID, &subject, &mimeType, &fileName, &body); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		n.Subject = optionalString(subject)
		n.MimeType = optionalString(mimeType)
		n.FileName = optionalString(fileName)
		n.DocumentBody = optionalString(body)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

// Save stores or updates a note.
func (s *noteStore) Save(ctx context.Context, n domain.Note) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO annotations (id, object_id, subject, mimetype, filename, documentbody, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			object_id = excluded.object_id,
			subject = excluded.subject,
			mimetype = excluded.mimetype,
			filename = excluded.filename,
			documentbody = excluded.documentbody
	`, n.ID, n.ObjectID, nullString(n.Subject), nullString(n.MimeType),
		nullString(n.FileName), nullString(n.DocumentBody), n.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// ==================== Message Store ====================

// messageStore implements driven.MessageStore.
type messageStore struct {
	store *Store
}

var _ driven.MessageStore = (*messageStore)(nil)

// Get retrieves a message with every column.
func (s *messageStore) Get(ctx context.Context, id string) (*domain.Message, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, subject, description, sender, recipients, status,
			associated_user_type, associated_user_id, tracking_token,
			sent_at, created_at, modified_at
		FROM emails WHERE id = ?
	`, id)

	var m domain.Message
	var recipients, status string
	var userType, userID sql.NullString
	var sentAt sql.NullTime
	if err := row.Scan(&m.ID, &m.Subject, &m.Description, &m.From, &recipients, &status,
		&userType, &userID, &m.TrackingToken, &sentAt, &m.CreatedAt, &m.ModifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning email: %w", err)
	}

	if err := json.Unmarshal([]byte(recipients), &m.To); err != nil {
		return nil, fmt.Errorf("unmarshaling recipients: %w", err)
	}
	m.Status = domain.MessageStatus(status)
	if userID.Valid {
		m.AssociatedUser = domain.Some(domain.NewReference(userType.String, userID.String))
	}
	if sentAt.Valid {
		m.SentAt = domain.Some(sentAt.Time)
	}
	return &m, nil
}

// Save stores or updates a message.
func (s *messageStore) Save(ctx context.Context, m domain.Message) error {
	recipients, err := json.Marshal(m.To)
	if err != nil {
		return fmt.Errorf("marshalling recipients: %w", err)
	}
	if m.To == nil {
		recipients = []byte("[]")
	}
	if m.Status == "" {
		m.Status = domain.MessageStatusDraft
	}

	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.ModifiedAt = now

	var userType, userID sql.NullString
	if ref, ok := m.AssociatedUser.Get(); ok {
		userType = sql.NullString{String: ref.LogicalName, Valid: true}
		userID = sql.NullString{String: ref.ID, Valid: true}
	}
	var sentAt sql.NullTime
	if t, ok := m.SentAt.Get(); ok {
		sentAt = sql.NullTime{Time: t, Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO emails (id, subject, description, sender, recipients, status,
			associated_user_type, associated_user_id, tracking_token, sent_at, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject = excluded.subject,
			description = excluded.description,
			sender = excluded.sender,
			recipients = excluded.recipients,
			status = excluded.status,
			associated_user_type = excluded.associated_user_type,
			associated_user_id = excluded.associated_user_id,
			tracking_token = excluded.tracking_token,
			sent_at = excluded.sent_at,
			modified_at = excluded.modified_at
	`, m.ID, m.Subject, m.Description, m.From, string(recipients), m.Status.String(),
		userType, userID, m.TrackingToken, sentAt, m.CreatedAt, m.ModifiedAt)
	if err != nil {
		return fmt.Errorf("saving email: %w", err)
	}
	return nil
}

// SetAssociatedUser links a message to a user.
func (s *messageStore) SetAssociatedUser(ctx context.Context, messageID string, user domain.EntityReference) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE emails SET associated_user_type = ?, associated_user_id = ?, modified_at = ?
		WHERE id = ?
	`, user.LogicalName, user.ID, time.Now().UTC(), messageID)
	if err != nil {
		return fmt.Errorf("updating email: %w", err)
	}
	return requireAffected(res)
}

// MarkDispatched records a dispatch outcome.
func (s *messageStore) MarkDispatched(
	ctx context.Context,
	messageID string,
	status domain.MessageStatus,
	trackingToken string,
	at time.Time,
) error {
	var sentAt sql.NullTime
	if status == domain.MessageStatusSent {
		sentAt = sql.NullTime{Time: at, Valid: true}
	}
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE emails SET
			status = ?,
			sent_at = COALESCE(?, sent_at),
			tracking_token = CASE WHEN ? = '' THEN tracking_token ELSE ? END,
			modified_at = ?
		WHERE id = ?
	`, status.String(), sentAt, trackingToken, trackingToken, at, messageID)
	if err != nil {
		return fmt.Errorf("marking email dispatched: %w", err)
	}
	return requireAffected(res)
}

// ==================== Attachment Store ====================

// attachmentStore implements driven.AttachmentStore.
type attachmentStore struct {
	store *Store
}

var _ driven.AttachmentStore = (*attachmentStore)(nil)

// Create stores a new attachment.
func (s *attachmentStore) Create(ctx context.Context, a domain.Attachment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO activitymimeattachments
			(id, object_id, object_type_code, subject, filename, body, mimetype, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ObjectID.ID, a.ObjectTypeCode, nullString(a.Subject), nullString(a.FileName),
		nullString(a.Body), nullString(a.MimeType), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating attachment: %w", err)
	}
	return nil
}

// Delete removes an attachment.
func (s *attachmentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM activitymimeattachments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}
	return nil
}

// ListByMessage returns attachments owned by a message, oldest first.
func (s *attachmentStore) ListByMessage(ctx context.Context, messageID string) ([]domain.Attachment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, object_id, object_type_code, subject, filename, body, mimetype, created_at
		FROM activitymimeattachments
		WHERE object_id = ?
		ORDER BY created_at, id
	`, messageID)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	var atts []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		var objectID string
		var subject, fileName, body, mimeType sql.NullString
		if err := rows.Scan(&a.ID, &objectID, &a.ObjectTypeCode, &subject, &fileName,
			&body, &mimeType, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		a.ObjectID = domain.NewReference(domain.EntityEmail, objectID)
		a.Subject = optionalString(subject)
		a.FileName = optionalString(fileName)
		a.Body = optionalString(body)
		a.MimeType = optionalString(mimeType)
		atts = append(atts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return atts, nil
}

// ==================== User Store ====================

// userStore implements driven.UserStore.
type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

// Get retrieves a user by ID.
func (s *userStore) Get(ctx context.Context, id string) (*domain.User, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, full_name, send_emails_count FROM systemusers WHERE id = ?
	`, id)

	var u domain.User
	var count sql.NullInt64
	if err := row.Scan(&u.ID, &u.FullName, &count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	if count.Valid {
		u.SendEmailsCount = domain.Some(count.Int64)
	}
	return &u, nil
}

// Save stores or updates a user.
func (s *userStore) Save(ctx context.Context, u domain.User) error {
	var count sql.NullInt64
	if n, ok := u.SendEmailsCount.Get(); ok {
		count = sql.NullInt64{Int64: n, Valid: true}
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO systemusers (id, full_name, send_emails_count)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			send_emails_count = excluded.send_emails_count
	`, u.ID, u.FullName, count)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// IncrementSendCount bumps the counter in a single statement so concurrent
// runs for the same user never lose an increment.
func (s *userStore) IncrementSendCount(ctx context.Context, userID string) (int64, error) {
	row := s.store.db.QueryRowContext(ctx, `
		UPDATE systemusers
		SET send_emails_count = COALESCE(send_emails_count, 0) + 1
		WHERE id = ?
		RETURNING send_emails_count
	`, userID)

	var count int64
	if err := row.Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("incrementing send count: %w", err)
	}
	return count, nil
}

// ==================== Helpers ====================

func nullString(o domain.Optional[string]) sql.NullString {
	v, ok := o.Get()
	return sql.NullString{String: v, Valid: ok}
}

func optionalString(ns sql.NullString) domain.Optional[string] {
	if !ns.Valid {
		return domain.None[string]()
	}
	return domain.Some(ns.String)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
