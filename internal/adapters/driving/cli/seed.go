package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Import records from a TOML fixture",
	Long: `Imports users, contacts, emails and notes from a TOML file.

Example:

  [[users]]
  id = "user-1"
  full_name = "Ada Lovelace"

  [[contacts]]
  id = "contact-1"
  full_name = "Charles Babbage"

  [[emails]]
  id = "email-1"
  subject = "Engine notes"
  to = ["charles@example.com"]

  [[notes]]
  id = "note-1"
  object_id = "contact-1"
  filename = "engine.txt"
  mimetype = "text/plain"
  documentbody = "aGVsbG8="

Note fields left out of the file stay unset. Existing records with the
same id are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// fixture mirrors the TOML layout accepted by seed.
type fixture struct {
	Users    []fixtureUser    `toml:"users"`
	Contacts []fixtureContact `toml:"contacts"`
	Emails   []fixtureEmail   `toml:"emails"`
	Notes    []fixtureNote    `toml:"notes"`
}

type fixtureUser struct {
	ID              string `toml:"id"`
	FullName        string `toml:"full_name"`
	SendEmailsCount *int64 `toml:"send_emails_count"`
}

type fixtureContact struct {
	ID           string `toml:"id"`
	FullName     string `toml:"full_name"`
	EmailAddress string `toml:"email_address"`
}

type fixtureEmail struct {
	ID          string   `toml:"id"`
	Subject     string   `toml:"subject"`
	Description string   `toml:"description"`
	From        string   `toml:"from"`
	To          []string `toml:"to"`
}

type fixtureNote struct {
	ID           string  `toml:"id"`
	ObjectID     string  `toml:"object_id"`
	Subject      *string `toml:"subject"`
	MimeType     *string `toml:"mimetype"`
	FileName     *string `toml:"filename"`
	DocumentBody *string `toml:"documentbody"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}
	set, err := parseFixture(data)
	if err != nil {
		return err
	}

	if err := recordService.Import(cmd.Context(), set); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d users, %d contacts, %d emails, %d notes.\n",
		len(set.Users), len(set.Contacts), len(set.Messages), len(set.Notes))
	return nil
}

// parseFixture decodes a TOML fixture. Unknown keys are rejected.
func parseFixture(data []byte) (domain.RecordSet, error) {
	var f fixture
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return domain.RecordSet{}, fmt.Errorf("%w: parse fixture: %w", domain.ErrInvalidInput, err)
	}

	var set domain.RecordSet
	for _, u := range f.Users {
		set.Users = append(set.Users, domain.User{
			ID:              u.ID,
			FullName:        u.FullName,
			SendEmailsCount: domain.FromPtr(u.SendEmailsCount),
		})
	}
	for _, c := range f.Contacts {
		set.Contacts = append(set.Contacts, domain.Contact{
			ID:           c.ID,
			FullName:     c.FullName,
			EmailAddress: c.EmailAddress,
		})
	}
	for _, e := range f.Emails {
		set.Messages = append(set.Messages, domain.Message{
			ID:          e.ID,
			Subject:     e.Subject,
			Description: e.Description,
			From:        e.From,
			To:          e.To,
		})
	}
	for _, n := range f.Notes {
		set.Notes = append(set.Notes, domain.Note{
			ID:           n.ID,
			ObjectID:     n.ObjectID,
			Subject:      domain.FromPtr(n.Subject),
			MimeType:     domain.FromPtr(n.MimeType),
			FileName:     domain.FromPtr(n.FileName),
			DocumentBody: domain.FromPtr(n.DocumentBody),
		})
	}
	return set, nil
}
