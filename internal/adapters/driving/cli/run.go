package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

var (
	runContactID string
	runUserID    string
	runMessageID string
	runRollback  string
	runTimeout   time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attach a contact's notes to an email and send it",
	Long: `Runs one relay pass: every note owned by the contact is copied onto the
email as an attachment, the email is sent, linked to the initiating user
when it carries attachments, and the user's send count is incremented.

Running twice attaches the notes again and sends again.`,
	Args: cobra.NoArgs,
	RunE: runRelay,
}

func init() {
	runCmd.Flags().StringVar(&runContactID, "contact", "", "contact whose notes are attached (required)")
	runCmd.Flags().StringVar(&runUserID, "user", "", "initiating user (required)")
	runCmd.Flags().StringVar(&runMessageID, "message", "", "email that receives the attachments (required)")
	runCmd.Flags().StringVar(&runRollback, "rollback", "",
		"on failure: none keeps attachments, cleanup removes them (default from settings)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort the run after this long (0 disables)")
	rootCmd.AddCommand(runCmd)
}

func runRelay(cmd *cobra.Command, _ []string) error {
	if relayService == nil {
		return errors.New("relay service not configured")
	}

	inv := domain.Invocation{
		PrimaryEntity:    domain.NewReference(domain.EntityContact, runContactID),
		InitiatingUserID: runUserID,
		TargetMessage:    domain.NewReference(domain.EntityEmail, runMessageID),
		Rollback:         domain.RollbackPolicy(strings.ToLower(runRollback)),
	}

	ctx := cmd.Context()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	result, err := relayService.Run(ctx, inv)
	if result != nil {
		printRelayResult(cmd, result)
	}
	if err != nil {
		return fmt.Errorf("relay failed: %w", err)
	}
	return nil
}

func printRelayResult(cmd *cobra.Command, result *domain.RelayResult) {
	cmd.Printf("Email:       %s\n", result.MessageID)
	cmd.Printf("Stage:       %s\n", result.Stage)
	cmd.Printf("Attachments: %d\n", len(result.AttachmentIDs))
	for _, id := range result.AttachmentIDs {
		cmd.Printf("  - %s\n", id)
	}
	if len(result.RemovedAttachmentIDs) > 0 {
		cmd.Printf("Removed:     %d\n", len(result.RemovedAttachmentIDs))
	}
	if result.Linked {
		cmd.Println("Linked:      yes")
	} else {
		cmd.Println("Linked:      no")
	}
	if result.StatusUnrecorded {
		cmd.Println("Warning:     email was delivered but its sent status was not stored")
	}
	if result.Stage.IsTerminal() {
		cmd.Printf("Send count:  %d\n", result.SendCount)
	}
}
