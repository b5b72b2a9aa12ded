package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Inspect records",
}

var showMessageCmd = &cobra.Command{
	Use:   "message [id]",
	Short: "Show an email and its attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowMessage,
}

var showUserCmd = &cobra.Command{
	Use:   "user [id]",
	Short: "Show a user and their send count",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowUser,
}

func init() {
	showCmd.AddCommand(showMessageCmd)
	showCmd.AddCommand(showUserCmd)
	rootCmd.AddCommand(showCmd)
}

func runShowMessage(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	details, err := recordService.MessageDetails(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get email: %w", err)
	}

	msg := details.Message
	cmd.Printf("ID:       %s\n", msg.ID)
	cmd.Printf("Subject:  %s\n", msg.Subject)
	cmd.Printf("From:     %s\n", orNone(msg.From))
	cmd.Printf("To:       %s\n", orNone(strings.Join(msg.To, ", ")))
	cmd.Printf("Status:   %s\n", msg.Status)
	if user, ok := msg.AssociatedUser.Get(); ok {
		cmd.Printf("Linked:   %s\n", user)
	} else {
		cmd.Println("Linked:   (none)")
	}
	if at, ok := msg.SentAt.Get(); ok {
		cmd.Printf("Sent at:  %s\n", at.Format(time.RFC3339))
	}

	cmd.Printf("\nAttachments (%d)\n", len(details.Attachments))
	for _, att := range details.Attachments {
		cmd.Printf("  %s  %s  %s\n",
			att.ID,
			att.FileName.OrElse("(no file name)"),
			att.MimeType.OrElse("(no type)"))
	}
	return nil
}

func runShowUser(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	user, err := recordService.User(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	cmd.Printf("ID:          %s\n", user.ID)
	cmd.Printf("Name:        %s\n", orNone(user.FullName))
	if count, ok := user.SendEmailsCount.Get(); ok {
		cmd.Printf("Send count:  %d\n", count)
	} else {
		cmd.Println("Send count:  (unset)")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
