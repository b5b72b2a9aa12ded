package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notecourier/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the relay's failure policy and dispatch mode.

SMTP connection details are read from the [smtp] table of config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsRollbackCmd = &cobra.Command{
	Use:   "rollback [none|cleanup]",
	Short: "Set the default failure policy",
	Long: `Set what happens to attachments when a run fails before the email is sent.

  none    - keep attachments that were already created (default)
  cleanup - remove them on a best-effort basis`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsRollback,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode [record|smtp]",
	Short: "Set the dispatch mode",
	Long: `Set how emails are dispatched.

  record - mark the email as sent in the record store only (default)
  smtp   - deliver over SMTP, then mark as sent`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsMode,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsRollbackCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Relay]")
	cmd.Printf("  Rollback: %s\n", settings.Relay.Rollback)
	cmd.Println()

	cmd.Println("[Dispatch]")
	cmd.Printf("  Mode: %s\n", settings.Dispatch.Mode.Description())
	if settings.Dispatch.RatePerSecond > 0 {
		cmd.Printf("  Rate: %.2f/s (burst %d)\n", settings.Dispatch.RatePerSecond, settings.Dispatch.Burst)
	} else {
		cmd.Println("  Rate: unlimited")
	}
	cmd.Println()

	cmd.Println("[SMTP]")
	cmd.Printf("  Host: %s:%d\n", orNone(settings.SMTP.Host), settings.SMTP.Port)
	cmd.Printf("  From: %s\n", orNone(settings.SMTP.From))
	cmd.Printf("  TLS: %s\n", settings.SMTP.TLS)
	if settings.SMTP.Username != "" {
		cmd.Printf("  Username: %s\n", settings.SMTP.Username)
		cmd.Printf("  Password: %s\n", maskSecret(settings.SMTP.Password))
	}
	status := "configured"
	if !settings.SMTP.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsRollback(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	policy := domain.RollbackPolicy(strings.ToLower(args[0]))
	if err := settingsService.SetRollbackPolicy(policy); err != nil {
		return fmt.Errorf("failed to set rollback policy: %w", err)
	}
	cmd.Printf("Rollback policy set to: %s\n", policy)
	return nil
}

func runSettingsMode(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	mode := domain.DispatchMode(strings.ToLower(args[0]))
	if err := settingsService.SetDispatchMode(mode); err != nil {
		return fmt.Errorf("failed to set dispatch mode: %w", err)
	}
	cmd.Printf("Dispatch mode set to: %s\n", mode.Description())
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

// maskSecret hides all but the edges of a credential.
func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
