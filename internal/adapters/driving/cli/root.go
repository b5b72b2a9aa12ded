package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notecourier/internal/core/ports/driving"
	"github.com/custodia-labs/notecourier/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Options carries the global flags into Bootstrap.
type Options struct {
	DataDir   string
	ConfigDir string
}

// Services bundles the driving ports the commands use.
type Services struct {
	Relay    driving.AttachmentRelay
	Records  driving.RecordService
	Settings driving.SettingsService

	// Close releases resources held by the services. May be nil.
	Close func() error
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	relayService    driving.AttachmentRelay
	recordService   driving.RecordService
	settingsService driving.SettingsService

	bootstrap    Bootstrap
	closeService func() error

	verbose   bool
	dataDir   string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "notecourier",
	Short: "Send a contact's notes as email attachments",
	Long: `notecourier copies the file notes owned by a contact onto an email,
sends the email, links it to the user who triggered the run and counts
the send against that user.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable diagnostic logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "record store directory (default ~/.notecourier/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.notecourier)")
}

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command and releases services even when it fails.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardown(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || !needsServices(cmd) {
		return nil
	}

	svc, err := bootstrap(cmd.Context(), Options{DataDir: dataDir, ConfigDir: configDir})
	if err != nil {
		return err
	}
	relayService = svc.Relay
	recordService = svc.Records
	settingsService = svc.Settings
	closeService = svc.Close
	return nil
}

func teardown() error {
	if closeService == nil {
		return nil
	}
	err := closeService()
	closeService = nil
	if err != nil {
		return fmt.Errorf("close services: %w", err)
	}
	return nil
}

// needsServices reports whether cmd touches the record store or config.
func needsServices(cmd *cobra.Command) bool {
	switch {
	case !cmd.HasParent(), cmd == versionCmd, cmd.Name() == "help":
		return false
	case cmd.HasParent() && cmd.Parent().Name() == "completion":
		return false
	default:
		return true
	}
}
