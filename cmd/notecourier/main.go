// Command notecourier attaches a contact's notes to an email and sends it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/notecourier/internal/adapters/driven/config/file"
	"github.com/custodia-labs/notecourier/internal/adapters/driven/dispatch"
	"github.com/custodia-labs/notecourier/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/notecourier/internal/adapters/driving/cli"
	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driving"
	"github.com/custodia-labs/notecourier/internal/core/services"
	"github.com/custodia-labs/notecourier/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetBootstrap(bootstrap)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	logger.Debug("Record store at %s", store.Path())

	var relay driving.AttachmentRelay
	dispatcher, err := dispatch.New(*settings, store.MessageStore(), store.AttachmentStore())
	if err != nil {
		// Settings commands must still work so the configuration can be fixed.
		logger.Warn("Dispatcher unavailable: %v", err)
		relay = unavailableRelay{err: err}
	} else {
		rs := services.NewRelayService(
			store.ContactStore(),
			store.NoteStore(),
			store.MessageStore(),
			store.AttachmentStore(),
			store.UserStore(),
			dispatcher,
		)
		rs.SetDefaultRollback(settings.Relay.Rollback)
		relay = rs
	}

	records := services.NewRecordService(
		store.ContactStore(),
		store.NoteStore(),
		store.MessageStore(),
		store.AttachmentStore(),
		store.UserStore(),
	)

	return &cli.Services{
		Relay:    relay,
		Records:  records,
		Settings: settingsService,
		Close:    store.Close,
	}, nil
}

// unavailableRelay reports why no dispatcher could be built.
type unavailableRelay struct {
	err error
}

func (r unavailableRelay) Run(context.Context, domain.Invocation) (*domain.RelayResult, error) {
	return nil, fmt.Errorf("%w: dispatcher unavailable: %w", domain.ErrDispatchFailed, r.err)
}
