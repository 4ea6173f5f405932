package commands

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steve-o/gomi/internal/adminws"
	"github.com/steve-o/gomi/internal/config"
	"github.com/steve-o/gomi/internal/democlient"
	"github.com/steve-o/gomi/internal/logging"
	"github.com/steve-o/gomi/internal/orchestrator"
	"github.com/steve-o/gomi/internal/tickstore"
	"github.com/steve-o/gomi/internal/tickstore/memstore"
	"github.com/steve-o/gomi/internal/wire"
)

var (
	serveConfigPath string
	serveFixture    bool
	serveAdminAddr  string
)

// ServeCmd starts the orchestrator: the worker pool, the provider, and
// the admin telemetry endpoint. The wire session itself — accepting
// connections and decoding RDM requests into wire.Event — is supplied
// by the external codec library named in spec.md §1's Non-goals; this
// command only constructs and runs everything on gomi's side of that
// boundary.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gomi provider",
	RunE:  runServe,
}

func init() {
	ServeCmd.Flags().StringVar(&serveConfigPath, "config", "gomi.yaml", "path to configuration file")
	ServeCmd.Flags().BoolVar(&serveFixture, "fixture", false, "use an in-memory tick-store fixture instead of the production adapter")
	ServeCmd.Flags().StringVar(&serveAdminAddr, "admin-addr", ":8090", "listen address for the admin telemetry endpoint")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zapLogger.Sync()
	log := logging.NewZap(zapLogger)

	var adapter tickstore.Adapter
	var fixtureSymbols []string
	if serveFixture {
		adapter = fixtureStore()
		fixtureSymbols = []string{"IBM.N", "MSFT.O"}
		log.Info("serve: using in-memory fixture tick-store")
	} else {
		return fmt.Errorf("serve: no production tickstore.Adapter wired; run with --fixture for the development mode, or link a production adapter in a fork of this command")
	}

	transport := &loggingTransport{log: log}

	orch, err := orchestrator.New(cfg, transport, adapter, log)
	if err != nil {
		return fmt.Errorf("construct orchestrator: %w", err)
	}

	orch.Start(cmd.Context())

	if serveFixture {
		driver := &democlient.Driver{Orch: orch, Log: log, Symbols: fixtureSymbols}
		go democlient.RunOnce(cmd.Context(), driver, 0)
	}

	admin := adminws.New(orch.Cool, log, 5*time.Second)
	mux := http.NewServeMux()
	mux.Handle("/admin/cool", admin)
	adminServer := &http.Server{Addr: serveAdminAddr, Handler: mux}

	adminErrCh := make(chan error, 1)
	go func() {
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			adminErrCh <- err
		}
	}()

	log.Info("serve: gomi running", "admin_addr", serveAdminAddr, "workers", cfg.WorkerCount)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-adminErrCh:
		return fmt.Errorf("admin listener: %w", err)
	case <-sigCh:
		log.Info("serve: shutting down")
	}

	orch.Shutdown()
	return adminServer.Close()
}

// loggingTransport is a provider.Transport stand-in for the external
// wire session library. It logs every outgoing response rather than
// writing it to a connection, since the codec/session library itself is
// out of scope (spec.md §1 Non-goals); a production deployment supplies
// its own Transport wired to that library instead of this one.
type loggingTransport struct {
	log logging.Logger
}

func (t *loggingTransport) Send(handle string, status wire.Status, payload interface{}) error {
	t.log.Info("transport: send", "handle", handle, "status_code", status.Code, "payload", payload)
	return nil
}

// fixtureStore builds a small in-memory tick-store with a handful of
// symbols so "serve --fixture" has something to compute bins against.
func fixtureStore() *memstore.Store {
	store := memstore.New()
	now := time.Now().Unix()
	day := int64(86400)
	for i := int64(29); i >= 0; i-- {
		at := now - i*day
		store.PutTrade("IBM.N", at, 130.0+float64(i%5), 1000+uint64(i)*10)
		store.PutTrade("MSFT.O", at, 310.0+float64(i%7), 2000+uint64(i)*15)
	}
	return store
}
