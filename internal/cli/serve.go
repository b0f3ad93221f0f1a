package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kobo-ledger/kobo/internal/api"
	"github.com/kobo-ledger/kobo/internal/app/queue"
	"github.com/kobo-ledger/kobo/internal/daemon"
	"github.com/kobo-ledger/kobo/internal/infra/connectivity"
	"github.com/kobo-ledger/kobo/internal/infra/kvstore"
	"github.com/kobo-ledger/kobo/internal/infra/notify"
	"github.com/kobo-ledger/kobo/internal/infra/remote"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the kobo daemon",
	Long: `Run the kobo daemon: the HTTP API, the persistent offline queue, and the
connectivity prober. On shutdown the daemon attempts one final flush.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = daemon.DefaultConfigPath()
	}
	cfg, err := daemon.LoadConfig(path)
	if err != nil {
		return err
	}
	if cfg.Sync.EndpointURL == "" {
		return fmt.Errorf("sync.endpoint_url is not configured (set it in %s)", path)
	}

	storePath, err := cfg.StorePath()
	if err != nil {
		return err
	}
	store, err := kvstore.OpenSQLite(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	endpoint := remote.NewHTTPEndpoint(cfg.Sync.EndpointURL, nil)

	qcfg := queue.Config{
		RecordTimeout: cfg.RecordTimeout(),
		EscalateAfter: cfg.Sync.EscalateAfter,
	}
	q := queue.New(qcfg, store, endpoint, notify.LogSink{})
	if err := q.Open(); err != nil {
		return err
	}

	// With no health URL there is nothing to probe; assume reachable and
	// let failed direct submits fall back to the queue.
	var monitor connectivity.Monitor
	if cfg.Connectivity.HealthURL != "" {
		prober := connectivity.NewProber(connectivity.ProberConfig{
			HealthURL: cfg.Connectivity.HealthURL,
			Interval:  cfg.ProbeInterval(),
		})
		q.BindMonitor(prober)
		prober.Start()
		defer prober.Stop()
		monitor = prober
	} else {
		monitor = connectivity.NewManual(true)
	}

	// Retry queued fallbacks on a timer too, so records drain even when no
	// connectivity transition ever fires.
	q.StartPeriodicFlush(cfg.FlushInterval())

	server := api.NewServer(q, endpoint, monitor)
	if cfg.API.Metrics {
		server.EnableMetrics()
	}

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[daemon] listening on %s (pending=%d)", cfg.ListenAddr(), q.Stats().Pending)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		log.Printf("[daemon] received %v, shutting down", s)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[daemon] http shutdown: %v", err)
	}

	// Best-effort final flush so a clean shutdown leaves as little queued
	// as the network allows.
	if report, err := q.Flush(shutdownCtx); err == nil {
		log.Printf("[daemon] final flush: synced=%d failed=%d", report.Succeeded, len(report.Failed))
	}
	return q.Close()
}
