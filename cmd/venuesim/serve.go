package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/events"
	"github.com/quodfinancial/venue-simulator/internal/obslog"
	"github.com/quodfinancial/venue-simulator/internal/obsmetrics"
	"github.com/quodfinancial/venue-simulator/internal/persistence"
	"github.com/quodfinancial/venue-simulator/internal/tradingsystem"
)

var (
	logLevel  string
	logPretty bool
)

var (
	eventLogPath string
	eventLogSync bool
	serializer   string
	adminAddr    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a venue and keep it running until interrupted",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&eventLogPath, "event-log", "venuesim.events.log", "path to the durable audit log")
	serveCmd.Flags().BoolVar(&eventLogSync, "sync", false, "fsync every audit log append (slower, durable)")
	serveCmd.Flags().StringVar(&serializer, "serializer", "gob", "persistence serializer: gob or msgpack")
	serveCmd.Flags().StringVar(&adminAddr, "admin-addr", "", "address for the /healthz and /metrics admin server; empty disables it")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")
	serveCmd.Flags().BoolVar(&logPretty, "log-pretty", true, "human-readable console logging instead of JSON")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := obslog.New(obslog.Config{Level: logLevel, Pretty: logPretty})
	obslog.SetGlobal(log)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	auditLog, err := events.NewLog(events.Config{Path: eventLogPath, SyncMode: eventLogSync})
	if err != nil {
		return err
	}
	defer auditLog.Close()
	audit := events.NewBatcher(auditLog, 0, 0)

	var ser persistence.Serializer = persistence.GobSerializer{}
	if serializer == "msgpack" {
		ser = persistence.MsgpackSerializer{}
	}

	metrics := obsmetrics.New()

	facade, err := tradingsystem.New(cfg, demoInstruments(), ser, audit, log, metrics)
	if err != nil {
		return err
	}
	if err := facade.Start(); err != nil {
		return err
	}
	log.Info().Str("venue", cfg.VenueID).Int("instruments", len(demoInstruments())).Msg("venue started")

	var httpServer *http.Server
	if adminAddr != "" {
		httpServer = &http.Server{Addr: adminAddr, Handler: adminRouter()}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Err(err).Msg("admin server error")
			}
		}()
		log.Info().Str("addr", adminAddr).Msg("admin server listening")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("received shutdown signal")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Err(err).Msg("admin server shutdown error")
		}
	}

	facade.Terminate()
	log.Info().Msg("venue stopped")
	return nil
}
