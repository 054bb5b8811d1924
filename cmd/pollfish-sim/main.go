// Command pollfish-sim runs the bridge against the in-process SDK simulator
// and serves a dashboard for driving it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pollfish/pollfish-bridge/internal/config"
	"github.com/pollfish/pollfish-bridge/internal/events"
	"github.com/pollfish/pollfish-bridge/internal/handlers"
	"github.com/pollfish/pollfish-bridge/internal/logger"
	"github.com/pollfish/pollfish-bridge/internal/pollfish"
	"github.com/pollfish/pollfish-bridge/internal/router"
	"github.com/pollfish/pollfish-bridge/internal/simulator"
	"github.com/pollfish/pollfish-bridge/internal/ws"
	"github.com/toqueteos/webbrowser"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	slogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	queryTimeout, err := cfg.QueryTimeoutDuration()
	if err != nil {
		slogger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	emitter := events.NewEmitter(slogger)
	sim := simulator.New(emitter, simulator.Options{
		Platform: cfg.Platform,
		Logger:   slogger,
	})
	client := pollfish.New(sim, emitter,
		pollfish.WithLogger(slogger),
		pollfish.WithQueryTimeout(queryTimeout),
	)
	defer client.Close()

	hub := ws.NewHub(cfg.HistorySize, slogger)
	for _, t := range events.All() {
		client.AddEventListener(t, hub)
	}

	h := handlers.New(handlers.Deps{
		Client:    client,
		Simulator: sim,
		Emitter:   emitter,
		Hub:       hub,
		Defaults: handlers.Defaults{
			AndroidAPIKey: cfg.AndroidAPIKey,
			IOSAPIKey:     cfg.IOSAPIKey,
			ReleaseMode:   cfg.ReleaseMode,
			Signature:     cfg.Signature,
		},
	}, slogger)
	mux := router.New(h)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		slogger.Error("failed to listen", "addr", cfg.Addr, "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("http://%s", listener.Addr().String())
	slogger.Info("server starting", "addr", addr, "platform", cfg.Platform)

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	if cfg.OpenBrowser {
		if err := webbrowser.Open(addr); err != nil {
			slogger.Warn("failed to open browser", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slogger.Error("shutdown", "err", err)
	}
}
