/*
Package main
File: main.go
Description: Server entry point. Loads farm.yaml, opens the save database,
restores the last saved season and serves the game API and the real-time
WebSocket hub until interrupted.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everforgeworks/farm-navigators/internal/api"
	"github.com/everforgeworks/farm-navigators/internal/config"
	"github.com/everforgeworks/farm-navigators/internal/dataset"
	"github.com/everforgeworks/farm-navigators/internal/logging"
	"github.com/everforgeworks/farm-navigators/internal/metrics"
	"github.com/everforgeworks/farm-navigators/internal/store"
	"github.com/gorilla/handlers"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to farm.yaml")
	flag.Parse()

	// 1. Load the season balance and server settings from YAML
	holder, err := config.NewHolder(*configPath)
	if err != nil {
		slog.Error("config load failed", "path", *configPath, "error", err)
		os.Exit(1)
	}
	cfg := holder.Current()
	log := logging.New(cfg.Server.LogLevel, os.Stdout)

	// 2. Open the save store
	var st store.Store = store.NewMemory()
	if cfg.Server.DBPath != "" {
		db, err := store.NewSQLite(cfg.Server.DBPath)
		if err != nil {
			log.Error("open save database", "path", cfg.Server.DBPath, "error", err)
			os.Exit(1)
		}
		st = db
	} else {
		log.Warn("no db_path configured, saves are kept in memory")
	}
	defer st.Close()

	// 3. Dataset provider (optional; synthetic seasons otherwise)
	var provider dataset.Provider
	if cfg.Server.DatasetURL != "" {
		provider = dataset.NewHTTPProvider(cfg.Server.DatasetURL, nil)
	}

	// 4. Real-time hub and game server
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	hub := api.NewHub(log, m)
	server := api.NewServer(api.Deps{
		Config:   holder,
		Store:    st,
		Provider: provider,
		Hub:      hub,
		Metrics:  m,
		Logger:   log,
	})
	go hub.Run(ctx)

	// 5. Resume the last saved season, if any
	if resumed, err := server.Resume(ctx); err != nil {
		log.Error("resume failed", "error", err)
	} else if !resumed {
		log.Info("no saved season, waiting for a new game")
	}

	// 6. Hot-reload: SIGHUP re-reads farm.yaml. The live season keeps its balance.
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				if _, err := holder.Reload(); err != nil {
					log.Error("config reload failed, keeping previous config", "error", err)
					continue
				}
				log.Info("config reloaded; applies to the next season")
			}
		}
	}()

	// 7. Router and middleware chain
	var handler http.Handler = server.Router()
	handler = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(handler)
	handler = handlers.LoggingHandler(os.Stdout, handler)
	handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handler)

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 8. Start the server
	go func() {
		log.Info("farm navigators server live", "addr", cfg.Server.ListenAddress, "db", cfg.Server.DBPath)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 9. Graceful shutdown: save the live season before exiting
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutdown requested")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpSrv.Shutdown(shutdownCtx)
	if err := server.SaveNow(shutdownCtx, "shutdown"); err != nil {
		log.Error("final save failed", "error", err)
	}
	cancel()
	log.Info("bye")
}
