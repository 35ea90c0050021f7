// Command server runs the feed-aggregation HTTP service: it loads
// persisted state, starts the background refresh and snapshot workers, and
// serves the API until an interrupt signal arrives.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedkeep/backend/internal/auth"
	"feedkeep/backend/internal/config"
	"feedkeep/backend/internal/feedfetch"
	gh "feedkeep/backend/internal/http"
	"feedkeep/backend/internal/handler"
	"feedkeep/backend/internal/persistence"
	"feedkeep/backend/internal/refresh"
	"feedkeep/backend/internal/scheduler"
	"feedkeep/backend/pkg/logger"
	"feedkeep/backend/pkg/network"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	store := persistence.New(cfg.PersistenceDir)

	appConfigDoc, err := store.LoadAppConfig()
	if err != nil {
		logger.Error("failed to load app_config.yaml, falling back to defaults", "error", err)
	}
	if len(appConfigDoc.SessionKey) == 0 {
		key := cfg.SessionKey
		if len(key) == 0 {
			key, err = config.GenerateSessionKey()
			if err != nil {
				logger.Error("failed to generate session key", "error", err)
				os.Exit(1)
			}
			logger.Info("generated a new session key; sessions on any other instance using a different key are now invalid")
		}
		appConfigDoc = persistence.AppConfigDocument{
			Hostname:    cfg.Hostname,
			RoutePrefix: cfg.RoutePrefix,
			SessionKey:  key,
		}
		if err := store.SaveAppConfig(appConfigDoc); err != nil {
			logger.Error("failed to persist app_config.yaml", "error", err)
			os.Exit(1)
		}
	}

	credentials, err := store.LoadAuth(auth.NewBcryptHasher())
	if err != nil {
		logger.Error("failed to load auth.yaml, falling back to defaults", "error", err)
	}

	reg, err := store.LoadCollections()
	if err != nil {
		logger.Error("failed to load collections.yaml, falling back to defaults", "error", err)
	}

	sessions := auth.NewSessionManager(appConfigDoc.SessionKey)
	fetcher := feedfetch.New(network.NewClientFactory(network.NoopProxyProvider{}))
	pipeline := refresh.New(reg, fetcher)

	refreshWorker := scheduler.New("refresh", time.Duration(cfg.RefreshIntervalSeconds)*time.Second, func(ctx context.Context) {
		pipeline.RefreshAll(ctx)
	})

	var lastSavedHash uint64
	snapshotWorker := scheduler.New("snapshot", time.Duration(cfg.SnapshotIntervalSeconds)*time.Second, func(ctx context.Context) {
		hash := reg.ContentHash()
		if hash == lastSavedHash {
			return
		}
		if err := store.SaveCollections(reg); err != nil {
			logger.Error("failed to save collections.yaml", "error", err)
			return
		}
		lastSavedHash = hash
	})

	refreshWorker.Start()
	snapshotWorker.Start()

	feedHandler := handler.NewFeedHandler(reg, fetcher, pipeline)
	authHandler := handler.NewAuthHandler(credentials, sessions)
	refreshHandler := handler.NewRefreshHandler(pipeline)
	e := gh.NewRouter(feedHandler, authHandler, refreshHandler, sessions, cfg.RoutePrefix)

	srv := &http.Server{Addr: cfg.Addr, Handler: e}

	go func() {
		logger.Info("starting http server", "addr", cfg.Addr, "hostname", cfg.Hostname)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped unexpectedly", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during http server shutdown", "error", err)
	}

	refreshWorker.Stop()
	snapshotWorker.Stop()

	if err := store.SaveCollections(reg); err != nil {
		logger.Error("failed to save collections.yaml on shutdown", "error", err)
	}
	if err := store.SaveAuth(credentials); err != nil {
		logger.Error("failed to save auth.yaml on shutdown", "error", err)
	}

	logger.Info("shutdown complete")
}
