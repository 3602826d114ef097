// Package main runs the Discord OAuth2 authorization-code callback server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-training/discord-oauth/pkg/config"
	"github.com/go-training/discord-oauth/pkg/flow"
	"github.com/go-training/discord-oauth/pkg/logger"
	"github.com/go-training/discord-oauth/pkg/provider"
	"github.com/go-training/discord-oauth/pkg/store"

	"github.com/appleboy/graceful"
)

func main() {
	var addr string
	var callbackPath string
	var discordHost string
	var logLevel string
	var storeType string
	var redisAddr string
	var redisPassword string
	var redisDB int
	flag.StringVar(&addr, "addr", ":8097", "address to listen on")
	flag.StringVar(&callbackPath, "callback-path", "/callback", "path of the OAuth redirect callback")
	flag.StringVar(&discordHost, "discord-host", "https://discord.com", "Discord host")
	flag.StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR). Defaults to DEBUG in development, INFO in production")
	flag.StringVar(&storeType, "store", "memory", "Audit store type: memory or redis")
	flag.StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address (only used when store=redis)")
	flag.StringVar(&redisPassword, "redis-password", "", "Redis password (only used when store=redis)")
	flag.IntVar(&redisDB, "redis-db", 0, "Redis database (only used when store=redis)")
	flag.Parse()

	// Initialize logger with the specified log level
	logger.NewWithLevel(logLevel)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		// Incomplete configuration is a per-request error: the callback
		// reports it instead of the process refusing to start.
		slog.Warn("Configuration incomplete", "error", err)
	}
	slog.Info("Loaded configuration", "config", cfg.Redacted())

	discordClient := provider.NewClient(discordHost)
	exchangeFlow := flow.New(cfg, discordClient)

	// Initialize audit store using factory pattern
	storeConfig := store.Config{
		Type: store.ParseStoreType(storeType),
		Redis: store.RedisOptions{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		},
	}
	auditStore, err := store.NewStore(storeConfig)
	if err != nil {
		slog.Error("Failed to create audit store", "type", storeType, "error", err)
		os.Exit(1)
	}

	switch storeConfig.Type {
	case store.StoreTypeMemory:
		slog.Info("Using in-memory audit store")
	case store.StoreTypeRedis:
		slog.Info("Using Redis audit store", "addr", redisAddr, "db", redisDB)
		// Ensure Redis connection is closed on shutdown
		if redisStore, ok := auditStore.(*store.RedisStore); ok {
			defer redisStore.Close()
		}
	}

	router := newRouter(cfg, exchangeFlow, auditStore, callbackPath)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("OAuth callback server listening", "addr", addr, "callback_path", callbackPath)

	m := graceful.NewManager()
	m.AddRunningJob(func(ctx context.Context) error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			return err
		}
		return nil
	})
	m.AddShutdownJob(func() error {
		slog.Info("Shutdown signal received, shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	<-m.Done()
	slog.Info("Server shutdown gracefully")
}
