// Package main is the entry point for the Theme Builder resolution
// service. It loads configuration, connects to services, sets up routing,
// and starts the HTTP server with graceful shutdown support.
//
// Two maintenance subcommands run instead of the server:
//
//	themebuilder hash-token <token>   print the bcrypt hash for ADMIN_TOKEN_HASH
//	themebuilder flush-cache          drop every cached template list in Valkey
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"themebuilder/internal/cache"
	"themebuilder/internal/config"
	"themebuilder/internal/database"
	"themebuilder/internal/entitlement"
	"themebuilder/internal/handlers"
	"themebuilder/internal/logging"
	"themebuilder/internal/middleware"
	"themebuilder/internal/repository"
	"themebuilder/internal/resolver"
	"themebuilder/internal/router"
	"themebuilder/internal/store"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "hash-token":
			os.Exit(hashToken(args[1:]))
		case "flush-cache":
			os.Exit(flushCache(args[1:]))
		}
	}

	// Load configuration from environment variables, file and flags.
	cfg, err := config.Load(args...)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	format := cfg.LogFormat
	if format == "" && !cfg.IsDev() {
		format = "json"
	}
	logCloser := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: format, File: cfg.LogFile})
	defer logCloser.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"cache", cfg.CacheBackend,
		"pro_mode", cfg.ProMode,
	)
	if cfg.AdminTokenHash == "" {
		slog.Warn("ADMIN_TOKEN_HASH not set, admin API is locked")
	}

	// Connect to PostgreSQL.
	db, err := database.Connect(context.Background(), cfg.DSN(), database.DefaultPool)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed fixture templates (no-op if templates already exist).
	if seed, err := seedData(cfg); err != nil {
		slog.Error("failed to read seed file", "error", err)
		os.Exit(1)
	} else if seed != nil {
		if err := database.Seed(context.Background(), db, seed); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Template list cache.
	var templateCache repository.Cache
	switch cfg.CacheBackend {
	case config.CacheValkey:
		valkeyClient, err := cache.ConnectValkey(context.Background(), valkeyOptions(cfg))
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		templateCache = cache.NewTemplateCache(valkeyClient, cfg.TemplateCacheTTL)
	default:
		templateCache = cache.NewMemoryCache(cfg.TemplateCacheTTL)
	}

	// Initialize data stores.
	postStore := store.NewPostStore(db)
	settingStore := store.NewSiteSettingStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	pro, err := entitlement.FromMode(cfg.ProMode, settingStore, entitlement.DefaultMemoTTL)
	if err != nil {
		slog.Error("failed to configure entitlement", "error", err)
		os.Exit(1)
	}

	repo := repository.New(postStore, templateCache)
	res := resolver.New(repo, pro)

	var limiter *middleware.RateLimiter
	if cfg.ResolveRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.ResolveRateLimit, time.Minute)
		defer limiter.Stop()
	}

	r := router.New(router.Deps{
		Public:         handlers.NewPublic(res, db),
		Admin:          handlers.NewAdmin(postStore, repo, cacheLogStore, pro),
		Settings:       handlers.NewSettings(settingStore, pro),
		AdminTokenHash: cfg.AdminTokenHash,
		ResolveLimiter: limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// seedData returns the fixture to load: the configured seed file, the
// built-in fixture in development, or nothing.
func seedData(cfg *config.Config) ([]byte, error) {
	if cfg.SeedFile != "" {
		return os.ReadFile(cfg.SeedFile)
	}
	if cfg.IsDev() {
		return database.DefaultSeed, nil
	}
	return nil, nil
}

func valkeyOptions(cfg *config.Config) cache.ValkeyOptions {
	return cache.ValkeyOptions{Host: cfg.ValkeyHost, Port: cfg.ValkeyPort, Password: cfg.ValkeyPassword}
}

func hashToken(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: themebuilder hash-token <token>")
		return 2
	}
	hash, err := middleware.HashToken(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash-token:", err)
		return 1
	}
	fmt.Println(hash)
	return 0
}

func flushCache(args []string) int {
	cfg, err := config.Load(args...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		return 1
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := cache.ConnectValkey(ctx, valkeyOptions(cfg))
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		return 1
	}
	defer client.Close()

	n := cache.NewTemplateCache(client, cfg.TemplateCacheTTL).Flush(ctx)
	slog.Info("template cache flushed", "keys", n)
	return 0
}
