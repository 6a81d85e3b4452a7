package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/api"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/config"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/integration"
	v1 "github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser/v1"
	v2 "github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser/v2"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	cfgPath := flag.String("config", "configs/settings.yaml", "Path to settings YAML")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── User directory ───────────────────────────────────────────────────────
	dir, cache, err := buildDirectory(ctx, cfg.Identity)
	if err != nil {
		slog.Error("failed to build user directory", "err", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	// ── Parser factories ─────────────────────────────────────────────────────
	s := cfg.Integration.Parser()
	integ := integration.New(cfg.Integration,
		v1.NewFactory(dir, s),
		v2.NewFactory(dir, s),
	)
	slog.Info("integration ready",
		"integration", s.IntegrationName, "version", integ.DocumentVersion(), "events", len(integ.Events()))

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	integ.Bind(loader)
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	listen := cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}
	srv := &http.Server{
		Addr:         listen,
		Handler:      api.New(integ, loader),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	slog.Info("goodbye")
}

// buildDirectory picks the static directory when users are configured and
// the pod HTTP directory otherwise, optionally behind the Redis cache.
func buildDirectory(ctx context.Context, conf config.IdentityConf) (identity.Directory, *redis.Client, error) {
	if len(conf.Users) > 0 {
		slog.Info("using static user directory", "users", len(conf.Users))
		return identity.NewStaticDirectory(conf.Users...), nil, nil
	}

	var dir identity.Directory = identity.NewHTTPDirectory(conf.BaseURL, conf.Timeout())
	if !conf.Cache.Enabled {
		return dir, nil, nil
	}
	client, err := identity.NewRedisClient(ctx, conf.Cache.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("identity cache enabled", "ttl", conf.Cache.TTL())
	return identity.NewCachedDirectory(dir, client, conf.Cache.TTL()), client, nil
}
