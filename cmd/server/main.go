package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"neurointake/internal/app"
	"neurointake/internal/assistant"
	"neurointake/internal/config"
	"neurointake/internal/ratelimit"
	"neurointake/internal/server"
	"neurointake/internal/store"
	"neurointake/internal/util"
	"neurointake/pkg/ai"
)

func main() {
	// Missing .env is fine in deployment; config.yaml still applies.
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var st store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "err", err)
			os.Exit(1)
		}
		logger.Info("using postgres store")
	} else {
		st = store.NewMemoryStore()
		logger.Info("using in-memory store, records do not survive restarts")
	}
	if err := store.SeedDoctors(st); err != nil {
		logger.Error("failed to seed doctors", "err", err)
		os.Exit(1)
	}
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := store.SeedAdminUser(st, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			logger.Error("failed to seed admin user", "err", err)
			os.Exit(1)
		}
	}

	if cfg.OpenAIAPIKey == "" {
		logger.Warn("no OpenAI API key configured, chat replies will fall back to the apology message")
	}
	generator := ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	asst := assistant.New(generator, cfg.AssistantTimeout())
	appCore := app.New(st, asst)

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "", cfg.MessageRateLimitPerMin, time.Minute)
		if err != nil {
			logger.Error("failed to init rate limiter", "err", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("rate limiting disabled, set redisAddr to enable")
	}
	proxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		logger.Error("failed to parse trusted proxies", "err", err)
		os.Exit(1)
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		MessageLimiter: limiter,
		TrustedProxies: proxies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("intake server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
