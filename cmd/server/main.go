package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmuslimabdulj/goat-lobby/internal/config"
	httpHandler "github.com/mmuslimabdulj/goat-lobby/internal/delivery/http"
	"github.com/mmuslimabdulj/goat-lobby/internal/delivery/ws"
	"github.com/mmuslimabdulj/goat-lobby/internal/logger"
	"github.com/mmuslimabdulj/goat-lobby/internal/middleware"
	"github.com/mmuslimabdulj/goat-lobby/internal/usecase"
)

func main() {
	// Load .env file (ignore error if not exists, e.g. in production)
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	hub := ws.NewHub(log.Named("ws"))
	hub.SetEventLimit(cfg.RateLimitEvents, int(cfg.RateLimitEvents))

	coord := usecase.NewCoordinator(hub, log.Named("lobby"), usecase.Options{
		DefaultMinPlayers: cfg.DefaultMinPlayers,
		DefaultMaxPlayers: cfg.DefaultMaxPlayers,
		CodeLength:        cfg.LobbyCodeLength,
	})
	hub.SetHandler(coord)

	apiLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAPI, 2*int(cfg.RateLimitAPI))
	wsLimiter := middleware.NewIPRateLimiter(cfg.RateLimitWS, 2*int(cfg.RateLimitWS))

	handler := httpHandler.NewHandler(hub, coord, cfg, log.Named("http"))

	// Create server with timeouts. Upgraded websocket connections are
	// hijacked and not subject to them.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(apiLimiter, wsLimiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("lobby server listening",
			zap.String("addr", server.Addr),
			zap.Strings("allowed_origins", cfg.AllowedOrigins),
			zap.String("static_dir", cfg.StaticDir),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		apiLimiter.Run(gctx, 5*time.Minute)
		return nil
	})

	g.Go(func() error {
		wsLimiter.Run(gctx, 5*time.Minute)
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
