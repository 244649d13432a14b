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

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/travel-gateway/internal/api"
	"github.com/neexbeast/travel-gateway/internal/cache"
	"github.com/neexbeast/travel-gateway/internal/config"
	"github.com/neexbeast/travel-gateway/internal/storage"
	"github.com/neexbeast/travel-gateway/internal/travel"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]api.Pinger{}

	// Redis search cache is optional.
	var searchCache api.SearchCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		searchCache = cache.NewCache(redisClient, cfg.SearchCacheTTL)
		checks["redis"] = api.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		log.Info("search cache enabled", "ttl", cfg.SearchCacheTTL)
	} else {
		log.Info("REDIS_URL not set, search cache disabled")
	}

	// Postgres destination directory is optional; the built-in map is used otherwise.
	var directory travel.DestinationDirectory = travel.DefaultDestinations
	if cfg.DatabaseURL != "" {
		pool, err := storage.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		if err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")

		dir := storage.NewDirectory(pool)
		if err := dir.Seed(ctx, travel.DefaultDestinations); err != nil {
			return fmt.Errorf("seeding destinations: %w", err)
		}
		directory = dir
		checks["db"] = pool
	} else {
		log.Info("DATABASE_URL not set, using built-in destination directory")
	}

	// Wire dependencies.
	tokens := travel.NewTokenProvider(cfg.FlightBaseURL, cfg.FlightClientID, cfg.FlightClientSecret, log)
	flights := travel.NewFlightSearcher(cfg.FlightBaseURL, tokens, log)
	hotels := travel.NewHotelSearcher(cfg.HotelBaseURL, cfg.HotelHost, cfg.HotelKey, directory, log)
	handlers := api.NewHandlers(flights, hotels, searchCache, log)

	router := api.NewRouter(handlers, api.RouterConfig{
		BearerToken:    cfg.BearerToken,
		AllowedOrigins: cfg.AllowedOrigins,
		Checks:         checks,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server shut down cleanly")
	return nil
}
