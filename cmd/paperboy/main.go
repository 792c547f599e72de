package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spacesedan/paperboy/config"
	"github.com/spacesedan/paperboy/internal/api"
	"github.com/spacesedan/paperboy/internal/clients"
	"github.com/spacesedan/paperboy/internal/detail"
	"github.com/spacesedan/paperboy/internal/favorites"
	"github.com/spacesedan/paperboy/internal/feed"
	"github.com/spacesedan/paperboy/internal/logging"
	"github.com/spacesedan/paperboy/internal/models"
	"github.com/spacesedan/paperboy/internal/monitoring"
	"github.com/spacesedan/paperboy/internal/producer"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("[Paperboy] Exiting", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var vc *clients.ValkeyClient
	if cfg.ValkeyAddress != "" {
		var err error
		vc, err = clients.NewValkeyClient(ctx, cfg.ValkeyAddress, cfg.ValkeyPassword, cfg.ValkeyTLS)
		if err != nil {
			return err
		}
		closers = append(closers, vc.Close)
	}

	fetcher, err := buildFetcher(ctx, cfg, vc)
	if err != nil {
		return err
	}

	persistence, closePersistence, err := buildFavorites(ctx, cfg, vc)
	if err != nil {
		return err
	}
	closers = append(closers, closePersistence)

	controller := feed.NewController(fetcher)
	monitor := monitoring.NewMonitor(monitoring.NewTCPProbe(cfg.ConnectivityProbeAddr), cfg.ConnectivityInterval)
	store := favorites.NewStore(persistence)
	details := detail.NewService(clients.NewReaderClient(cfg.ReaderTimeout))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		controller.Run(ctx)
	}()

	unsubscribeFeed := controller.Subscribe(logFeedEvent(slog.Default()))
	defer unsubscribeFeed()

	// monitor callbacks run on the monitor goroutine, so the hop into the
	// controller may block until it is free
	unsubscribe := monitor.Subscribe(func(reachable bool) {
		if err := controller.SetReachable(ctx, reachable); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, feed.ErrStopped) {
			slog.Warn("[Paperboy] Could not deliver connectivity change", slog.String("error", err.Error()))
		}
	})
	defer unsubscribe()

	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()

	if vc != nil && cfg.FeedWarmInterval > 0 {
		warmer := producer.NewWarmer(fetcher, models.AllTopics, cfg.FeedWarmInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			warmer.Run(ctx)
		}()
	}

	if err := controller.SelectTopic(ctx, initialTopic(cfg)); err != nil {
		slog.Warn("[Paperboy] Initial topic not fetched", slog.String("error", err.Error()))
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.Router(api.Deps{
			Feed:      controller,
			Favorites: store,
			Detail:    details,
			Network:   monitor,
		}),
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("[Paperboy] HTTP server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("[Paperboy] Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Paperboy] HTTP shutdown failed", slog.String("error", err.Error()))
	}

	wg.Wait()
	return nil
}

func initialTopic(cfg config.Config) models.Topic {
	if cfg.DefaultTopic != "" {
		topic, err := models.ParseTopic(cfg.DefaultTopic)
		if err == nil {
			return topic
		}
		slog.Warn("[Paperboy] Ignoring DEFAULT_TOPIC", slog.String("error", err.Error()))
	}
	return models.AllTopics[0]
}
