package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"roam/internal/bridge"
	"roam/internal/events"
	"roam/internal/geocode"
	"roam/internal/httpapi"
	"roam/internal/jwttoken"
	"roam/internal/monitor"
	"roam/internal/notify"
	"roam/internal/platform/config"
	"roam/internal/platform/httpserver"
	"roam/internal/platform/logger"
	"roam/internal/platform/metrics"
	platformredis "roam/internal/platform/redis"
	"roam/internal/store"
	"roam/internal/tracking"
)

// main wires high-level dependencies and keeps the process lifecycle small.
// Business logic lives in internal packages; the monitor is the single
// shared instance guaranteed here, not by a global accessor.
func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mx := metrics.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	configStore, historian, cleanup, err := buildStore(cfg, redisClient)
	if err != nil {
		return err
	}
	defer cleanup()

	channel := bridge.NewChannel(bridge.WithLogger(log))

	session, err := tracking.New(bridge.NewTransport(channel),
		tracking.WithLogger(log),
		tracking.WithMetrics(mx),
	)
	if err != nil {
		return err
	}

	var resolver geocode.Resolver = geocode.NewHTTPResolver(cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout)
	if redisClient != nil {
		resolver = geocode.NewCached(resolver, redisClient.Client, cfg.Geocoder.CacheTTL, log)
	}

	dispatcher, err := notify.NewDispatcher(bridge.NewSubmitter(channel))
	if err != nil {
		return err
	}

	monitorOpts := []monitor.Option{
		monitor.WithLogger(log),
		monitor.WithMetrics(mx),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, events.WithLogger(log))
		if err != nil {
			return err
		}
		defer publisher.Close()
		monitorOpts = append(monitorOpts, monitor.WithPublisher(publisher))
	}

	mon, err := monitor.New(
		configStore,
		bridge.NewLocationGateway(channel),
		bridge.NewNotificationGateway(channel),
		session,
		resolver,
		dispatcher,
		monitorOpts...,
	)
	if err != nil {
		return err
	}
	channel.SetSink(mon)

	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "roam")

	apiOpts := []httpapi.Option{}
	if historian != nil {
		apiOpts = append(apiOpts, httpapi.WithHistory(historian))
	}
	if redisClient != nil {
		apiOpts = append(apiOpts, httpapi.WithHealthChecker(redisClient))
	}

	router := chi.NewRouter()
	httpapi.New(mon, jwtService, jwtService, cfg.PairingSecretHash, log, apiOpts...).Register(router)
	bridge.NewHandler(channel, jwtService, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting roam", "addr", cfg.Addr, "store", cfg.StoreBackend)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mon.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildStore selects the durable config store backend. The Postgres backend
// additionally exposes the region-change history.
func buildStore(cfg config.Config, redisClient *platformredis.Client) (store.ConfigStore, httpapi.Historian, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case "memory":
		return store.NewInMemory(), nil, noop, nil
	case "redis":
		if redisClient == nil {
			return nil, nil, noop, errors.New("redis store selected but ROAM_REDIS_URL is empty")
		}
		return store.NewRedis(redisClient.Client), nil, noop, nil
	case "postgres":
		db, err := store.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, noop, err
		}
		pg, err := store.NewPostgres(db)
		if err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		return pg, pg, func() { db.Close() }, nil
	default:
		return nil, nil, noop, errors.New("unknown store backend: " + cfg.StoreBackend)
	}
}
