package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	jwttoken "assetledger/internal/jwt_token"
	"assetledger/internal/platform/config"
	"assetledger/internal/platform/httpserver"
	"assetledger/internal/platform/logger"
	platformmetrics "assetledger/internal/platform/metrics"
	redisclient "assetledger/internal/platform/redis"
	"assetledger/internal/ratelimit"
	"assetledger/internal/registry/events"
	"assetledger/internal/registry/handler"
	registrymetrics "assetledger/internal/registry/metrics"
	"assetledger/internal/registry/ports"
	"assetledger/internal/registry/service"
	"assetledger/internal/registry/store"
	"assetledger/internal/registry/store/cache"
	"assetledger/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("asset registry stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New()),
		service.WithDefaults(cfg.Registry.InitialCapacity, cfg.Registry.InitialMintFee),
		service.WithHistoryCap(cfg.Registry.HistoryCap),
	}

	var registryStore ports.Store
	if cfg.Database.URL != "" {
		db, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		pg := store.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		registryStore = pg
		opts = append(opts, service.WithTx(newRegistryPostgresTx(db, pg, cfg.Registry.TxTimeout)))
		log.Info("using postgres registry store")
	} else {
		mem := store.NewInMemoryStore()
		registryStore = mem
		opts = append(opts, service.WithTx(service.NewStagedTx(mem, cfg.Registry.TxTimeout)))
		log.Warn("DATABASE_URL not set, registry state is kept in memory")
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var windows ratelimit.WindowStore = ratelimit.NewInMemoryWindowStore()
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, service.WithCache(cache.NewRedisAssetCache(rdb.Client, cache.WithTTL(cfg.Redis.CacheTTL))))
		windows = ratelimit.NewRedisWindowStore(rdb.Client)
		log.Info("asset read cache enabled")
	}
	writeLimiter := ratelimit.New(windows, log,
		ratelimit.WithLimit(cfg.RateLimit.Writes, cfg.RateLimit.Window),
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
	)

	publisher, closePublisher, err := newPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closePublisher()
	opts = append(opts, service.WithPublisher(publisher))

	registry, err := service.New(registryStore, cfg.Registry.AdminAddress, opts...)
	if err != nil {
		return fmt.Errorf("create registry service: %w", err)
	}
	if err := registry.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap registry: %w", err)
	}

	httpMetrics := platformmetrics.New()
	readiness := httpserver.NewReadiness()
	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := chi.NewRouter()
	router.Get("/healthz", readiness.HandleLive)
	router.Get("/readyz", readiness.HandleReady)
	handler.New(registry, tokens, log, httpMetrics, handler.WithWriteLimit(writeLimiter.PerCaller)).Register(router)

	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", httpMetrics.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Serve(gctx, httpserver.New(cfg.Addr, router), cfg.ShutdownGrace, log)
	})
	g.Go(func() error {
		return httpserver.Serve(gctx, httpserver.New(cfg.MetricsAddr, metricsRouter), cfg.ShutdownGrace, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		if readiness.Drain() {
			log.Info("server marked as not ready")
		}
		return nil
	})

	log.Info("starting asset registry", "addr", cfg.Addr, "metrics_addr", cfg.MetricsAddr)
	return g.Wait()
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// newPublisher returns the Kafka publisher guarded by a breaker with the log
// sink as fallback, or the log sink alone when no brokers are configured.
func newPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (ports.EventPublisher, func(), error) {
	logSink := events.NewLogPublisher(log)
	if len(cfg.Brokers) == 0 {
		return logSink, func() {}, nil
	}

	kafka, err := events.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		kafka.Close()
		return nil, nil, err
	}
	log.Info("publishing registry events to kafka", "topic", cfg.Topic)
	return events.NewResilientPublisher(kafka, logSink, circuit.New("registry-events"), log), kafka.Close, nil
}
