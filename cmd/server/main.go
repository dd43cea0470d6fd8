package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"medledger/internal/auditlog"
	"medledger/internal/consent"
	"medledger/internal/integrity"
	"medledger/internal/ledger"
	"medledger/internal/platform/config"
	"medledger/internal/platform/httpserver"
	"medledger/internal/platform/logger"
	"medledger/internal/platform/metrics"
	"medledger/internal/platform/postgres"
	"medledger/internal/platform/redis"
	httptransport "medledger/internal/transport/http"
	"medledger/pkg/platform/notify"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		consentStore   consent.Store
		integrityStore integrity.Store
		auditStore     auditlog.Store
	)
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres setup failed", "error", err)
			return
		}
		defer db.Close()
		consentStore = consent.NewPostgresStore(db)
		integrityStore = integrity.NewPostgresStore(db)
		auditStore = auditlog.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		consentStore = consent.NewInMemoryStore()
		integrityStore = integrity.NewInMemoryStore()
		auditStore = auditlog.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	var health httptransport.HealthChecker
	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		return
	}
	if redisClient != nil {
		defer redisClient.Close()
		health = redisClient
		log.Info("redis health checks enabled")
	}

	publisher := notify.NewChannelPublisher(cfg.NotifyBuffer)

	var sink notify.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := notify.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka setup failed", "error", err)
			return
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("publishing notifications to kafka", "topic", cfg.KafkaTopic)
	} else {
		sink = discardSink{}
		log.Info("no kafka brokers configured, notifications discarded")
	}
	worker := notify.NewWorker(sink, publisher.Events(), log)

	m := metrics.New()
	led := ledger.New(
		consent.NewService(consentStore),
		integrity.NewService(integrityStore),
		auditlog.NewService(auditStore),
		publisher,
		m,
		log,
	)

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(led, m, health, log))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info("starting medledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
	}
}

// discardSink drops notifications when no external sink is configured.
type discardSink struct{}

func (discardSink) Publish(context.Context, notify.Event) error { return nil }
