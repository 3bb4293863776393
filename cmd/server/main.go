package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "procurement-console/internal/adapters/web"
	"procurement-console/internal/app"
	"procurement-console/internal/cache"
	"procurement-console/internal/config"
	"procurement-console/internal/core"
	"procurement-console/internal/db"
	"procurement-console/internal/events"
	"procurement-console/internal/logger"
	"procurement-console/internal/metrics"
	"procurement-console/migrations"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	migrate := flag.Bool("migrate", false, "apply database migrations before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if err := run(cfg, log, *migrate); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger, migrate bool) error {
	if err := cfg.RequireServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate {
		if err := migrations.Up(ctx, cfg.Database.URL); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	pool, err := db.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	g, gctx := errgroup.WithContext(ctx)

	// Status changes go to Prometheus and, when brokers are configured, Kafka.
	publishers := []core.StatusPublisher{}
	if m != nil {
		publishers = append(publishers, m)
	}
	brokers := cfg.KafkaBrokers()
	if len(brokers) > 0 {
		producer := events.NewProducer(brokers, events.TopicStatusChanged, 256, log)
		g.Go(func() error { return producer.Run(gctx) })
		publishers = append(publishers, events.NewStatusPublisher(producer, cfg.App.Name))
	}

	policy := core.DefaultPolicy
	policy.ForceWHTCertificateOnZero = cfg.Policy.ForceWHTCertificate

	docs := core.NewDocumentService(pool)
	orders := core.NewPurchaseOrderService(pool, docs, events.Fanout(publishers...), policy, log)
	demands := core.NewDemandService(pool)
	lookups := core.NewLookupService(pool)

	var (
		rdb   *redis.Client
		idem  webAdapter.Idempotency
		dedup events.Deduper
	)
	if cfg.Redis.Addr != "" {
		rdb, err = cache.New(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		lookups = cache.NewLookupCache(rdb, lookups, cfg.Redis.LookupTTL, log)
		idem = cache.NewIdempotency(rdb)
		dedup = cache.NewDedup(rdb, cfg.Kafka.GroupID)
	} else {
		log.Warn("redis.addr not set: lookups are uncached and Idempotency-Key is ignored")
	}

	svc := app.NewAppService(orders, demands, lookups)

	if len(brokers) > 0 {
		consumer := events.NewConsumer(brokers, cfg.Kafka.GroupID, events.WorkflowTopics, cfg.Kafka.Workers, log)
		var obs events.Observer
		if m != nil {
			obs = m
		}
		handler := events.NewWorkflowHandler(recorder{svc}, dedup, obs, log)
		g.Go(func() error { return consumer.Start(gctx, handler) })
	} else {
		log.Warn("kafka.brokers not set: status events are not published and downstream events are not consumed")
	}

	handler := webAdapter.NewHandler(svc, webAdapter.Config{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		UploadDir:      cfg.Upload.Dir,
		Idempotency:    idem,
		Metrics:        m,
		Logger:         log,
	})
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server starting", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// recorder adapts the application service to the event workflow.
type recorder struct {
	svc app.ApplicationService
}

func (r recorder) RecordPurchase(ctx context.Context, poID int) error {
	_, err := r.svc.RecordPurchase(ctx, poID)
	return err
}

func (r recorder) RecordReceipt(ctx context.Context, poID int, complete bool) error {
	_, err := r.svc.RecordReceipt(ctx, poID, complete)
	return err
}
