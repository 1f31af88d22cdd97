package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	entitystore "efile/internal/entity/store"
	"efile/internal/filing/amendment"
	"efile/internal/filing/fees"
	"efile/internal/filing/metrics"
	filingservice "efile/internal/filing/service"
	filingstore "efile/internal/filing/store"
	"efile/internal/filingconfig"
	"efile/internal/notify"
	"efile/internal/platform/config"
	"efile/internal/platform/kafka"
	"efile/internal/platform/postgres"
	"efile/internal/platform/redis"
	"efile/pkg/platform/circuit"
)

const connectTimeout = 15 * time.Second

// app holds the process's connections and the services built on them.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client
	kafka  *kgo.Client
	// configStore is cache-aware so writes through it invalidate.
	configStore filingconfig.Store
	configs     *filingconfig.Lookup
	filings     *filingservice.Service
}

// connect opens postgres, redis and kafka in parallel. Redis and Kafka are
// optional and skipped when not configured.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		a.db = db
		return err
	})
	g.Go(func() error {
		rc, err := redis.New(ctx, cfg.Redis)
		a.redis = rc
		return err
	})
	if cfg.KafkaEnabled() {
		g.Go(func() error {
			cl, err := kafka.New(cfg.Kafka)
			if err != nil {
				return err
			}
			a.kafka = cl
			return kafka.Ping(ctx, cl)
		})
	}
	if err := g.Wait(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// wire builds the filing service over the open connections.
func (a *app) wire() error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	var cfgStore filingconfig.Store = filingconfig.NewPostgres(a.db)
	if a.redis != nil {
		cfgStore = filingconfig.NewCached(cfgStore, a.redis.Client, a.cfg.ConfigCacheTTL, a.logger)
	}
	a.configStore = cfgStore
	a.configs = filingconfig.NewLookup(cfgStore, filingconfig.WithLogger(a.logger))

	a.filings = filingservice.New(
		filingstore.NewPostgres(a.db),
		newPostgresFilingTx(a.db, a.cfg.TxTimeout),
		entitystore.NewPostgres(a.db),
		a.configs,
		fees.NewEngine(a.configs),
		filingservice.WithLogger(a.logger),
		filingservice.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
		filingservice.WithNotifier(a.notifier()),
		filingservice.WithLocation(loc),
		filingservice.WithResolver(amendment.NewResolver(amendment.WithMaxDepth(a.cfg.MaxAmendmentDepth))),
		filingservice.WithNotifyTimeout(a.cfg.NotifyTimeout),
	)
	return nil
}

func (a *app) notifier() notify.Dispatcher {
	logDispatcher := notify.NewLogDispatcher(a.logger)
	if a.kafka == nil {
		return logDispatcher
	}
	return notify.NewFailoverDispatcher(
		notify.NewKafkaDispatcher(a.kafka, a.cfg.Kafka.NotificationTopic),
		logDispatcher,
		circuit.New("notifications"),
		a.logger,
	)
}

// close waits for background notifications, then releases connections.
func (a *app) close() {
	if a.filings != nil {
		a.filings.Wait()
	}
	var errs []error
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("closing connections", "error", err)
	}
}
