// Package app wires configuration, logging, the store and the HTTP window
// together for the clothes binaries.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"ClothesStore/internal/clothes"
	"ClothesStore/internal/config"
	"ClothesStore/pkg/kit"
)

const rateWindow = time.Minute

// Run starts one window variant and blocks until it is shut down.
func Run(service string, variant clothes.Variant) error {
	cfg, err := config.Resolve(
		config.Default(string(variant.Layout), config.Window{Width: variant.Width, Height: variant.Height}),
		os.LookupEnv,
	)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, closeStore, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		log.Error("store connect failed",
			zap.String("driver", cfg.Store.Driver),
			zap.Error(err),
		)
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &clothes.Server{
		Store: clothes.Instrument(clothes.WithTimeout(store, cfg.Store.Timeout), clothes.NewStoreMetrics(reg)),
		Log:   log,
		Variant: clothes.Variant{
			Layout: clothes.Layout(cfg.View),
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		},
	}
	if cfg.RateLimit.PerMinute > 0 {
		limiter := kit.NewIPRateLimiter(cfg.RateLimit.PerMinute, rateWindow)
		limiter.TrustForwardedFor = cfg.RateLimit.TrustProxy
		s.Limit = limiter.Middleware
	}

	h := clothes.NewHandler(s, clothes.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	log.Info("clothes store ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("view", cfg.View),
		zap.Duration("store_timeout", cfg.Store.Timeout),
	)

	return kit.RunHTTPServer(cfg.Listen, h, log, cfg.ShutdownTimeout)
}

// OpenStore connects the configured driver and checks it answers a ping
// within the store timeout. The returned func releases the connection.
func OpenStore(ctx context.Context, sc config.Store) (clothes.Store, func(), error) {
	switch sc.Driver {
	case config.DriverMemory:
		return clothes.NewMemStore(), func() {}, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, sc.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		st := clothes.NewPostgresStore(pool)
		if err := pingAndPrepare(ctx, sc.Timeout, st, st.EnsureSchema); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return st, pool.Close, nil

	default:
		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(sc.MongoURI).
			SetServerSelectionTimeout(sc.Timeout))
		if err != nil {
			return nil, nil, fmt.Errorf("open mongo: %w", err)
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), sc.Timeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}

		st := clothes.NewMongoStore(client.Database(sc.Database).Collection(sc.Collection))
		if err := pingAndPrepare(ctx, sc.Timeout, st, nil); err != nil {
			disconnect()
			return nil, nil, err
		}
		return st, disconnect, nil
	}
}

func pingAndPrepare(ctx context.Context, d time.Duration, st clothes.Store, prepare func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	if err := st.Ping(ctx); err != nil {
		return err
	}
	if prepare != nil {
		return prepare(ctx)
	}
	return nil
}
