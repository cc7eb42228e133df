package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Houeta/staff-directory/internal/availability"
	"github.com/Houeta/staff-directory/internal/cache"
	"github.com/Houeta/staff-directory/internal/client"
	"github.com/Houeta/staff-directory/internal/config"
	"github.com/Houeta/staff-directory/internal/datewindow"
	"github.com/Houeta/staff-directory/internal/lib/logger/sl"
	"github.com/Houeta/staff-directory/internal/metrics"
	"github.com/Houeta/staff-directory/internal/mutator"
	"github.com/Houeta/staff-directory/internal/remote"
	"github.com/Houeta/staff-directory/internal/repository"
	"github.com/Houeta/staff-directory/internal/services/directory"
	"github.com/Houeta/staff-directory/internal/services/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// application is everything a command needs, built once per invocation.
type application struct {
	cfg       *config.Config
	log       *slog.Logger
	reg       *prometheus.Registry
	cache     *cache.Cache
	session   *session.Session
	directory *directory.Directory

	dbpool *pgxpool.Pool
	rdb    *redis.Client
}

func newApplication(ctx context.Context, configPath string) (*application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg, log: setupLogger(cfg.Env)}

	// Create a separate registry for metrics
	app.reg = prometheus.NewRegistry()
	app.reg.MustRegister(collectors.NewGoCollector())
	app.reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(app.reg)

	store, err := app.openStore(ctx, appMetrics)
	if err != nil {
		app.Close()
		return nil, err
	}

	httpClient := client.CreateHTTPClient(app.log, cfg.API.Timeout)
	remoteClient := remote.NewClient(app.log, httpClient, cfg.API.BaseURL)

	app.cache = cache.New(app.log, store, cfg.Cache.Key, appMetrics)
	if err = app.cache.Load(ctx); err != nil {
		app.log.WarnContext(ctx, "Failed to restore cached user, starting empty", sl.Err(err))
	}

	opts := []session.Option{session.WithLoginRetry(cfg.API.LoginRetries, cfg.API.LoginRetryWait)}
	if jar, ok := httpClient.Jar.(*client.CookieJar); ok {
		opts = append(opts, session.WithCookieJar(jar))
	}
	if journal := app.openJournal(ctx, appMetrics); journal != nil {
		opts = append(opts, session.WithJournal(journal))
	}

	app.session = session.NewSession(app.log, remoteClient, app.cache,
		mutator.New(app.log, remoteClient, appMetrics), appMetrics, opts...)
	app.directory = directory.NewDirectory(app.log, remoteClient,
		availability.NewMatcher(datewindow.NewCalendar(nil)), appMetrics, nil)

	return app, nil
}

func (a *application) openStore(ctx context.Context, appMetrics *metrics.Metrics) (cache.Store, error) {
	switch a.cfg.Cache.Store {
	case config.StoreFile:
		return cache.NewFileStore(a.cfg.Cache.Dir), nil
	case config.StoreRedis:
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		return cache.NewRedisStore(a.rdb, a.cfg.Redis.Prefix, a.cfg.Redis.TTL), nil
	case config.StorePostgres:
		pool, err := a.database(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		return repository.NewSessionRepository(pool, appMetrics), nil
	default:
		return nil, nil
	}
}

// openJournal returns nil when no database is configured or it cannot be reached.
func (a *application) openJournal(ctx context.Context, appMetrics *metrics.Metrics) repository.JournalRepoIface {
	if !a.cfg.Postgres.Enabled() {
		return nil
	}

	pool, err := a.database(ctx)
	if err != nil {
		a.log.WarnContext(ctx, "Save journal disabled", sl.Err(err))
		return nil
	}
	return repository.NewJournalRepository(pool, appMetrics)
}

func (a *application) database(ctx context.Context) (*pgxpool.Pool, error) {
	if a.dbpool != nil {
		return a.dbpool, nil
	}

	pool, err := repository.NewDatabase(ctx, a.cfg.Postgres.Conn())
	if err != nil {
		return nil, err
	}
	a.dbpool = pool
	return pool, nil
}

func (a *application) Close() {
	if a.dbpool != nil {
		a.dbpool.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn("Failed to close redis client", sl.Err(err))
		}
	}
}
