package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/tair/voltmarket/internal/api"
	"github.com/tair/voltmarket/internal/config"
	"github.com/tair/voltmarket/internal/session"
	"github.com/tair/voltmarket/internal/viewmodel"
	"github.com/tair/voltmarket/pkg/database"
	"github.com/tair/voltmarket/pkg/logger"
)

// ProvideSessionStore opens the configured session backend, seals tokens when a
// key is configured and traces every backend call. The cleanup closes the backend.
func ProvideSessionStore(cfg *config.Config) (session.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		store   session.Store
		cleanup = func() {}
	)

	switch cfg.Session.Backend {
	case config.BackendMemory:
		store = session.NewMemoryStore()

	case config.BackendSQLite, config.BackendPostgres:
		driver := database.DriverPostgres
		if cfg.Session.Backend == config.BackendSQLite {
			driver = database.DriverSQLite
			if dir := filepath.Dir(cfg.Session.DSN); dir != "." {
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return nil, nil, fmt.Errorf("failed to create session directory: %w", err)
				}
			}
		}
		db, err := database.Open(database.Config{Driver: driver, DSN: cfg.Session.DSN})
		if err != nil {
			return nil, nil, err
		}
		sqlStore := session.NewSQLStore(db)
		if err := sqlStore.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store = sqlStore
		cleanup = func() { db.Close() }

	case config.BackendGorm:
		db, err := database.OpenGorm(cfg.Session.DSN)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		gormStore := session.NewGormStore(db)
		if err := gormStore.AutoMigrate(); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to migrate session table: %w", err)
		}
		store = gormStore
		cleanup = closeDB

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = session.NewRedisStore(client, "")
		cleanup = func() { client.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	if len(cfg.Session.Key) > 0 {
		sealer, err := session.NewSealer(cfg.Session.Key)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		store = session.NewSealedStore(store, sealer)
	}

	logger.Logger.Debug().
		Str("backend", cfg.Session.Backend).
		Bool("sealed", len(cfg.Session.Key) > 0).
		Msg("Session store ready")

	return session.NewTracingStore(store, cfg.Session.Backend), cleanup, nil
}

// ProvideSessionManager loads the persisted session into a manager
func ProvideSessionManager(store session.Store) (*session.Manager, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m := session.NewManager(store)
	if _, err := m.Load(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// ProvideRegistry creates the registry the client metrics are exposed from
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

// ProvideMetrics registers the API client metrics
func ProvideMetrics(reg *prometheus.Registry) (*api.Metrics, error) {
	return api.NewMetrics(reg)
}

// ProvideAPIClient creates the backend client reading its token from creds
func ProvideAPIClient(cfg *config.Config, creds api.CredentialProvider, metrics *api.Metrics) (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, creds, api.WithMetrics(metrics))
}

// ProvideTiming maps the UI settings onto controller delays
func ProvideTiming(cfg *config.Config) viewmodel.Timing {
	return viewmodel.Timing{
		SearchDebounce: cfg.UI.SearchDebounce,
		MessageTTL:     cfg.UI.MessageTTL,
	}
}
