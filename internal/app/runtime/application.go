// Package runtime boots the entity layer from configuration: database,
// cache, outbound clients, HTTP server and background services.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/FolioWorks/entity_layer/internal/app"
	"github.com/FolioWorks/entity_layer/internal/app/metrics"
	"github.com/FolioWorks/entity_layer/internal/app/services/health"
	"github.com/FolioWorks/entity_layer/internal/app/storage/postgres"
	"github.com/FolioWorks/entity_layer/internal/config"
	"github.com/FolioWorks/entity_layer/internal/identity"
	"github.com/FolioWorks/entity_layer/internal/middleware"
	"github.com/FolioWorks/entity_layer/internal/objectstore"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Runtime is the fully assembled process.
type Runtime struct {
	cfg    config.Config
	log    *logger.Logger
	app    *app.Application
	server *http.Server
	db     *sql.DB
	cache  *redis.Client
}

// New assembles a runtime from configuration.
func New(cfg config.Config) (*Runtime, error) {
	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
		Name:   "entity-layer",
	})

	rt := &Runtime{cfg: cfg, log: log}

	stores := app.Stores{}
	var pinger health.Pinger
	if strings.EqualFold(cfg.Database.Driver, "postgres") {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		rt.db = db
		store := postgres.New(db)
		stores = app.Stores{
			Drafts:    store,
			Entities:  store,
			Providers: store,
			Invites:   store,
			Roster:    store,
		}
		pinger = dbPinger{db}
		log.Info("postgres store ready")
	} else {
		log.Warn("running with the in-memory store, data will not survive restarts")
	}

	if cfg.Redis.Addr != "" {
		rt.cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var directory identity.Directory
	if cfg.Identity.BaseURL != "" {
		client, err := identity.NewClient(identity.Config{
			BaseURL:   cfg.Identity.BaseURL,
			SecretKey: cfg.Identity.SecretKey,
			Timeout:   cfg.Identity.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("identity client: %w", err)
		}
		directory = client
	}

	var uploader objectstore.Uploader
	if cfg.Storage.BaseURL != "" {
		client, err := objectstore.NewClient(objectstore.Config{
			BaseURL:    cfg.Storage.BaseURL,
			ServiceKey: cfg.Storage.ServiceKey,
			Timeout:    cfg.Storage.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		uploader = client
	}

	application, err := app.New(app.Options{
		Stores:      stores,
		Directory:   directory,
		Uploader:    uploader,
		Redis:       rt.cache,
		HealthPing:  pinger,
		LinkBaseURL: cfg.Invites.LinkBaseURL,
		DraftTTL:    cfg.Drafts.TTL,
		SweepCron:   cfg.Drafts.SweepSchedule,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	rt.app = application

	rt.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      rt.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return rt, nil
}

// router assembles the public surface: health and metrics outside auth, the
// API behind cors, rate limiting, metrics and bearer auth.
func (rt *Runtime) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", rt.app.API.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	limiter := middleware.NewRateLimiter(rt.cfg.RateLimit.RequestsPerSecond, rt.cfg.RateLimit.Burst, rt.log)
	limiter.StartCleanup(time.Minute)
	auth := middleware.NewAuthMiddleware([]byte(rt.cfg.Auth.Secret), rt.log, rt.cfg.Auth.SkipPaths)
	cors := middleware.NewCORSMiddleware(rt.cfg.CORS.AllowedOrigins)

	api := cors.Handler(limiter.Handler(middleware.Metrics(auth.Handler(rt.app.API))))
	r.PathPrefix("/").Handler(api)
	return r
}

// Run starts background services and serves HTTP until ctx is cancelled.
func (rt *Runtime) Run(ctx context.Context) error {
	if err := rt.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.WithField("addr", rt.server.Addr).Info("http server listening")
		if err := rt.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	return rt.Shutdown()
}

// Shutdown stops the HTTP server, background services and connections.
func (rt *Runtime) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := rt.server.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := rt.app.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	rt.log.Info("shutdown complete")
	return firstErr
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

type dbPinger struct{ db *sql.DB }

func (p dbPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
