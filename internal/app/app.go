// Package app wires configuration, storage, ingestion and the HTTP server
// into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/curiosinfo/curiosinfo/internal/auth"
	"github.com/curiosinfo/curiosinfo/internal/cache"
	"github.com/curiosinfo/curiosinfo/internal/config"
	"github.com/curiosinfo/curiosinfo/internal/database"
	"github.com/curiosinfo/curiosinfo/internal/filestore"
	"github.com/curiosinfo/curiosinfo/internal/httpapi"
	"github.com/curiosinfo/curiosinfo/internal/ingest"
	"github.com/curiosinfo/curiosinfo/internal/logging"
	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/ratelimit"
	"github.com/curiosinfo/curiosinfo/internal/sources"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

// App holds all application dependencies
type App struct {
	Config         *config.Config
	Logger         *logging.Logger
	Cache          cache.Cache
	Store          storage.Store
	IngestSvc      *ingest.Service
	AuthMiddleware *auth.Middleware
	HTTPServer     *httpapi.Server
	db             *database.DB
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	app.Logger = logging.New(logging.ParseLevel(cfg.Logging.Level))
	app.Cache = app.initCache()

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.seedActors(context.Background()); err != nil {
		return nil, fmt.Errorf("seeding actors: %w", err)
	}

	limiter := ratelimit.New(cfg.Server.RateLimitDur)
	feedClient := sources.NewClient(limiter, sources.DefaultConfig())
	app.IngestSvc = ingest.New(app.Store, feedClient, app.Logger, cfg.Ingest.DryRun)

	app.AuthMiddleware = auth.NewMiddleware(cfg.Auth.AdminToken)
	app.HTTPServer = httpapi.New(app.Store, app.Cache, app.IngestSvc, app.AuthMiddleware, app.Logger)

	return app, nil
}

// Run starts the HTTP server and blocks until it stops.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("Starting HTTP server", logging.WithField("addr", a.Config.Server.HTTPAddr))

	err := a.HTTPServer.Start(a.Config.Server.HTTPAddr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
		}
	}

	return nil
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr: a.Config.Cache.RedisAddr,
		}, a.Config.Cache.TTL)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
			return cache.NewMemory(a.Config.Cache.TTL)
		}
		return redisCache
	default:
		a.Logger.Info("Using in-memory cache backend")
		return cache.NewMemory(a.Config.Cache.TTL)
	}
}

// initStore selects and initializes the persistence backend. Postgres is
// opt-in; a connection or migration failure is fatal rather than silently
// degraded, since both backends hold real data.
func (a *App) initStore() error {
	switch a.Config.Storage.Backend {
	case "postgres":
		db, err := database.New(database.Config{
			Host:     a.Config.Database.Host,
			Port:     a.Config.Database.Port,
			User:     a.Config.Database.User,
			Password: a.Config.Database.Password,
			Database: a.Config.Database.Database,
			SSLMode:  a.Config.Database.SSLMode,
		})
		if err != nil {
			return fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		if err := db.Migrate(context.Background()); err != nil {
			db.Close()
			return fmt.Errorf("running migrations: %w", err)
		}
		a.db = db
		a.Store = database.NewStore(db)
		a.Logger.Info("Using PostgreSQL storage backend")
		return nil

	case "file", "":
		store, err := filestore.New(a.Config.Storage.DataDir, a.Logger)
		if err != nil {
			return fmt.Errorf("initializing file storage: %w", err)
		}
		a.Store = store
		a.Logger.Info("Using file storage backend", logging.WithField("dir", a.Config.Storage.DataDir))
		return nil

	default:
		return fmt.Errorf("unknown storage backend %q", a.Config.Storage.Backend)
	}
}

// seedActors loads the YAML roster and inserts every entry whose slug is not
// already stored. Existing actors are never overwritten.
func (a *App) seedActors(ctx context.Context) error {
	cfg, err := sources.FindActorsConfig(a.Config.Ingest.ActorsFile)
	if err != nil {
		return err
	}
	if len(cfg.Actors) == 0 {
		return nil
	}

	seeded := 0
	for _, seed := range cfg.Actors {
		slug := seed.Slug
		if slug == "" {
			slug = models.Slugify(seed.Name)
		}
		existing, err := a.Store.GetActorBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := a.Store.CreateActor(ctx, models.CreateActorParams{
			Name:      seed.Name,
			Slug:      slug,
			ActorType: seed.ActorType,
			FeedURL:   seed.FeedURL,
			LibAutor:  seed.LibAutor,
			IndivCol:  seed.IndivCol,
			NatioMon:  seed.NatioMon,
			ProgCons:  seed.ProgCons,
		}); err != nil {
			return fmt.Errorf("seeding actor %q: %w", seed.Name, err)
		}
		seeded++
	}

	if seeded > 0 {
		a.Cache.Clear()
		a.Logger.Info("Seeded actors", logging.WithField("count", seeded))
	}
	return nil
}
