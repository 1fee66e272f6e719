package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/backend/appwrite"
	"github.com/kirinyoku/cinebook/internal/backend/memory"
	"github.com/kirinyoku/cinebook/internal/backend/pgdoc"
	"github.com/kirinyoku/cinebook/internal/config"
	"github.com/kirinyoku/cinebook/internal/postgres"
	"github.com/kirinyoku/cinebook/internal/redis"
	postgresrepo "github.com/kirinyoku/cinebook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/selection"
	httpgin "github.com/kirinyoku/cinebook/internal/transport/http/gin"
)

const sessionPurgeInterval = time.Hour

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	scheduler  gocron.Scheduler
	closers    []func()
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()
	a := &App{cfg: cfg, logger: logger}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	// Initialize backend
	client, purge, err := a.newBackend(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	// Initialize repositories
	prefs := redisrepo.NewPreferenceStore(rdb)
	bookings := redisrepo.NewBookingsPubSub(rdb)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, cfg.Idempotency.TTL)

	// Initialize services
	services := service.NewServices(client, prefs.For, bookings, logger, service.Config{
		Selection: selection.Config{IdleTTL: cfg.Flow.IdleTTL},
	})

	// Background jobs
	scheduler, err := newScheduler(services.Selection, purge, cfg.Flow.SweepInterval, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	a.scheduler = scheduler

	// Initialize Gin router
	draining := make(chan struct{})
	router := httpgin.NewRouter(services, httpgin.Options{
		Idempotency: idempotencyStore,
		AuthLimiter: newAuthLimiter(rdb, cfg.RateLimit),
		AdminKey:    cfg.Admin.Key,
		Draining:    draining,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown waits for active requests; event streams never finish on their own.
	a.httpServer.RegisterOnShutdown(func() { close(draining) })

	return a, nil
}

// newBackend opens the configured backend driver. purge is nil unless the
// driver keeps its own sessions.
func (a *App) newBackend(ctx context.Context) (backend.Client, func(context.Context) (int64, error), error) {
	cfg := a.cfg

	switch cfg.Backend.Driver {
	case config.DriverAppwrite:
		c := appwrite.New(appwrite.Config{
			Endpoint:   cfg.Appwrite.Endpoint,
			ProjectID:  cfg.Appwrite.ProjectID,
			APIKey:     cfg.Appwrite.APIKey,
			DatabaseID: cfg.Appwrite.DatabaseID,
			Collections: map[string]string{
				backend.CollectionUsers:    cfg.Appwrite.UsersCollection,
				backend.CollectionMovies:   cfg.Appwrite.MoviesCollection,
				backend.CollectionBookings: cfg.Appwrite.BookingsCollection,
			},
		}, &http.Client{Timeout: cfg.Appwrite.Timeout})
		a.logger.Info("backend selected", "driver", cfg.Backend.Driver, "endpoint", cfg.Appwrite.Endpoint)
		return c, nil, nil

	case config.DriverPostgres:
		pool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN(), MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		store := postgresrepo.NewStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}

		b, err := pgdoc.New(store, pgdoc.Config{
			SessionKey: []byte(cfg.Session.Secret),
			SessionTTL: cfg.Session.TTL,
			BcryptCost: bcrypt.DefaultCost,
			Logger:     a.logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres backend: %w", err)
		}
		a.logger.Info("backend selected", "driver", cfg.Backend.Driver, "host", cfg.Postgres.Host)
		return b, b.PurgeSessions, nil

	case config.DriverMemory:
		a.logger.Warn("backend selected", "driver", cfg.Backend.Driver, "note", "data is lost on restart")
		return memory.New(memory.WithSessionTTL(cfg.Session.TTL)), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
}

func newAuthLimiter(rdb *goredis.Client, cfg config.RateLimitConfig) httpgin.Limiter {
	if cfg.AuthLimit == 0 {
		return nil
	}
	return redisrepo.NewSlidingWindowLimiter(rdb, "auth", cfg.AuthLimit, cfg.AuthWindow)
}

func newScheduler(
	sel *selection.Service,
	purge func(context.Context) (int64, error),
	sweepEvery time.Duration,
	logger *slog.Logger,
) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if _, err := s.NewJob(
		gocron.DurationJob(sweepEvery),
		gocron.NewTask(func() { sel.Sweep() }),
		gocron.WithName("flow-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, err
	}

	if purge != nil {
		if _, err := s.NewJob(
			gocron.DurationJob(sessionPurgeInterval),
			gocron.NewTask(func(ctx context.Context) {
				n, err := purge(ctx)
				if err != nil {
					logger.Error("session purge failed", "err", err)
					return
				}
				if n > 0 {
					logger.Info("expired sessions purged", "count", n)
				}
			}),
			gocron.WithName("session-purge"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Background jobs
	a.scheduler.Start()
	a.logger.Info("scheduler started", "jobs", len(a.scheduler.Jobs()))

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := a.httpServer.Shutdown(ctx)
		if serr := a.scheduler.Shutdown(); serr != nil {
			a.logger.Error("scheduler shutdown", "err", serr)
		}
		return err
	})

	return g.Wait()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
