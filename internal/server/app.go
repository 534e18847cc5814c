// Package server wires the gophauth server together: configuration, the
// database with its migrations, the password and token machinery, and the
// gRPC and metrics endpoints. It stops both endpoints on SIGINT or SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repos       repomanager.RepositoryManager
	metrics     *metrics.Metrics
	userService *services.UserService

	// connectBackoff paces database pings at startup.
	connectBackoff func() retry.Backoff
}

func defaultConnectBackoff() retry.Backoff {
	b := retry.NewExponential(500 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	return retry.WithMaxRetries(8, b)
}

// NewApp validates c and builds every component. Logs go to w.
func NewApp(c *config.Config, w io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel, w)
	if err != nil {
		return nil, err
	}

	if c.WeakSecret() {
		logger.Warn(context.Background(), "Token secret is weak; set a random secret of at least 32 bytes",
			"length", len(c.SecretKey))
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := metrics.New()

	hasher := auth.NewHashPool(
		auth.NewArgon2id(c.HashMemoryKB, c.HashIterations, c.HashThreads),
		c.HashWorkers,
		auth.WithHashObserver(m.ObserveHash),
	)

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret:     []byte(c.SecretKey),
		AccessTTL:  c.AccessTokenValidityDuration,
		RefreshTTL: c.RefreshTokenValidityDuration,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	repos := newRepositoryManager()
	us := services.NewUserService(db, repos, hasher, codec, m, logger)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		repos:          repos,
		metrics:        m,
		userService:    us,
		connectBackoff: defaultConnectBackoff,
	}, nil
}

func (app *App) Close() error {
	return app.db.Close()
}

// connect waits for the database to answer a ping.
func (app *App) connect(ctx context.Context) error {
	attempt := 0
	err := retry.Do(ctx, app.connectBackoff(), func(ctx context.Context) error {
		attempt++
		if err := app.db.PingContext(ctx); err != nil {
			app.logger.Warn(ctx, "database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	return nil
}

func (app *App) migrate(ctx context.Context) error {
	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return err
	}
	v, err := app.repos.SchemaVersion(ctx, app.db)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "Database schema is up to date", "version", v)
	return nil
}

// Run connects, migrates and serves until ctx is cancelled or a signal
// arrives. A server that fails to start stops the other one.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	if err := app.connect(ctx); err != nil {
		return err
	}
	if err := app.migrate(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService)
		if err := s.Run(gctx); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			s := metrics.NewServer(app.config.MetricsAddr, app.metrics, app.db.PingContext, app.logger)
			if err := s.Run(gctx); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
