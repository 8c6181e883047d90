// Package server wires the backend together: configuration, PostgreSQL,
// migrations, services, the gRPC endpoint and the HTTP health endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/notekeeper/internal/server/grpc"
)

// runner is a component that serves until its context is done.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	runners []runner
}

// NewApp opens the database, applies migrations and builds every service.
// The caller owns the returned App and must call Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	storage, err := services.NewS3Storage(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	ss := services.NewSyncService(db, rm)
	as := services.NewArchiveService(ss, storage, c.ArchiveLinkValidityDuration)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		runners: []runner{
			gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, ss, as, c.SecretKey),
			httpapi.NewServer(c.EndpointAddrHTTP, db, logger),
		},
	}, nil
}

// Run serves until ctx is done or one of the endpoints fails; a failure
// stops the others.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range app.runners {
		g.Go(func() error { return r.Run(gctx) })
	}

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) Close() error {
	return app.db.Close()
}
