package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/netmon"
	"github.com/dmitrijs2005/notekeeper/internal/client/queue"
	"github.com/dmitrijs2005/notekeeper/internal/client/remote"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/notetags"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/tags"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/dmitrijs2005/notekeeper/internal/client/syncer"
	"github.com/dmitrijs2005/notekeeper/internal/filex"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// syncControl is what the shell needs from the network monitor.
type syncControl interface {
	Run(ctx context.Context)
	Online() bool
	Kick(ctx context.Context) bool
	Trigger(ctx context.Context) bool
}

// syncState is what the shell needs from the sync engine.
type syncState interface {
	Status() models.SyncStatus
	Running() bool
	LastCheckpoint(ctx context.Context) (time.Time, error)
	Subscribe(fn syncer.Listener) (unsubscribe func())
}

type exporter interface {
	Export(ctx context.Context, path string, passphrase []byte) (*services.ExportResult, error)
}

type App struct {
	config *config.Config
	logger logging.Logger
	out    io.Writer
	reader *bufio.Reader

	store    *store.Store
	queue    *queue.Queue
	sessions session.Provider

	authService   services.AuthService
	exportService exporter
	sync          syncControl
	engine        syncState

	notes *notes.Repository
	tags  *tags.Repository
	links *notetags.Repository

	closers []io.Closer
	bg      sync.WaitGroup
}

// NewApp wires the client. A local store that cannot be opened is not
// fatal: the app then works online only.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dbPath, err := filex.EnsureParentDir(c.DBPath)
	if err != nil {
		logger.Warn(ctx, "cannot prepare database directory", "error", err)
		dbPath = c.DBPath
	}
	s := store.Open(ctx, dbPath, logger)
	if !s.IsAvailable() {
		logger.Warn(ctx, "local store unavailable, working online only", "error", s.Err())
	}

	sessions := session.NewManager(s, logger)
	rc, err := remote.NewGRPCClient(c.ServerEndpointAddr, sessions, c.RequestTimeout)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	q := queue.New(s)
	engine := syncer.New(rc, s, q, sessions, logger)
	deps := repositories.Deps{Store: s, Queue: q, Remote: rc, Applier: engine, Sessions: sessions}
	nr := notes.New(deps)
	tr := tags.New(deps)

	a := &App{
		config:        c,
		logger:        logger.With("module", "cli"),
		out:           os.Stdout,
		reader:        bufio.NewReader(os.Stdin),
		store:         s,
		queue:         q,
		sessions:      sessions,
		authService:   services.NewAuthService(rc, sessions, s),
		exportService: services.NewExportService(rc, sessions, nil),
		sync:          netmon.New(rc, engine, c.OnlineCheckInterval, logger),
		engine:        engine,
		notes:         nr,
		tags:          tr,
		links:         notetags.New(deps, nr, tr),
		closers:       []io.Closer{rc, s},
	}
	return a, nil
}

// Close waits for background syncs and releases the connection and store.
func (a *App) Close() error {
	a.bg.Wait()
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *App) isLoggedIn() bool {
	if a.sessions == nil {
		return false
	}
	_, ok := a.sessions.Current(context.Background())
	return ok
}

func (a *App) userID(ctx context.Context) string {
	if a.sessions == nil {
		return ""
	}
	sess, _ := a.sessions.Current(ctx)
	return sess.UserID
}

// kick starts an automatic sync after a local write. Nothing happens while
// offline or when a run is already in progress.
func (a *App) kick(ctx context.Context) {
	if a.sync == nil || a.store == nil || !a.store.IsAvailable() {
		return
	}
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		a.sync.Kick(context.WithoutCancel(ctx))
	}()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
