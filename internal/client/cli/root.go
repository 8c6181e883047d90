package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/filex"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/spf13/cobra"
)

// newApp is a test seam for NewApp.
var newApp = NewApp

func newLogger(cfg *config.Config) (logging.Logger, io.Closer, error) {
	path, err := filex.EnsureParentDir(cfg.LogPath)
	if err != nil {
		return nil, nil, err
	}
	l, closer := logging.NewRotatingFile(logging.FileOptions{
		Path:  path,
		Level: logging.ParseLevel(cfg.LogLevel),
	})
	return l, closer, nil
}

func (a *App) getStatus() string {
	var parts []string
	if id := a.userID(context.Background()); id != "" {
		parts = append(parts, shortID(id))
	}
	if a.sync != nil {
		if a.sync.Online() {
			parts = append(parts, "online")
		} else {
			parts = append(parts, "offline")
		}
	}
	if a.store != nil && !a.store.IsAvailable() {
		parts = append(parts, "online-only")
	} else if a.engine != nil && a.isLoggedIn() {
		parts = append(parts, string(a.engine.Status()))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Shell runs the interactive mode until the user exits. The connectivity
// monitor runs for the lifetime of the shell and syncs whenever the server
// becomes reachable.
func (a *App) Shell(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := a.watchStatus(ctx)
	defer stop()

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		a.sync.Run(ctx)
	}()

	printlnFn("Welcome to notekeeper (type 'help' for commands)")
	if !a.isLoggedIn() {
		if err := a.Login(ctx, nil); err != nil {
			a.logger.Warn(ctx, "login failed", "error", err)
		}
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

// NewRootCommand builds the notekeeper command tree. Without a subcommand
// it starts the interactive shell.
func NewRootCommand() *cobra.Command {
	var (
		app       *App
		logCloser io.Closer
	)

	root := &cobra.Command{
		Use:           "notekeeper",
		Short:         "Offline-first notes with server sync",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			logger, closer, err := newLogger(cfg)
			if err != nil {
				return err
			}
			logCloser = closer
			app, err = newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			app.out = cmd.OutOrStdout()
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			var err error
			if app != nil {
				err = app.Close()
			}
			if logCloser != nil {
				err = errors.Join(err, logCloser.Close())
			}
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.Shell(cmd.Context())
			return nil
		},
	}
	config.RegisterFlags(root)

	command := func(use, short string, args cobra.PositionalArgs, run func(a *App, ctx context.Context, args []string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(app, cmd.Context(), args)
			},
		}
	}

	var discard bool
	logout := command("logout", "Sign out", cobra.NoArgs, func(a *App, ctx context.Context, _ []string) error {
		if discard {
			return a.Logout(ctx, []string{"--discard"})
		}
		return a.Logout(ctx, nil)
	})
	logout.Flags().BoolVar(&discard, "discard", false, "also delete local notes and unsynced changes")

	var encrypt bool
	export := command("export [path]", "Download an archive of all notes", cobra.MaximumNArgs(1), func(a *App, ctx context.Context, args []string) error {
		if encrypt {
			args = append(args, encryptFlag)
		}
		return a.Export(ctx, args)
	})
	export.Flags().BoolVar(&encrypt, "encrypt", false, "seal the archive with a passphrase")

	root.AddCommand(
		command("register", "Create an account", cobra.NoArgs, (*App).Register),
		command("login", "Sign in and keep the session locally", cobra.NoArgs, (*App).Login),
		logout,
		command("shell", "Start the interactive shell", cobra.NoArgs, func(a *App, ctx context.Context, _ []string) error {
			a.Shell(ctx)
			return nil
		}),
		command("sync", "Synchronize with the server now", cobra.NoArgs, (*App).Sync),
		command("status", "Show connection and sync status", cobra.NoArgs, (*App).Status),
		command("queue", "List unsynced changes", cobra.NoArgs, (*App).Queue),
		command("retry <queue-id>|all", "Retry failed changes", cobra.ExactArgs(1), (*App).Retry),
		export,
		command("decrypt <in> <out>", "Decrypt an archive written by export --encrypt", cobra.ExactArgs(2), (*App).Decrypt),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
			PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
