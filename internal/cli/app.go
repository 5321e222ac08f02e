package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/nodekeeper/internal/config"
	"github.com/dmitrijs2005/nodekeeper/internal/dbx"
	"github.com/dmitrijs2005/nodekeeper/internal/defaults"
	"github.com/dmitrijs2005/nodekeeper/internal/filex"
	"github.com/dmitrijs2005/nodekeeper/internal/logging"
	"github.com/dmitrijs2005/nodekeeper/internal/securestore"
	"github.com/dmitrijs2005/nodekeeper/internal/services"
	"github.com/dmitrijs2005/nodekeeper/internal/storage"
	"github.com/dmitrijs2005/nodekeeper/internal/txqueue"
)

// queueBuffer is how many pending registry mutations the queue preallocates
// room for.
const queueBuffer = 16

type App struct {
	credentials services.CredentialService
	registry    *services.AsyncRegistry
	settings    *services.Settings
	logger      logging.Logger

	reader *bufio.Reader
	out    io.Writer

	closers []func()
}

// NewApp builds an App over ready services. Output goes to out and line
// input is read from in.
func NewApp(credentials services.CredentialService, registry *services.AsyncRegistry, settings *services.Settings,
	logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		credentials: credentials,
		registry:    registry,
		settings:    settings,
		logger:      logger,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

// Open wires the full application from cfg: data files, database,
// migrations, sealing key, services and the transaction queue.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	for _, p := range []string{cfg.DatabasePath, cfg.KeyFilePath} {
		if err := filex.EnsureParentDir(p); err != nil {
			return nil, err
		}
	}

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	key, err := securestore.LoadSealingKey(cfg.KeyFilePath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := Wire(db, key, cfg, logger, in, out)
	logger.Debug(ctx, "application opened", "db", cfg.DatabasePath, "network", string(cfg.Network))
	return app, nil
}

// Wire builds the services over an open, migrated database.
func Wire(db *sql.DB, sealingKey []byte, cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) *App {
	tr := dbx.NewSQLTransactor(db, nil)
	repos := storage.SQLiteRepositoryManager{}
	queue := txqueue.New(logger, queueBuffer)

	reg := services.NewRegistryService(tr, repos, defaults.Embedded{}, cfg.Network, logger)
	app := NewApp(
		services.NewCredentialService(tr, repos, sealingKey, logger),
		services.NewAsyncRegistry(reg, queue),
		services.NewSettings(repos.Settings(db)),
		logger, in, out,
	)
	app.closers = append(app.closers, queue.Close, func() { _ = db.Close() })
	return app
}

// Close drains pending mutations and releases the database.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// Run installs the default servers if that never happened, reminds the user
// to set a password, and then blocks in the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.ensureDefaults(ctx); err != nil {
		return err
	}

	done, err := a.credentials.IsSetupComplete(ctx)
	if err != nil {
		return err
	}

	a.println("nodekeeper (type 'help' for commands)")
	if !done {
		a.println("No application password set yet. Use 'passwd' to set one.")
	}

	runREPL(ctx, a, a.reader, a.out)
	return nil
}

func (a *App) ensureDefaults(ctx context.Context) error {
	err := services.Wait(ctx, func(done txqueue.Completion) {
		a.registry.EnsureDefaultsAsync(ctx, done)
	})
	if err != nil {
		a.logger.Error(ctx, "default servers not installed", "error", err)
		return fmt.Errorf("install default servers: %w", err)
	}
	return nil
}
