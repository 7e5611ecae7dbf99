// Package server wires the SecureDoc components together and runs the gRPC
// and REST endpoints until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/blobstore"
	"github.com/dmitrijs2005/securedoc/internal/server/config"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securedoc/internal/server/rest"
	"github.com/dmitrijs2005/securedoc/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/securedoc/internal/server/grpc"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// Components are the constructed services shared by the server and the
// admin CLI.
type Components struct {
	DB          *sql.DB
	RepoManager repomanager.RepositoryManager
	Store       blobstore.Store
	Directory   *services.Directory
	Users       *services.UserService
	Categories  *services.CategoryService
	Documents   *services.DocumentService
	Ledger      *services.LedgerService
	Uploads     *services.UploadService
	Downloads   *services.DownloadService
}

// Build opens the database and constructs every service. notifier receives
// UserProvisioned events; nil selects a LogNotifier.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger, notifier services.Notifier) (*Components, error) {
	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := blobstore.New(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	return assemble(db, repomanager.NewPostgresRepositoryManager(), store, cfg, logger, notifier), nil
}

func assemble(db *sql.DB, rm repomanager.RepositoryManager, store blobstore.Store, cfg *config.Config,
	logger logging.Logger, notifier services.Notifier) *Components {
	if notifier == nil {
		notifier = services.NewLogNotifier(logger)
	}

	dir := services.NewDirectory(db, rm, cfg.DirectoryCacheTTL)
	ledger := services.NewLedgerService(db, rm, logger)

	return &Components{
		DB:          db,
		RepoManager: rm,
		Store:       store,
		Directory:   dir,
		Users:       services.NewUserService(db, rm, cfg, dir, notifier, logger),
		Categories:  services.NewCategoryService(db, rm, logger),
		Documents:   services.NewDocumentService(db, rm, logger),
		Ledger:      ledger,
		Uploads:     services.NewUploadService(db, rm, store, ledger, cfg, logger),
		Downloads:   services.NewDownloadService(db, rm, store, dir, cfg, logger),
	}
}

// Set exposes the services to the transports.
func (c *Components) Set() services.Set {
	return services.Set{
		Users:      c.Users,
		Categories: c.Categories,
		Documents:  c.Documents,
		Ledger:     c.Ledger,
		Uploads:    c.Uploads,
		Downloads:  c.Downloads,
	}
}

// Migrate applies pending schema migrations.
func (c *Components) Migrate(ctx context.Context) error {
	return c.RepoManager.RunMigrations(ctx, c.DB)
}

// Close waits for pending notifications and closes the database.
func (c *Components) Close() error {
	c.Users.Wait()
	return c.DB.Close()
}

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	components *Components
	servers    []runner
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	comps, err := Build(ctx, c, logger, nil)
	if err != nil {
		return nil, err
	}

	return newApp(c, logger, comps), nil
}

func newApp(c *config.Config, logger logging.Logger, comps *Components) *App {
	set := comps.Set()
	return &App{
		config:     c,
		logger:     logger,
		components: comps,
		servers: []runner{
			gs.NewGRPCServer(c.EndpointAddrGRPC, logger, set, c.SecretKey),
			rest.NewHTTPServer(c.EndpointAddrHTTP, logger, set, c.SecretKey),
		},
	}
}

// Run migrates the schema, then serves until a signal arrives, ctx is done,
// or one endpoint fails. Either failure stops both endpoints.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "blob_backend", app.config.BlobBackend)

	defer func() {
		if err := app.components.Close(); err != nil {
			app.logger.Error(ctx, "close failed", "error", err)
		}
	}()

	if err := app.components.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range app.servers {
		g.Go(func() error {
			return s.Run(gctx)
		})
	}

	err := g.Wait()
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return err
}
