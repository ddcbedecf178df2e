// Package server wires configuration, storage, services and the HTTP API
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/foodgram/internal/logging"
	"github.com/dmitrijs2005/foodgram/internal/server/config"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/foodgram/internal/server/rest"
	"github.com/dmitrijs2005/foodgram/internal/server/services"
	"github.com/dmitrijs2005/foodgram/internal/shortcode"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *rest.HTTPServer
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, os.Stdout)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	codec, err := shortcode.New(c.ShortLinkSalt, c.ShortLinkMinLength)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	svc := rest.Services{
		Users:    services.NewUserService(db, rm, c),
		Recipes:  services.NewRecipeService(db, rm),
		Actions:  services.NewActionService(db, rm),
		Shopping: services.NewShoppingListService(db, rm),
		Catalog:  services.NewCatalogService(db, rm),
		Images:   services.NewImageService(c),
		Links:    services.NewLinkService(db, rm, codec, c.PublicBaseURL, c.FallbackURL),
	}

	hs := rest.NewHTTPServer(c.EndpointAddrHTTP, logger, svc, c.SecretKey, c.DefaultPageSize, c.MaxPageSize, c.PublicBaseURL)

	return &App{config: c, logger: logger, db: db, http: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or the HTTP server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
