// Package server initializes and runs the application: configuration,
// codecs, database, migrations, services, and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/s3vault/internal/cryptox"
	"github.com/dmitrijs2005/s3vault/internal/logging"
	"github.com/dmitrijs2005/s3vault/internal/server/config"
	"github.com/dmitrijs2005/s3vault/internal/server/httpapi"
	"github.com/dmitrijs2005/s3vault/internal/server/metrics"
	"github.com/dmitrijs2005/s3vault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/s3vault/internal/server/services"
	"github.com/dmitrijs2005/s3vault/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

// NewApp wires the application together. A master key that does not decode
// to exactly 32 bytes is a fatal misconfiguration: construction fails and
// the process must not start.
func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	secretCodec, err := cryptox.NewSecretCodec(c.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("secret codec init error: %w", err)
	}
	payloadCodec, err := cryptox.NewPayloadCodec(c.FilePassphrase)
	if err != nil {
		return nil, fmt.Errorf("payload codec init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	m := metrics.New()
	store := storage.NewInstrumentedStore(storage.NewS3Store(c.S3BaseEndpoint), m)

	us := services.NewUserService(db, rm, c)
	ss := services.NewSettingsService(db, rm, store, secretCodec)
	fs := services.NewFileService(db, rm, store, secretCodec, payloadCodec)

	srv := httpapi.NewServer(c.EndpointAddrHTTP, logger, us, ss, fs, m, c.JWTSecret)

	return &App{config: c, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
