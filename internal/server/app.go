// Package server assembles and runs the synchronization server: it wires
// configuration, the account service and the HTTP facade, and handles
// graceful shutdown on OS signals.
package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/evetools/mumble-sync/internal/logging"
	"github.com/evetools/mumble-sync/internal/server/avatar"
	"github.com/evetools/mumble-sync/internal/server/config"
	"github.com/evetools/mumble-sync/internal/server/httpapi"
	"github.com/evetools/mumble-sync/internal/server/plugincfg"
	"github.com/evetools/mumble-sync/internal/server/repositories/repomanager"
	"github.com/evetools/mumble-sync/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	http   *httpapi.Server
}

func NewApp(c *config.Config) *App {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	accountService := services.NewAccountService(
		c,
		plugincfg.NewLoader(c.PluginConfigPath),
		repomanager.NewPostgresRepositoryManager(),
		avatar.NewHTTPSource(""),
		logger,
	)

	return &App{
		config: c,
		logger: logger,
		http:   httpapi.NewServer(c.EndpointAddrHTTP, accountService, logger),
	}
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
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(); err != nil {
			app.logger.Error(ctx, "http server stopped", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.http.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}

	wg.Wait()
	app.logger.Info(context.Background(), "app stopped")
}
