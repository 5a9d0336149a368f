package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"go-sse-broadcast/internal/application/facade"
	"go-sse-broadcast/internal/infrastructure/config"
	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
	"go-sse-broadcast/internal/infrastructure/server"
)

func main() {
	startedAt := time.Now()

	configPath := flag.String("config", config.DefaultConfigFile, "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	lCfg, err := cfg.Log.LoggerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogrusLogger(lCfg)

	ctx := context.Background()
	sctx := WithSignal(ctx)

	hubInstance := hub.New(
		log,
		hub.WithHeartbeatInterval(cfg.Hub.HeartbeatInterval),
		hub.WithGeneratorInterval(cfg.Hub.GeneratorInterval),
		hub.WithSampler(hub.NewStockSampler(cfg.Hub.Symbol)),
	)

	// Start the hub first
	if err := hubInstance.Start(ctx); err != nil {
		log.Errorf("failed to start hub: %v", err)
		return
	}

	gin.SetMode(cfg.Server.GinMode)
	events := facade.NewEventApplicationService(hubInstance, log, startedAt)
	router := InitRouter(hubInstance, events, log, cfg.Hub.WriteTimeout)
	httpSrv := server.NewHTTPServer(router, server.Options{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	})

	log.Infof("SSE server listening on %s", cfg.Server.Addr)
	app := newApplication(log, httpSrv, hubInstance, cfg.Server.ShutdownTimeout)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

type Application struct {
	logger          logger.Logger
	httpSrv         server.Server
	hub             *hub.Hub
	shutdownTimeout time.Duration
}

func newApplication(
	logger logger.Logger,
	httpSrv server.Server,
	hubInstance *hub.Hub,
	shutdownTimeout time.Duration,
) *Application {
	return &Application{
		logger:          logger.WithField("app", "sse"),
		httpSrv:         httpSrv,
		hub:             hubInstance,
		shutdownTimeout: shutdownTimeout,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg, gctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return app.httpSrv.Start(gctx)
	})

	eg.Go(func() error {
		<-gctx.Done()

		gracefulshutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			app.shutdownTimeout,
		)
		defer cancel()

		// Stop hub first so open streams end and the server can drain
		if err := app.hub.Stop(gracefulshutdownCtx); err != nil {
			app.logger.Errorf("failed to stop hub: %v", err)
		}

		return app.httpSrv.Stop(gracefulshutdownCtx)
	})

	return eg.Wait()
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
