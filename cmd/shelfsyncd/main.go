// cmd/shelfsyncd/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pklemenc/shelfsync/internal/adapters/localdb"
	"github.com/pklemenc/shelfsync/internal/adapters/lookup"
	"github.com/pklemenc/shelfsync/internal/adapters/remote"
	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/services"
	"github.com/pklemenc/shelfsync/internal/handlers"
	"github.com/pklemenc/shelfsync/internal/handlers/middleware"
	"github.com/pklemenc/shelfsync/internal/pkg/config"
	"github.com/pklemenc/shelfsync/internal/pkg/logger"
	"github.com/pklemenc/shelfsync/internal/syncer"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	slogger := logger.Setup("debug", "json")

	slogger.Info("starting shelfsync daemon",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg.App.Version = Version

	// Reconfigure logger with loaded settings
	slogger = logger.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("store_path", cfg.Store.Path),
		slog.String("remote", cfg.Remote.BaseURL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup(slogger)

	// Background loops: connectivity probing and autosync scheduling.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		deps.monitor.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		deps.scheduler.Run(ctx)
	}()

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}
	}

	// Stop the background loops before closing the store.
	cancel()
	wg.Wait()

	slogger.Info("daemon shutdown complete")
}

// dependencies holds all application dependencies
type dependencies struct {
	store     *localdb.Store
	remote    *remote.Client
	engine    *syncer.Engine
	monitor   *syncer.Monitor
	scheduler *syncer.Scheduler

	inventoryService    *services.InventoryService
	organizationService *services.OrganizationService
	dashboardService    *services.DashboardService

	itemHandler         *handlers.ItemHandler
	transactionHandler  *handlers.TransactionHandler
	syncHandler         *handlers.SyncHandler
	organizationHandler *handlers.OrganizationHandler
	settingsHandler     *handlers.SettingsHandler
	dashboardHandler    *handlers.DashboardHandler
	exportHandler       *handlers.ExportHandler
	lookupHandler       *handlers.LookupHandler
	healthHandler       *handlers.HealthHandler
}

func (d *dependencies) cleanup(logger *slog.Logger) {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			logger.Error("failed to close store", slog.String("error", err.Error()))
		}
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("opening local store", slog.String("path", cfg.Store.Path))

	store, err := localdb.Open(cfg.Store.Path, cfg.Store.BusyTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	deps.store = store

	// Seed the configured org scope into settings so sync pulls the right
	// partition from the first cycle on.
	if cfg.Remote.OrgID != "" {
		settings, err := store.Settings().Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		if !settings.OrgID.Scoped() {
			settings.OrgID = domain.OrgID(cfg.Remote.OrgID).Normalize()
			if err := store.Settings().Put(ctx, settings); err != nil {
				return nil, fmt.Errorf("failed to store settings: %w", err)
			}
		}
	}

	deps.remote = remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, logger)

	lookupClient := lookup.NewClient(cfg.Lookup.Endpoint, cfg.Lookup.Timeout, logger)

	deps.engine = syncer.NewEngine(store, deps.remote, cfg.Sync.PullWindow, logger)
	deps.monitor = syncer.NewMonitor(
		syncer.DialProber{Addr: cfg.RemoteHostPort(), Timeout: cfg.Sync.ProbeTimeout},
		cfg.Sync.ProbeInterval,
		logger,
	)
	deps.scheduler = syncer.NewScheduler(
		deps.engine,
		deps.monitor,
		store.Settings(),
		cfg.Sync.Interval,
		cfg.Sync.SettleDelay,
		logger,
	)

	deps.inventoryService = services.NewInventoryService(store, logger)
	deps.organizationService = services.NewOrganizationService(store, deps.remote, logger)
	deps.dashboardService = services.NewDashboardService(store, deps.remote, logger)

	deps.itemHandler = handlers.NewItemHandler(deps.inventoryService, logger)
	deps.transactionHandler = handlers.NewTransactionHandler(deps.inventoryService, logger)
	deps.syncHandler = handlers.NewSyncHandler(deps.engine, store, deps.monitor, logger)
	deps.organizationHandler = handlers.NewOrganizationHandler(deps.organizationService, logger)
	deps.settingsHandler = handlers.NewSettingsHandler(store.Settings(), logger)
	deps.dashboardHandler = handlers.NewDashboardHandler(deps.dashboardService, logger)
	deps.exportHandler = handlers.NewExportHandler(store, logger)
	deps.lookupHandler = handlers.NewLookupHandler(lookupClient, logger)
	deps.healthHandler = handlers.NewHealthHandler(store, deps.monitor, cfg, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux
	handler = middleware.Logger(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	if cfg.Server.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Server.RateLimitRequests, cfg.Server.RateLimitDuration)(handler)
	}

	registerRoutes(mux, deps)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies) {
	apiV1 := "/api/v1"

	// Health and readiness endpoints
	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
	mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)

	// Item endpoints
	mux.HandleFunc("GET "+apiV1+"/items", deps.itemHandler.List)
	mux.HandleFunc("POST "+apiV1+"/items", deps.itemHandler.Create)
	mux.HandleFunc("GET "+apiV1+"/items/barcode/{code}", deps.itemHandler.GetByBarcode)
	mux.HandleFunc("GET "+apiV1+"/items/{id}", deps.itemHandler.Get)
	mux.HandleFunc("PUT "+apiV1+"/items/{id}", deps.itemHandler.Update)
	mux.HandleFunc("DELETE "+apiV1+"/items/{id}", deps.itemHandler.Delete)
	mux.HandleFunc("GET "+apiV1+"/items/{id}/transactions", deps.itemHandler.Transactions)

	// Transaction endpoints
	mux.HandleFunc("GET "+apiV1+"/transactions", deps.transactionHandler.List)
	mux.HandleFunc("POST "+apiV1+"/transactions", deps.transactionHandler.Create)

	// Sync endpoints
	mux.HandleFunc("POST "+apiV1+"/sync", deps.syncHandler.Trigger)
	mux.HandleFunc("GET "+apiV1+"/sync/status", deps.syncHandler.Status)

	// Organization endpoints
	mux.HandleFunc("GET "+apiV1+"/organizations", deps.organizationHandler.List)
	mux.HandleFunc("POST "+apiV1+"/organizations", deps.organizationHandler.Create)
	mux.HandleFunc("GET "+apiV1+"/organizations/{id}", deps.organizationHandler.Get)
	mux.HandleFunc("PUT "+apiV1+"/organizations/{id}", deps.organizationHandler.Update)
	mux.HandleFunc("DELETE "+apiV1+"/organizations/{id}", deps.organizationHandler.Delete)

	// Settings endpoints
	mux.HandleFunc("GET "+apiV1+"/settings", deps.settingsHandler.Get)
	mux.HandleFunc("PUT "+apiV1+"/settings", deps.settingsHandler.Update)
	mux.HandleFunc("POST "+apiV1+"/settings/reset", deps.settingsHandler.Reset)

	// Dashboard endpoints
	mux.HandleFunc("GET "+apiV1+"/dashboard", deps.dashboardHandler.Stats)
	mux.HandleFunc("GET "+apiV1+"/dashboard/low-stock", deps.dashboardHandler.LowStock)

	// Export endpoints
	mux.HandleFunc("GET "+apiV1+"/export/excel", deps.exportHandler.ExportExcel)
	mux.HandleFunc("GET "+apiV1+"/export/json", deps.exportHandler.ExportJSON)

	// Lookup endpoints
	mux.HandleFunc("GET "+apiV1+"/lookup/barcode/{code}", deps.lookupHandler.Barcode)
	mux.HandleFunc("POST "+apiV1+"/lookup/image", deps.lookupHandler.Image)
}
