package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/httpapi"
	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/app"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/trace"
)

func main() {
	os.Exit(run())
}

// run wires the application and blocks until shutdown. Deferred cleanup runs
// before the exit code is returned to main.
func run() int {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
		return 1
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Printf("FATAL: Failed to initialize logger: %v", err)
		return 1
	}
	defer appLogger.Sync()
	appLogger.Info(context.Background(), "Logger initialized", ports.Fields{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Initialize Tracing
	if err := trace.Init("trade-journal", cfg.TracingEnabled); err != nil {
		appLogger.Error(context.Background(), err, "Tracing disabled: failed to initialize exporter")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := trace.Shutdown(ctx); err != nil {
			appLogger.Error(ctx, err, "Error flushing traces")
		}
	}()

	// 4. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		return 1
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 5. Initialize Application Service
	journal, err := app.NewJournalService(cfg, appLogger, repo)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize journal service")
		return 1
	}

	// 6. Root context cancelled on SIGINT/SIGTERM
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Background recalculation
	recalc, err := app.NewRecalculator(rootCtx, journal, appLogger, cfg.RecalcCron)
	if err != nil {
		appLogger.Error(rootCtx, err, "FATAL: Failed to schedule recalculation")
		return 1
	}
	if cfg.RunRecalcOnStart {
		recalc.RunNow()
	}
	recalc.Start()
	defer recalc.Stop()

	// 8. HTTP API
	gin.SetMode(cfg.GinMode)
	server := &http.Server{
		Addr:     cfg.HTTPAddr,
		Handler:  httpapi.NewRouter(httpapi.NewHandler(journal, appLogger), cfg.APIToken),
		ErrorLog: zap.NewStdLog(appLogger.Zap()),
	}
	if cfg.APIToken == "" {
		appLogger.Warn(rootCtx, "API_TOKEN is empty: bearer authentication is disabled")
	}

	g, ctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		appLogger.Info(ctx, "HTTP server starting", ports.Fields{"addr": cfg.HTTPAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 9. Graceful Shutdown
	g.Go(func() error {
		<-ctx.Done()
		appLogger.Info(context.Background(), "Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error(context.Background(), err, "Server exited with error")
		return 1
	}
	appLogger.Info(context.Background(), "Application finished gracefully.")
	return 0
}
