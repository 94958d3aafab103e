package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stockbin/internal/api"
	"github.com/andresuchdata/stockbin/internal/auth"
	"github.com/andresuchdata/stockbin/internal/cache"
	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/andresuchdata/stockbin/internal/interpreter"
	"github.com/andresuchdata/stockbin/internal/report"
	"github.com/andresuchdata/stockbin/internal/repository"
	"github.com/andresuchdata/stockbin/internal/repository/memory"
	"github.com/andresuchdata/stockbin/internal/repository/postgres"
	"github.com/andresuchdata/stockbin/internal/service"
	"github.com/andresuchdata/stockbin/internal/storage"
	"github.com/andresuchdata/stockbin/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	store := openStore(cfg)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	// Caches
	pending := service.NewPendingStore(cache.NewConfirmationStore(cfg.Cache), cfg.App.ConfirmationTTL)
	memberships := cache.NewMembershipCache(cfg.Cache)

	// Command interpreter; the app keeps running without one
	model, err := interpreter.NewModel(ctx, cfg.AI)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Command interpreter unavailable")
	}
	if closer, ok := model.(io.Closer); ok {
		defer closer.Close()
	}
	interp := interpreter.New(model)

	// Initialize services
	notes := service.NewNoteDebouncer(store, cfg.App.NoteDebounce)
	ledger := service.NewBinLedger(store, pending, notes, cfg.App.HistoryLimit)
	stock := service.NewStockService(store, pending)
	services := &api.Services{
		Stock:         stock,
		Bins:          ledger,
		Commands:      service.NewCommandService(store, interp, stock, ledger),
		Confirmations: service.NewConfirmationService(pending, stock, ledger),
		Teams:         service.NewTeamService(store, ledger, cfg.App.DefaultBinTypeNames),
		Store:         store,
		Verifier:      auth.NewVerifier(cfg.Auth.JWTSecret),
		Resolver:      auth.NewMembershipResolver(store, memberships, cfg.Auth.SessionTimeout),
		Archiver:      openArchiver(ctx, cfg.Storage),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Notes typed within the debounce window are written before exit
	if err := ledger.FlushNotes(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to flush pending notes")
	}

	logger.Log.Info().Msg("Server exiting")
}

// openStore picks the store driver. Missing credentials do not stop the
// server: every data call then answers with ErrStoreUnavailable.
func openStore(cfg *config.Config) repository.Store {
	if cfg.Database.Driver == "memory" {
		logger.Log.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.NewStore()
	}
	if !cfg.Database.Configured() {
		return repository.NewUnavailableStore("database credentials are not configured")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to connect to database")
		return repository.NewUnavailableStore(err.Error())
	}
	return postgres.NewStore(db)
}

func openArchiver(ctx context.Context, cfg config.StorageConfig) *report.Archiver {
	if !cfg.Enabled {
		return nil
	}
	client, err := storage.NewMinioClient(ctx, cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report archive disabled")
		return nil
	}
	return report.NewArchiver(client, cfg.Prefix)
}
