package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twl-tooling/quotedesk/internal/archive"
	"github.com/twl-tooling/quotedesk/internal/auth"
	"github.com/twl-tooling/quotedesk/internal/config"
	"github.com/twl-tooling/quotedesk/internal/middleware"
	"github.com/twl-tooling/quotedesk/internal/polish"
	"github.com/twl-tooling/quotedesk/internal/quote/router"
	"github.com/twl-tooling/quotedesk/internal/quote/service"
	"github.com/twl-tooling/quotedesk/internal/quote/store"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.ValidateAdmin(); err != nil {
		log.Fatalf("invalid admin configuration: %v", err)
	}
	slog.SetLogLoggerLevel(cfg.LogLevel)

	slog.Info("configuration loaded successfully",
		"slot_backend", cfg.Slot.Backend,
		"slot_key", cfg.Slot.Key,
		"storage_type", cfg.Storage.Type,
		"polish_enabled", cfg.Polish.APIKey != "",
	)

	slog.Info("CORS configuration",
		"allowed_origins", cfg.CORS.AllowedOrigins,
		"allowed_methods", cfg.CORS.AllowedMethods,
		"allowed_headers", cfg.CORS.AllowedHeaders,
		"allow_credentials", cfg.CORS.AllowCredentials,
		"max_age", cfg.CORS.MaxAge,
	)

	ctx := context.Background()

	// Open the record slot
	slot, closeSlot, err := store.OpenSlot(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open record slot: %v", err)
	}
	defer func() {
		if err := closeSlot(); err != nil {
			slog.Error("failed to close record slot", "error", err)
		}
	}()
	records := store.NewSlotStore(slot)

	// Export archive storage
	driver, err := archive.OpenDriver(ctx, cfg.Storage.Type, cfg.Storage, archive.PurposeExports)
	if err != nil {
		log.Fatalf("failed to initialize archive storage: %v", err)
	}
	archives := archive.NewArchiveService(driver)

	authn, err := auth.NewPasswordAuthenticator(cfg.Admin.PasswordHash, cfg.Admin.Password)
	if err != nil {
		log.Fatalf("failed to initialize admin authenticator: %v", err)
	}
	tokens := auth.NewTokenIssuer(cfg.Admin.TokenSecret, cfg.Admin.TokenTTL)

	qr := router.NewQuoteRouter(
		service.NewSubmissionService(records),
		service.NewReviewService(records, archives),
		polish.NewFromConfig(ctx, cfg.Polish),
		authn,
		tokens,
		archive.NewHTTPHandler(archives),
	)

	// Set up HTTP routes
	mux := http.NewServeMux()
	qr.Register(mux)

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Wrap handler with CORS middleware
	handler := middleware.CORS(&cfg.CORS)(mux)

	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
