package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taxpadi/api/internal/config"
	"github.com/taxpadi/api/internal/database"
	apihandlers "github.com/taxpadi/api/internal/handlers/api"
	"github.com/taxpadi/api/internal/middleware"
	"github.com/taxpadi/api/internal/services/classification"
	"github.com/taxpadi/api/internal/services/invoice"
	"github.com/taxpadi/api/internal/services/organization"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// A local .env is optional; real deployments set the environment.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg := config.LoadDev()

	// Connect to database
	pool, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	slog.Info("database connected")

	// Run migrations
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("migrations complete")

	// Initialize services
	orgSvc := organization.NewService(pool, logger)
	classificationSvc := classification.NewService(pool, logger)
	invoiceSvc := invoice.NewService(pool, logger)

	// Initialize handlers
	orgHandler := apihandlers.NewOrganizationHandler(orgSvc, logger)
	classificationHandler := apihandlers.NewClassificationHandler(classificationSvc, orgSvc, logger)
	invoiceHandler := apihandlers.NewInvoiceHandler(invoiceSvc, orgSvc, logger)
	positionHandler := apihandlers.NewPositionHandler(invoiceSvc, orgSvc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	orgHandler.RegisterRoutes(mux)
	classificationHandler.RegisterRoutes(mux)
	invoiceHandler.RegisterRoutes(mux)
	positionHandler.RegisterRoutes(mux)

	// Apply middleware stack (CORS, rate limiting, recovery, logging)
	var chain http.Handler = mux
	chain = middleware.CORS(cfg.CORSOrigin)(chain)
	chain = middleware.RateLimiter(float64(cfg.RateLimitPerSecond), cfg.RateLimitBurst)(chain)
	chain = middleware.SecurityHeaders(chain)
	chain = middleware.Recover(logger)(chain)
	chain = middleware.RequestLogger(logger)(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      chain,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		slog.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
