package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/stayops/stayops-backend/internal/ops/events"
	"github.com/stayops/stayops-backend/internal/ops/handler"
	"github.com/stayops/stayops-backend/internal/ops/repository"
	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/internal/ops/storage"
	"github.com/stayops/stayops-backend/pkg/config"
	"github.com/stayops/stayops-backend/pkg/database"
	"github.com/stayops/stayops-backend/pkg/httputil"
	"github.com/stayops/stayops-backend/pkg/logger"
	"github.com/stayops/stayops-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("ops-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("ops-service", cfg.Server.Environment)
	log.Info().Msg("starting Ops Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to RabbitMQ when enabled. Without it the publisher stays
	// nil and every publish is a no-op.
	var rmq *messaging.RabbitMQ
	var publisher *events.OpsEventPublisher
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewOpsEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Info().Msg("event publishing disabled")
	}

	// Blob storage for inventory exports. Without a bucket the export
	// endpoint answers with a configuration error.
	var store storage.ObjectStore
	if cfg.Storage.Bucket != "" {
		gcs, err := storage.NewGCSStore(ctx, &cfg.Storage, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize export storage")
		}
		defer gcs.Close()
		store = gcs
	} else {
		log.Info().Msg("export storage not configured")
	}

	// Initialize repositories
	itemRepo := repository.NewItemRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	idRepo := repository.NewIDRepository(db)

	// Initialize services
	inventoryService := service.NewInventoryService(itemRepo, alertRepo, idRepo, publisher, log)
	alertService := service.NewAlertService(alertRepo, idRepo, publisher, log)
	purchaseService := service.NewPurchaseService(purchaseRepo, itemRepo, idRepo, publisher, log)
	exportService := service.NewExportService(itemRepo, store, publisher, log)
	dashboardService := service.NewDashboardService(itemRepo, alertRepo, purchaseRepo, log)

	// Background snooze release
	if cfg.Sweep.Enabled {
		sweeper := service.NewSnoozeSweeper(alertService, cfg.Sweep.Interval, cfg.Sweep.PageSize, log)
		sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	// Initialize handlers
	inventoryHandler := handler.NewInventoryHandler(inventoryService, log)
	alertHandler := handler.NewAlertHandler(alertService, log)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService, log)
	exportHandler := handler.NewExportHandler(exportService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	rpcHandler := handler.NewRPCHandler(inventoryService, alertService, purchaseService, log)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS - the dashboard runs on internal hosts, so origins are open
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "ops-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", inventoryHandler.List)
			r.Post("/", inventoryHandler.Upsert)
			r.Put("/", inventoryHandler.Upsert)
			r.Get("/rebuy", inventoryHandler.Rebuy)
			r.Get("/export", exportHandler.Export)
			r.Delete("/{id}", inventoryHandler.Delete)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", alertHandler.List)
			r.Post("/", alertHandler.Upsert)
			r.Put("/", alertHandler.Upsert)
			r.Put("/{id}/status", alertHandler.UpdateStatus)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", purchaseHandler.List)
			r.Post("/", purchaseHandler.Upsert)
			r.Put("/", purchaseHandler.Upsert)
		})

		r.Post("/rpc", rpcHandler.Invoke)

		r.Get("/dashboard/stats", dashboardHandler.Stats)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop the sweeper
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
