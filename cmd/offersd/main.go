package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"restaurant-offers/internal/cache"
	"restaurant-offers/internal/config"
	"restaurant-offers/internal/database"
	"restaurant-offers/internal/events"
	"restaurant-offers/internal/features"
	"restaurant-offers/internal/handler"
	"restaurant-offers/internal/metrics"
	"restaurant-offers/internal/middleware"
	"restaurant-offers/internal/service"
	"restaurant-offers/internal/sheet"
	"restaurant-offers/internal/tracing"
)

func main() {
	configFile := flag.String("config", "", "Path to JSON config file")
	flag.Parse()

	// Optional; env vars may come from the actual environment instead.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Feature flags gate the optional subsystems.
	flags := features.NewManager()
	flags.Register(features.FeatureCacheEnabled, true, "Serve active offers and offer types from the read cache")
	flags.Register(features.FeatureEventHooksEnabled, true, "Publish submission/approval/reconcile events")
	flags.Register(features.FeatureSyncEndpoint, true, "Expose the on-demand reconciliation endpoint")
	defer flags.Shutdown()

	db, err := database.Open(cfg.Database.URL, cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	sheetStore, err := sheet.OpenCSV(cfg.Sheet.Path)
	if err != nil {
		log.Fatalf("Failed to open pending sheet: %v", err)
	}

	var c cache.Cache
	if flags.IsEnabled(features.FeatureCacheEnabled) && cfg.Cache.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Printf("Redis unavailable, falling back to in-memory cache: %v", err)
			c = cache.NewInMemoryCache()
		} else {
			defer redisCache.Close()
			c = redisCache
			log.Printf("Cache: redis at %s", cfg.Cache.RedisAddr)
		}
	} else {
		c = cache.NewInMemoryCache()
	}

	if _, err := tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracing: %v", err)
		}
	}()

	registry := metrics.NewRegistry()

	eventManager := events.NewManager(flags.IsEnabled(features.FeatureEventHooksEnabled))
	defer eventManager.Shutdown()
	eventManager.Subscribe(events.EventOfferSubmitted, func(ctx context.Context, e events.Event) error {
		if data, ok := e.Data.(events.OfferSubmittedData); ok {
			log.Printf("event: offer submitted: %q (%s) for restaurant %s", data.Title, data.OfferType, data.RestaurantID)
		}
		return nil
	})
	eventManager.Subscribe(events.EventOfferApproved, func(ctx context.Context, e events.Event) error {
		if data, ok := e.Data.(events.OfferApprovedData); ok {
			log.Printf("event: offer approved: %q -> %s", data.Title, data.OfferID)
		}
		return nil
	})
	eventManager.Subscribe(events.EventReconcileCompleted, func(ctx context.Context, e events.Event) error {
		if data, ok := e.Data.(events.ReconcileCompletedData); ok {
			log.Printf("event: reconcile completed for restaurant %s, removed %d rows", data.RestaurantID, data.Deleted)
		}
		return nil
	})

	svc := service.NewService(db, sheetStore, c, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	svc.Events = eventManager
	svc.Metrics = registry

	h := handler.NewHandler(svc)

	r := chi.NewRouter()

	// Middleware (order matters)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.TracingMiddleware())

	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, time.Duration(cfg.RateLimit.Window)*time.Second)
		defer rateLimiter.Stop()
		r.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	r.Route("/restaurants/{restaurant_id}/offers", func(r chi.Router) {
		r.Post("/", h.SubmitOffer)
		r.Get("/", h.GetActiveOffers)
		r.Get("/pending", h.GetPendingOffers)
		if flags.IsEnabled(features.FeatureSyncEndpoint) {
			r.Post("/sync", h.SyncOffers)
		}
	})

	r.Get("/offer-types", h.GetOfferTypes)

	r.Handle("/metrics", registry.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Starting server on %s", addr)
	if cfg.Database.URL != "" {
		log.Printf("Database: postgres")
	} else {
		log.Printf("Database: sqlite at %s", cfg.Database.Path)
	}
	log.Printf("Pending sheet: %s", cfg.Sheet.Path)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
