package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"binroute-backend/internal/config"
	"binroute-backend/internal/database"
	"binroute-backend/internal/events"
	"binroute-backend/internal/handlers"
	"binroute-backend/internal/metrics"
	"binroute-backend/internal/middleware"
	"binroute-backend/internal/services"
	"binroute-backend/internal/simulator"
	"binroute-backend/internal/websocket"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 BINROUTE BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ FATAL ERROR: invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, otherwise in memory
	var store database.Store
	if cfg.DatabaseURL != "" {
		log.Println("🔌 Connecting to database...")
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Database connection failed")
			log.Printf("   Error: %v", err)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Fatal(err)
		}
		defer db.Close()

		log.Println("🔄 Running database migrations...")
		if err := database.Migrate(db); err != nil {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Database migrations failed")
			log.Printf("   Error: %v", err)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Fatal(err)
		}
		log.Println("✅ Database migrations completed")
		store = database.NewPostgresStore(db)
	} else {
		log.Println("⚠️  DATABASE_URL not set, using in-memory store (data is lost on restart)")
		store = database.NewMemoryStore()
	}

	if err := database.SeedTrucks(ctx, store); err != nil {
		log.Fatalf("❌ FATAL ERROR: Truck seeding failed: %v", err)
	}

	metrics.RegisterDefault()

	// WebSocket hub always receives events locally
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	log.Println("✅ WebSocket hub started")

	// With Redis, events go through the shared channel and the relay feeds
	// the local hub, so every instance's dashboards see the same stream
	var publisher events.Publisher = wsHub
	var rdb *redis.Client
	relayDone := make(chan struct{})
	if cfg.RedisURL != "" {
		rdb, err = events.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable: %v (events stay local)", err)
			close(relayDone)
		} else {
			publisher = events.NewRedisPublisher(rdb, events.DefaultChannel)
			relay := events.NewRelay(rdb, events.DefaultChannel, wsHub)
			go func() {
				defer close(relayDone)
				if err := relay.Run(ctx); err != nil {
					log.Printf("❌ Redis relay stopped: %v", err)
				}
			}()
			log.Println("✅ Redis event fan-out enabled")
		}
	} else {
		close(relayDone)
	}

	// Push notifications are optional
	var notifier services.Notifier = services.NopNotifier{}
	if cfg.FirebaseCredentialsBase64 != "" {
		fcmService, err := services.NewFCMServiceFromBase64(ctx, cfg.FirebaseCredentialsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
		} else {
			notifier = fcmService
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else if cfg.FirebaseCredentialsFile != "" {
		fcmService, err := services.NewFCMService(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
		} else {
			notifier = fcmService
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	engine := services.NewRouteEngine(store, services.EngineConfig{
		FillThreshold:  cfg.FillThreshold,
		FairnessWindow: cfg.FairnessWindow,
	}, publisher, notifier)
	ingest := services.NewIngestionService(store, publisher)

	var sim *simulator.Simulator
	if cfg.SimulatorEnabled {
		simCfg := simulator.DefaultConfig()
		simCfg.Interval = cfg.SimulatorInterval
		sim = simulator.New(simCfg, ingest, time.Now().UnixNano())
		sim.Start(ctx)
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health(wsHub))
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	r.Post("/sensor-data", handlers.PostSensorData(ingest))
	r.Get("/bins", handlers.GetBins(store))
	r.Get("/optimize-route", handlers.GetOptimizedRoute(engine))
	r.Get("/impact", handlers.GetImpact(engine))
	r.Get("/truck-location/{id}", handlers.GetTruckLocation(engine))
	r.Get("/trucks", handlers.GetTrucks(store))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Server failed to start")
			log.Printf("   Error: %v", err)
			log.Printf("   Port: %s", cfg.Port)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down...")
	stop()

	if sim != nil {
		sim.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server shutdown: %v", err)
	}

	<-relayDone
	if rdb != nil {
		rdb.Close()
	}
	log.Println("👋 Server stopped")
}
