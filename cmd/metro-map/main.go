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

	"github.com/karina-peters/metro-map/handlers"
	"github.com/karina-peters/metro-map/internal/config"
	"github.com/karina-peters/metro-map/internal/metro"
	"github.com/karina-peters/metro-map/internal/static"
	"github.com/karina-peters/metro-map/internal/wmata"
)

func main() {
	log.Println("Starting metro-map server...")

	// Base .env first, then .env.local for local overrides
	config.LoadEnvFiles(".env", ".env.local")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.WMATAAPIKey == "" {
		log.Println("Warning: WMATA_API_KEY is not set, upstream calls will be rejected")
	}
	log.Printf("Config loaded: host=%s poll_interval=%v static_source=%s positions=%s",
		cfg.WMATAHost, cfg.PollInterval, cfg.StaticSource, cfg.PositionsFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ═══════════════════════════════════════════════════════
	// Upstream feeds and static data
	// ═══════════════════════════════════════════════════════
	client := wmata.NewClient(wmata.Options{
		Host:      cfg.WMATAHost,
		APIKey:    cfg.WMATAAPIKey,
		Timeout:   cfg.WMATATimeout,
		RateLimit: cfg.WMATARateLimit,
		RateBurst: cfg.WMATARateBurst,
	})

	var positions metro.PositionFeed = client
	if cfg.PositionsFormat == config.FormatGTFSRT {
		positions = wmata.NewGTFSRTFeed(client, cfg.GTFSRTPositionsURL)
	}

	source, err := static.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open static data source: %v", err)
	}
	defer source.Close()

	system := metro.NewSystem(source, client, positions)
	if err := system.Populate(ctx); err != nil {
		// Failed components are retried by the poller
		log.Printf("Warning: static data incomplete: %v", err)
	}

	// ═══════════════════════════════════════════════════════
	// Live position polling
	// ═══════════════════════════════════════════════════════
	go metro.NewPoller(system, cfg.PollInterval).Run(ctx)

	// ═══════════════════════════════════════════════════════
	// HTTP API
	// ═══════════════════════════════════════════════════════
	router := handlers.NewRouter(
		handlers.NewMetroHandler(system),
		handlers.NewArrivalsHandler(metro.NewArrivalBoard(client, cfg.ArrivalsTTL), system),
		handlers.NewHealthHandler(system),
		handlers.RouterOptions{
			AllowedOrigins: cfg.AllowedOrigins,
			StaticDir:      cfg.StaticDir,
		},
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("API server starting on :%s", cfg.Port)
		log.Println("  GET /health")
		log.Println("  GET /api/stations, /api/stations/{code}")
		log.Println("  GET /api/lines, /api/lines/{lineId}/circuits/{circuitId}")
		log.Println("  GET /api/regions, /api/regions/{region}")
		log.Println("  GET /api/circuits?lineId=&regionId=")
		log.Println("  GET /api/occupancy?lineId=&circuitId=")
		log.Println("  GET /api/map?regionId=")
		log.Println("  GET /api/trains?view=all|active|scheduled, /api/trains/{trainId}/board")
		log.Println("  GET /api/arrivals/{stations}")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// ═══════════════════════════════════════════════════════
	// Graceful shutdown
	// ═══════════════════════════════════════════════════════
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Goodbye!")
}
