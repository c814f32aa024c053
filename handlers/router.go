package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	AllowedOrigins []string
	StaticDir      string // serve a built frontend from here when set
}

// NewRouter mounts every endpoint behind CORS and tracing middleware
func NewRouter(metroHandler *MetroHandler, arrivalsHandler *ArrivalsHandler, healthHandler *HealthHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.GetHealth)

	// Static data
	r.Get("/api/stations", metroHandler.GetStations)
	r.Get("/api/stations/{code}", metroHandler.GetStation)
	r.Get("/api/lines", metroHandler.GetLines)
	r.Get("/api/lines/{lineId}/circuits/{circuitId}", metroHandler.GetSequenceNumber)
	r.Get("/api/regions", metroHandler.GetRegions)
	r.Get("/api/regions/{region}", metroHandler.GetRegion)
	r.Get("/api/circuits", metroHandler.GetCircuits)

	// Live data
	r.Get("/api/occupancy", metroHandler.GetOccupancy)
	r.Get("/api/map", metroHandler.GetMap)
	r.Get("/api/trains", metroHandler.GetTrains)
	r.Get("/api/trains/{trainId}/board", metroHandler.GetTrainBoard)
	r.Get("/api/arrivals/{stations}", arrivalsHandler.GetArrivals)

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return otelhttp.NewHandler(r, "metro-map")
}
