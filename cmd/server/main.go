package main

import (
	"log"

	"github.com/fieldcast/tourplan-backend-go/internal/api"
	"github.com/fieldcast/tourplan-backend-go/internal/config"
	"github.com/fieldcast/tourplan-backend-go/internal/database"
	"github.com/fieldcast/tourplan-backend-go/internal/geo"
	"github.com/fieldcast/tourplan-backend-go/internal/handler"
	"github.com/fieldcast/tourplan-backend-go/internal/planner"
	"github.com/fieldcast/tourplan-backend-go/internal/repository"
	"github.com/fieldcast/tourplan-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	geocodeCache := repository.NewGeocodingCacheRepository(db)
	distanceCache := repository.NewDistanceCacheRepository(db)

	// Without an API key the resolver runs on the offline tiers only.
	var provider geo.Provider
	if cfg.MapsAPIKey != "" {
		google, err := geo.NewGoogleProvider(cfg.MapsAPIKey)
		if err != nil {
			log.Fatal("Failed to create maps provider:", err)
		}
		provider = google
	} else {
		log.Printf("MAPS_API_KEY not set, running with offline geocoding only")
	}

	geocoder := geo.NewGeocoder(provider, geocodeCache)
	oracle := geo.NewDistanceOracle(provider, distanceCache)

	preset := planner.PresetByName(cfg.Preset)

	handlers := api.Handlers{
		Auth:      handler.NewAuthHandler(cfg.APIKey, cfg.JWTSecret),
		Plan:      handler.NewPlanHandler(service.NewPlanService(geocoder, oracle, preset)),
		Geocoding: handler.NewGeocodingHandler(service.NewGeocodingService(geocoder, geocodeCache, distanceCache)),
	}

	router := api.SetupRouter(cfg, handlers)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
