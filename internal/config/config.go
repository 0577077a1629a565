package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Port       string
	DBPath     string
	JWTSecret  string
	APIKey     string // shared secret exchanged for a JWT
	MapsAPIKey string // empty disables the external provider
	Preset     string // planning preset name
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/tourplan.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	return &Config{
		Port:       port,
		DBPath:     dbPath,
		JWTSecret:  jwtSecret,
		APIKey:     os.Getenv("API_KEY"),
		MapsAPIKey: os.Getenv("MAPS_API_KEY"),
		Preset:     os.Getenv("PLANNING_PRESET"),
	}
}
