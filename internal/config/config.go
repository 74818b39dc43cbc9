package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string

	SimulatorEnabled  bool
	SimulatorInterval time.Duration

	FillThreshold  float64
	FairnessWindow time.Duration

	CORSAllowedOrigins []string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                      getEnv("PORT", "8080"),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		RedisURL:                  os.Getenv("REDIS_URL"),
		FirebaseCredentialsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredentialsFile:   os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		CORSAllowedOrigins:        splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.SimulatorEnabled, err = strconv.ParseBool(getEnv("SIMULATOR_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("config: SIMULATOR_ENABLED: %w", err)
	}
	if cfg.SimulatorInterval, err = time.ParseDuration(getEnv("SIMULATOR_INTERVAL", "5s")); err != nil {
		return nil, fmt.Errorf("config: SIMULATOR_INTERVAL: %w", err)
	}
	if cfg.SimulatorInterval <= 0 {
		return nil, fmt.Errorf("config: SIMULATOR_INTERVAL must be positive, got %s", cfg.SimulatorInterval)
	}
	if cfg.FillThreshold, err = strconv.ParseFloat(getEnv("FILL_THRESHOLD", "70"), 64); err != nil {
		return nil, fmt.Errorf("config: FILL_THRESHOLD: %w", err)
	}
	if cfg.FairnessWindow, err = time.ParseDuration(getEnv("FAIRNESS_WINDOW", "6h")); err != nil {
		return nil, fmt.Errorf("config: FAIRNESS_WINDOW: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
