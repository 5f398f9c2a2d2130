package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Completion-status policy for job groups with rows on only one side:
	// "counts" treats the empty side as done,
	// "not_applicable" caps such groups at Partially Completed.
	JobStatusEmptySide string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		logrus.Info("Loaded environment from .env")
	}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:        getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=cardops port=5432 sslmode=disable"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		CORSOrigins:        getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		JobStatusEmptySide: getEnv("JOB_STATUS_EMPTY_SIDE", "counts"),
	}

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is not set; it is required")
	}
	if len(cfg.JWTSecret) < 32 {
		logrus.Fatal("JWT_SECRET must be at least 32 characters")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=cardops port=5432 sslmode=disable" {
		logrus.Warn("DATABASE_DSN is using the default value; set your own Postgres connection for production")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		logrus.Warn("CORS_ALLOWED_ORIGINS is using the default value; set your own origin for production")
	}
	if cfg.JobStatusEmptySide != "counts" && cfg.JobStatusEmptySide != "not_applicable" {
		logrus.Fatalf("JOB_STATUS_EMPTY_SIDE must be 'counts' or 'not_applicable', got %q", cfg.JobStatusEmptySide)
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
