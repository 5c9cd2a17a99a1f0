// Package main is the entry point for the video-vault server.
//
// main's job is deliberately small: load configuration, create the logger,
// hand both to the server package, and start. All actual logic lives in
// internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/video-vault/internal/server"
)

func main() {
	// Load .env if present. Real deployments set env vars directly, so a
	// missing file is not an error — this only helps local development.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads the server configuration from environment variables.
//
//	PORT             HTTP port                        (default 8080)
//	DB_PATH          SQLite file path                 (default data/videovault.db)
//	JWT_SECRET       token signing secret             (required, ≥16 chars)
//	TOKEN_TTL_HOURS  token lifetime in hours          (default 24)
//	BCRYPT_COST      password hashing work factor     (default 12)
//	ADMIN_EMAIL      bootstrap admin email            (optional)
//	ADMIN_PASSWORD   bootstrap admin password         (optional)
//
// JWT_SECRET has no default on purpose — a guessable fallback secret would
// let anyone forge tokens. Generate one with: openssl rand -hex 32
func loadConfig(logger *slog.Logger) (server.Config, error) {
	cfg := server.Config{
		Port:          8080,
		DBPath:        "data/videovault.db",
		TokenTTL:      24 * time.Hour,
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return cfg, errEnv("PORT", portStr)
		}
		cfg.Port = port
	}

	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		cfg.DBPath = envDB
	}

	// Ensure the database directory exists (like `mkdir -p`).
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return cfg, err
		}
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return cfg, errMissing("JWT_SECRET")
	}

	if ttlStr := os.Getenv("TOKEN_TTL_HOURS"); ttlStr != "" {
		hours, err := strconv.Atoi(ttlStr)
		if err != nil || hours <= 0 {
			return cfg, errEnv("TOKEN_TTL_HOURS", ttlStr)
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
	}

	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		cost, err := strconv.Atoi(costStr)
		if err != nil {
			return cfg, errEnv("BCRYPT_COST", costStr)
		}
		cfg.BcryptCost = cost
	}

	if cfg.AdminEmail == "" {
		logger.Warn("ADMIN_EMAIL not set — no bootstrap admin will be created")
	}

	return cfg, nil
}

type configError struct {
	msg string
}

func (e *configError) Error() string { return e.msg }

func errEnv(key, value string) error {
	return &configError{msg: "invalid value for " + key + ": " + value}
}

func errMissing(key string) error {
	return &configError{msg: "missing required env var: " + key}
}
