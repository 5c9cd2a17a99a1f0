// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root — the one place where the whole
// dependency graph is wired:
//
//	sqlite.DB → AuthService / MovieService → handlers → routes
//
// Handlers never touch the database; services never touch HTTP. main.go
// stays minimal: read config, create the server, start it.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/video-vault/internal/auth"
	"github.com/sakif/video-vault/internal/handler"
	"github.com/sakif/video-vault/internal/middleware"
	sqliteRepo "github.com/sakif/video-vault/internal/repository/sqlite"
	"github.com/sakif/video-vault/internal/service"
)

// Config holds server configuration, populated from the environment in
// main. An explicit struct (not ambient globals) means the secret and
// connection string are injected where they're needed and nowhere else.
type Config struct {
	Port          int
	DBPath        string        // path to the SQLite database file
	JWTSecret     string        // HMAC secret for token signing
	TokenTTL      time.Duration // token lifetime (default 24h)
	BcryptCost    int           // 0 → bcrypt default cost 12
	AdminEmail    string        // bootstrap admin credentials; empty disables
	AdminPassword string        //   the bootstrap entirely
}

// Server owns the router and the resources that must be released on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and wires the full dependency chain:
//
//  1. open the database (runs migrations)
//  2. build token + password services from the config
//  3. build the auth and movie services on top of the repositories
//  4. bootstrap the first admin if none exists
//  5. mount middleware and routes
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services, and mounts the
// route table.
//
// ROUTE STRUCTURE:
//
//	POST   /api/register          → create account                (public)
//	POST   /api/login             → credentials → bearer token    (public)
//	GET    /api/health            → liveness probe                (public)
//	GET    /api/me                → caller's profile              (token)
//	GET    /api/movies            → full catalog, newest first    (token)
//	GET    /api/movies/popular    → top N by views                (token)
//	GET    /api/movies/search?q=  → substring search              (token)
//	GET    /api/movies/{id}       → one movie, view counted       (token)
//	POST   /api/movies            → add movie                     (token + admin)
//	PUT    /api/movies/{id}       → edit movie                    (token + admin)
//	DELETE /api/movies/{id}       → remove movie                  (token + admin)
//	PUT    /api/users/{id}/role   → promote/demote account        (token + admin)
func (s *Server) setupRoutes() error {
	// Global middleware — runs on every request, in order:
	// RequestID (tracing) → RealIP (proxy headers) → Recoverer (panic → 500)
	// → our slog request logger.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	// The same *DB implements both repository interfaces.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	movieService := service.NewMovieService(s.db, s.logger)

	// Bootstrap the first admin. Without this there is no way to mint one:
	// registration never grants the role, and promotion requires an admin.
	if s.config.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := authService.EnsureAdmin(ctx, "Administrator", s.config.AdminEmail, s.config.AdminPassword); err != nil {
			return fmt.Errorf("bootstrapping admin: %w", err)
		}
	}

	authHandler := handler.NewAuthHandler(authService, s.logger)
	movieHandler := handler.NewMovieHandler(movieService, s.logger)
	userHandler := handler.NewUserHandler(authService, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db)

	s.router.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/health", handler.HandleHealth)

		// Any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", authHandler.HandleMe)
			r.Get("/movies", movieHandler.HandleList)
			r.Get("/movies/popular", movieHandler.HandlePopular)
			r.Get("/movies/search", movieHandler.HandleSearch)
			r.Get("/movies/{id}", movieHandler.HandleGetByID)
		})

		// Admins only
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(auth.RequireAdmin)

			r.Post("/movies", movieHandler.HandleCreate)
			r.Put("/movies/{id}", movieHandler.HandleUpdate)
			r.Delete("/movies/{id}", movieHandler.HandleDelete)
			r.Put("/users/{id}/role", userHandler.HandleUpdateRole)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown:
//
//  1. stop accepting new connections on SIGINT/SIGTERM
//  2. wait up to 30s for in-flight requests to finish
//  3. close the database connection (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
