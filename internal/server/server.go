// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This package is the composition root — every dependency is wired here:
//
//	config → sqlite.DB → api.Client → TicketService
//	       → handlers → routes (wrapped in their access gates)
//
// Handlers never open the database or build the API client themselves;
// they receive what they need and nothing more.
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

	"github.com/tubetip/tubetip/internal/access"
	"github.com/tubetip/tubetip/internal/api"
	"github.com/tubetip/tubetip/internal/auth"
	"github.com/tubetip/tubetip/internal/config"
	"github.com/tubetip/tubetip/internal/handler"
	"github.com/tubetip/tubetip/internal/middleware"
	sqliteRepo "github.com/tubetip/tubetip/internal/repository/sqlite"
)

// Server is the HTTP server and the dependencies it owns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB // closed on shutdown
}

// New creates a Server: opens the session store, builds the backend
// client, and wires every route behind its access gate.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
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

// setupRoutes configures all middleware and route handlers.
//
// ROUTE MAP:
//
//	GET  /                              → landing page
//	GET  /login, POST /login            → login        [unauthenticated only]
//	GET  /register, POST /register      → registration [unauthenticated only]
//	POST /logout                        → logout
//	GET/POST /profile/setup             → profile form [private, gone once profile exists]
//	GET/POST /profile/setup/pictures    → pictures     [private]
//	POST /profile/setup/pictures/skip   → skip pictures
//	GET  /profile/setup/confirmation    → interstitial [private]
//	GET/POST /bank/connect              → bank connect [private, gone once connected]
//	POST /bank/connect/later            → defer bank
//	GET  /bank/connect/success          → Stripe return [private]
//	GET  /checkout/success              → supporter thank-you
//	GET  /api/profiles/{username}/tips  → tips page (JSON)
//	GET  /{username}                    → public creator page
//	POST /{username}/tip                → start a tip checkout
//
// MIDDLEWARE ORDER: RequestID and RealIP first so the logger can use
// them, then the logger, then Recoverer, then session resolution — by
// the time any access gate or handler runs, identity is settled.
func (s *Server) setupRoutes() error {
	client, err := api.New(s.config.BackendURL, s.logger)
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	tickets, err := auth.NewTicketService(s.config.TicketSecret)
	if err != nil {
		return fmt.Errorf("creating ticket service: %w", err)
	}

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.Sessions(tickets, client, s.db, s.logger))

	pagesH := handler.NewPageHandler(renderer, s.logger)
	authH := handler.NewAuthHandler(renderer, tickets, s.logger)
	onboardingH := handler.NewOnboardingHandler(renderer, client, s.logger)
	profileH := handler.NewProfileHandler(renderer, client, s.logger)

	guard := func(groups ...access.Group) func(http.Handler) http.Handler {
		return access.Middleware(auth.SnapshotFromRequest, groups...)
	}

	s.router.Get("/", pagesH.ShowLanding)
	s.router.NotFound(pagesH.NotFound)

	// Login and register forward anyone who already has an account to
	// wherever their funnel stands.
	s.router.Group(func(r chi.Router) {
		r.Use(guard(access.UnauthenticatedOnly))
		r.Get(access.PathLogin, authH.ShowLogin)
		r.Post(access.PathLogin, authH.HandleLogin)
		r.Get(access.PathRegister, authH.ShowRegister)
		r.Post(access.PathRegister, authH.HandleRegister)
	})

	s.router.Post("/logout", authH.HandleLogout)

	// Profile setup is one-way: once the profile exists the form is gone.
	s.router.Group(func(r chi.Router) {
		r.Use(guard(access.PrivateAny, access.ProfileSetupGate))
		r.Get(access.PathProfileSetup, onboardingH.ShowSetup)
		r.Post(access.PathProfileSetup, onboardingH.HandleSetup)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(guard(access.PrivateAny))
		r.Get(access.PathSetupPictures, onboardingH.ShowPictures)
		r.Post(access.PathSetupPictures, onboardingH.HandlePictures)
		r.Post(access.PathSetupPictures+"/skip", onboardingH.HandlePicturesSkip)
		r.Get(access.PathSetupConfirmation, onboardingH.ShowConfirmation)
		r.Get(access.PathConnectSuccess, onboardingH.ShowConnectSuccess)
		r.Post(access.PathConnectBank+"/later", onboardingH.HandleConnectLater)
	})

	// Bank connect is likewise forbidden once the step is complete.
	s.router.Group(func(r chi.Router) {
		r.Use(guard(access.PrivateAny, access.ConnectBankGate))
		r.Get(access.PathConnectBank, onboardingH.ShowConnectBank)
		r.Post(access.PathConnectBank, onboardingH.HandleConnectBank)
	})

	s.router.Get("/checkout/success", profileH.ShowCheckoutSuccess)

	s.router.Get("/api/profiles/{username}/tips", profileH.HandleTipsPage)

	// The public creator page — last, so it cannot shadow real routes.
	s.router.Get("/{username}", profileH.ShowProfile)
	s.router.Post("/{username}/tip", profileH.HandleTip)

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, close the
// session database.
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
			slog.String("backend", s.config.BackendURL),
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
