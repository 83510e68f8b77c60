// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package api wires the HTTP router, the middleware chain and every domain
handler into a runnable [http.Server].

Route layout:

	/health, /ready         probes
	/metrics                Prometheus scrape endpoint
	/avatars/*              uploaded avatar files
	/api/v1/...             domain routes
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/catalog/chapter"
	"github.com/genra-app/genra/internal/catalog/genre"
	"github.com/genra-app/genra/internal/library"
	"github.com/genra-app/genra/internal/platform/config"
	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/metrics"
	"github.com/genra-app/genra/internal/platform/middleware"
	"github.com/genra-app/genra/internal/platform/storage"
	"github.com/genra-app/genra/internal/social/comment"
	"github.com/genra-app/genra/internal/social/rating"
	"github.com/genra-app/genra/internal/users/account"
	"github.com/genra-app/genra/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups every domain handler set mounted by [NewServer].
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc

	// Avatars serves uploaded avatar files. Optional.
	Avatars http.Handler

	Auth    *auth.Handler
	Account *account.Handler
	Genre   *genre.Handler
	Book    *book.Handler
	Chapter *chapter.Handler
	Library *library.Handler
	Rating  *rating.Handler
	Comment *comment.Handler
}

// RouteRegistrar is implemented by handlers that mount themselves on the /api/v1 router.
type RouteRegistrar interface {
	RegisterRoutes(api chi.Router)
}

func (handlers Handlers) registrars() []RouteRegistrar {
	registrars := make([]RouteRegistrar, 0, 7)
	add := func(registrar RouteRegistrar, present bool) {
		if present {
			registrars = append(registrars, registrar)
		}
	}

	add(handlers.Account, handlers.Account != nil)
	add(handlers.Genre, handlers.Genre != nil)
	add(handlers.Book, handlers.Book != nil)
	add(handlers.Chapter, handlers.Chapter != nil)
	add(handlers.Library, handlers.Library != nil)
	add(handlers.Rating, handlers.Rating != nil)
	add(handlers.Comment, handlers.Comment != nil)
	return registrars
}

// Dependencies are the cross-cutting collaborators of the middleware chain.
type Dependencies struct {
	Verifier middleware.TokenVerifier
	Bans     middleware.BanChecker
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, deps Dependencies, handlers Handlers) *Server {
	router := NewRouter(context, cfg, log, deps, handlers)

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter builds the routing tree without binding a listener.
func NewRouter(context context.Context, cfg *config.Config, log *slog.Logger, deps Dependencies, handlers Handlers) *chi.Mux {
	router := chi.NewRouter()

	// # Middleware Chain
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(log))
	router.Use(middleware.PanicRecovery(log))
	router.Use(middleware.CORS(cfg))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(context))
	router.Use(middleware.Metrics())
	router.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	router.Get("/health", handlers.Liveness)
	router.Get("/ready", handlers.Readiness)
	router.Handle("/metrics", metrics.Handler())
	if handlers.Avatars != nil {
		router.Handle(storage.PublicPrefix+"*", handlers.Avatars)
	}

	// # Application API
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Authenticate(deps.Verifier))
		if deps.Bans != nil {
			api.Use(middleware.RequireActive(deps.Bans))
		}

		if handlers.Auth != nil {
			api.Mount("/auth", handlers.Auth.Routes())
		}
		for _, registrar := range handlers.registrars() {
			registrar.RegisterRoutes(api)
		}
	})

	return router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (server *Server) ListenAndServe() error {
	server.log.Info("server_starting", slog.String("addr", server.httpServer.Addr))
	return server.httpServer.ListenAndServe()
}

// Handler exposes the routing tree, mainly for httptest.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (server *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.httpServer.Shutdown(context)
}
