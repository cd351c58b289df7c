package web

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"albumshop/internal/shopapi"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr        string
	API         *shopapi.Client
	Sessions    Manager
	TemplatesFS fs.FS
	StaticFS    fs.FS
	Log         *zap.SugaredLogger
}

// Server is the HTTP server for the storefront.
type Server struct {
	router    chi.Router
	server    *http.Server
	templates *Templates
	sessions  Manager
	api       *shopapi.Client
	log       *zap.SugaredLogger
}

// NewServer creates a new storefront server.
func NewServer(cfg ServerConfig) (*Server, error) {
	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		templates: templates,
		sessions:  cfg.Sessions,
		api:       cfg.API,
		log:       cfg.Log,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.StaticFS)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// requestLogger logs one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes(staticFS fs.FS) {
	fileServer := http.FileServer(http.FS(staticFS))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Public pages
	s.router.Get("/", s.Home)
	s.router.Get("/albums/{id}", s.AlbumDetail)

	// Auth
	s.router.Get("/login", s.LoginForm)
	s.router.Post("/login", s.Login)
	s.router.Get("/register", s.RegisterForm)
	s.router.Post("/register", s.Register)
	s.router.Post("/logout", s.Logout)

	// Authenticated actions
	s.router.Post("/albums/{id}/order", s.PlaceOrder)
	s.router.Post("/albums/{id}/reviews", s.CreateReview)
	s.router.Post("/reviews/{id}/update", s.UpdateReview)
	s.router.Post("/reviews/{id}/delete", s.DeleteReview)
	s.router.Get("/orders/my", s.MyOrders)
	s.router.Post("/orders/{id}/delete", s.DeleteOrder)

	// Admin
	s.router.Get("/admin", s.Dashboard)
	s.router.Get("/orders/all", s.AllOrders)
	s.router.Get("/admin/albums/new", s.NewAlbumForm)
	s.router.Post("/admin/albums/new", s.CreateAlbum)
	s.router.Get("/admin/albums/{id}/edit", s.EditAlbumForm)
	s.router.Post("/admin/albums/{id}/edit", s.UpdateAlbum)
	s.router.Post("/admin/albums/{id}/delete", s.DeleteAlbum)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Infow("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt
// signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.log.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Info("server stopped")
	return nil
}
