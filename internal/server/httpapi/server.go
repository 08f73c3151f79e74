// Package httpapi exposes the view services over HTTP using chi.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/viewstore/internal/logging"
	"github.com/dmitrijs2005/viewstore/internal/server/models"
	"github.com/dmitrijs2005/viewstore/internal/server/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ViewService is the view CRUD surface the handlers call.
type ViewService interface {
	CreateView(ctx context.Context, p models.CreateViewParams) (*models.View, error)
	ReadView(ctx context.Context, p models.QueryViewParams) (*models.View, error)
	UpdateView(ctx context.Context, p models.UpdateViewParams) error
	DeleteView(ctx context.Context, viewID string) error
	ReadViewsBelongTo(ctx context.Context, parentID string) ([]*models.View, error)
}

// ThumbnailService issues presigned thumbnail URLs.
type ThumbnailService interface {
	ThumbnailURL(ctx context.Context, viewID string) (string, error)
	ThumbnailUploadURL(ctx context.Context, viewID string) (*services.ThumbnailUpload, error)
}

type HTTPServer struct {
	address        string
	views          ViewService
	thumbnails     ThumbnailService
	logger         logging.Logger
	jwtSecret      []byte
	requestTimeout time.Duration
	allowedOrigins []string
	router         chi.Router
}

type Option func(*HTTPServer)

// WithAllowedOrigins enables CORS for the given browser origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *HTTPServer) { s.allowedOrigins = origins }
}

func NewHTTPServer(address string, l logging.Logger, vs ViewService, ts ThumbnailService, secretKey string, requestTimeout time.Duration, opts ...Option) *HTTPServer {
	s := &HTTPServer{
		address:        address,
		views:          vs,
		thumbnails:     ts,
		logger:         l.With("module", "http_server"),
		jwtSecret:      []byte(secretKey),
		requestTimeout: requestTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, http.StatusNotFound, envelope{Code: codeNotFound, Msg: "no such route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, http.StatusMethodNotAllowed, envelope{Code: codeMethodNotAllowed, Msg: "method not allowed"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", s.ping)

		r.Group(func(r chi.Router) {
			r.Use(s.accessToken)
			r.Use(s.timeout)

			r.Post("/views", s.createView)
			r.Get("/views/{id}", s.readView)
			r.Patch("/views/{id}", s.updateView)
			r.Delete("/views/{id}", s.deleteView)
			r.Get("/views/{id}/thumbnail", s.thumbnailURL)
			r.Post("/views/{id}/thumbnail", s.thumbnailUploadURL)
			r.Get("/apps/{id}/views", s.readViewsBelongTo)
		})
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		errCh <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errCh
}
