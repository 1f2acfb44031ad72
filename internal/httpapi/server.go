// Package httpapi implements the read/write HTTP/JSON API of spec.md
// §6: research queries, backfill/optimization triggers, and strategy
// monitoring reads. Grounded on the teacher's
// internal/interfaces/http/server.go router/middleware layout, with
// rs/cors replacing the teacher's hand-rolled localhost-only CORS
// check and rs/zerolog replacing its log.Printf request logging.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/marketintel/internal/httpapi/handlers"
)

// Server is the research & monitoring HTTP server.
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *handlers.Handlers
	config   ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default server configuration, honoring
// HTTP_PORT if set.
func DefaultServerConfig() ServerConfig {
	port := 8090
	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new HTTP server instance bound to h.
func NewServer(config ServerConfig, h *handlers.Handlers) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", config.Port, err)
	}
	listener.Close()

	s := &Server{
		router:   mux.NewRouter(),
		handlers: h,
		config:   config,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.timeoutMiddleware)
	s.router.Use(cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return true // local research console only; tightened at the reverse proxy in prod
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	api := s.router.PathPrefix("/api/analysis").Subrouter()
	api.Use(s.jsonContentTypeMiddleware)

	api.HandleFunc("/backfill", s.handlers.Backfill).Methods("POST")
	api.HandleFunc("/backfill/status", s.handlers.BackfillStatus).Methods("GET")
	api.HandleFunc("/summary", s.handlers.Summary).Methods("GET")
	api.HandleFunc("/signals", s.handlers.Signals).Methods("GET")
	api.HandleFunc("/rolling", s.handlers.Rolling).Methods("GET")
	api.HandleFunc("/events", s.handlers.EventsPage).Methods("GET")
	api.HandleFunc("/breakdown/{factor}", s.handlers.Breakdown).Methods("GET")
	api.HandleFunc("/model", s.handlers.Model).Methods("GET")
	api.HandleFunc("/compare", s.handlers.Compare).Methods("GET")
	api.HandleFunc("/optimize", s.handlers.Optimize).Methods("POST")
	api.HandleFunc("/optimize/status", s.handlers.OptimizeStatus).Methods("GET")
	api.HandleFunc("/pareto", s.handlers.Pareto).Methods("GET")
	api.HandleFunc("/sensitivity", s.handlers.Sensitivity).Methods("POST")
	api.HandleFunc("/strategies", s.handlers.Strategies).Methods("GET")
	api.HandleFunc("/alerts", s.handlers.Alerts).Methods("GET")

	s.router.HandleFunc("/health", s.handlers.Health).Methods("GET")
	s.router.Handle("/metrics", metricsHandler()).Methods("GET")
	s.router.NotFoundHandler = http.HandlerFunc(s.handlers.NotFound)
}

type requestIDKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID, _ := r.Context().Value(requestIDKey{}).(string)

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		recordMetrics(r.URL.Path, wrapper.statusCode, duration.Seconds())

		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("http request")
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("addr", s.GetAddress()).Msg("starting research HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down research HTTP server")
	return s.server.Shutdown(ctx)
}

// GetAddress returns the server address.
func (s *Server) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// responseWrapper captures HTTP status codes for logging.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
