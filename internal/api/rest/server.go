package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/soluk/zamboni/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, rebuilder Rebuilder) *Server {
	handler := NewHandler(db, rebuilder)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Lookup table
	api.HandleFunc("/lookup", handler.GetLookup).Methods("GET")
	api.HandleFunc("/lookup/{team}", handler.GetLookupByTeam).Methods("GET")

	// Defense scores
	api.HandleFunc("/scores", handler.GetScores).Methods("GET")
	api.HandleFunc("/scores/{team}", handler.GetScoreByTeam).Methods("GET")

	// Runs
	api.HandleFunc("/runs/latest", handler.GetLatestRun).Methods("GET")

	// Rebuild trigger
	api.HandleFunc("/rebuild", handler.TriggerRebuild).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
