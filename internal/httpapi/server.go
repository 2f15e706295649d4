// Package httpapi exposes the HTTP contract: public topic and actor reads,
// admin-guarded mutation and ingestion endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/curiosinfo/curiosinfo/internal/auth"
	"github.com/curiosinfo/curiosinfo/internal/cache"
	"github.com/curiosinfo/curiosinfo/internal/ingest"
	"github.com/curiosinfo/curiosinfo/internal/logging"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

type Server struct {
	store          storage.Store
	cache          cache.Cache
	ingestSvc      *ingest.Service
	authMiddleware *auth.Middleware
	logger         *logging.Logger
	server         *http.Server
}

func New(store storage.Store, c cache.Cache, ingestSvc *ingest.Service, authMiddleware *auth.Middleware, logger *logging.Logger) *Server {
	return &Server{
		store:          store,
		cache:          c,
		ingestSvc:      ingestSvc,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// Handler builds the route mux. Split from Start so tests can drive it with
// httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	topicAPI := NewTopicAPI(s.store, s.authMiddleware, s.logger)
	topicAPI.RegisterRoutes(mux, s.corsMiddleware)

	actorAPI := NewActorAPI(s.store, s.cache, s.authMiddleware, s.logger)
	actorAPI.RegisterRoutes(mux, s.corsMiddleware)

	adminAPI := NewAdminAPI(s.store, s.ingestSvc, s.authMiddleware, s.logger)
	adminAPI.RegisterRoutes(mux, s.corsMiddleware)

	mux.HandleFunc("/api/health", s.corsMiddleware(s.handleHealth))

	return mux
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+auth.TokenHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError emits the uniform {message} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
