package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/curiosinfo/curiosinfo/internal/auth"
	"github.com/curiosinfo/curiosinfo/internal/ingest"
	"github.com/curiosinfo/curiosinfo/internal/logging"
	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

// AdminAPI serves the admin article search and the ingestion trigger.
type AdminAPI struct {
	store          storage.Store
	ingestSvc      *ingest.Service
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

func NewAdminAPI(store storage.Store, ingestSvc *ingest.Service, authMiddleware *auth.Middleware, logger *logging.Logger) *AdminAPI {
	return &AdminAPI{
		store:          store,
		ingestSvc:      ingestSvc,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers admin routes on the given mux
func (api *AdminAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/admin/articles", corsMiddleware(api.authMiddleware.RequireAdmin(api.handleSearchArticles)))
	mux.HandleFunc("/api/admin/ingest", corsMiddleware(api.authMiddleware.RequireAdmin(api.handleIngest)))
}

func (api *AdminAPI) handleSearchArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	params := models.SearchParams{Query: query.Get("search")}
	if v := query.Get("actorId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid actorId")
			return
		}
		params.ActorID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	results, err := api.store.SearchArticles(ctx, params)
	if err != nil {
		api.logger.Error("Article search failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to search articles")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (api *AdminAPI) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Feed fetches are slow; give the pass room to finish.
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	report, err := api.ingestSvc.Run(ctx)
	if err != nil {
		api.logger.Error("Ingestion failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Ingestion failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
