package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/curiosinfo/curiosinfo/internal/auth"
	"github.com/curiosinfo/curiosinfo/internal/cache"
	"github.com/curiosinfo/curiosinfo/internal/logging"
	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

// actorRosterKey caches the full public roster. Topic detail is never
// cached; only this list endpoint is.
const actorRosterKey = "actors:all"

// ActorAPI serves the public actor roster and admin actor updates.
type ActorAPI struct {
	store          storage.Store
	cache          cache.Cache
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

func NewActorAPI(store storage.Store, c cache.Cache, authMiddleware *auth.Middleware, logger *logging.Logger) *ActorAPI {
	return &ActorAPI{
		store:          store,
		cache:          c,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers actor routes on the given mux. The path is
// singular for historical API-contract reasons.
func (api *ActorAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/actor", corsMiddleware(api.handleActors))
	mux.HandleFunc("/api/actor/", corsMiddleware(api.handleActorItem))
}

func (api *ActorAPI) handleActors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	api.listActors(w, r)
}

func (api *ActorAPI) listActors(w http.ResponseWriter, r *http.Request) {
	if cached, ok := api.cache.Get(actorRosterKey); ok {
		if actors, ok := cached.([]models.Actor); ok {
			writeJSON(w, http.StatusOK, actors)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	actors, err := api.store.GetAllActors(ctx)
	if err != nil {
		api.logger.Error("Actor list failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to list actors")
		return
	}

	api.cache.Set(actorRosterKey, actors)
	writeJSON(w, http.StatusOK, actors)
}

func (api *ActorAPI) handleActorItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/actor/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "Actor id required")
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		api.authMiddleware.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
			api.updateActor(w, r, path)
		})(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *ActorAPI) updateActor(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor id")
		return
	}

	var params models.UpdateActorParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if params.Empty() {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	actor, err := api.store.UpdateActor(ctx, id, params)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Actor not found")
			return
		}
		api.logger.Error("Update actor failed", logging.WithFields(map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		}))
		writeError(w, http.StatusInternalServerError, "Failed to update actor")
		return
	}

	api.cache.Delete(actorRosterKey)
	writeJSON(w, http.StatusOK, actor)
}
