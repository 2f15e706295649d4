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
	"github.com/curiosinfo/curiosinfo/internal/coverage"
	"github.com/curiosinfo/curiosinfo/internal/logging"
	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

// TopicAPI handles topic CRUD, article linking and the coverage endpoint.
type TopicAPI struct {
	store          storage.Store
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

func NewTopicAPI(store storage.Store, authMiddleware *auth.Middleware, logger *logging.Logger) *TopicAPI {
	return &TopicAPI{
		store:          store,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers topic routes on the given mux
func (api *TopicAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/topics", corsMiddleware(api.handleTopics))
	mux.HandleFunc("/api/topics/", corsMiddleware(api.handleTopicItem))
}

func (api *TopicAPI) handleTopics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.listTopics(w, r)
	case http.MethodPost:
		api.authMiddleware.RequireAdmin(api.createTopic)(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTopicItem routes single-topic operations. The path segment after
// /api/topics/ is a slug for public reads and a numeric id for admin
// mutations; sub-resources are {id}/articles[/{articleId}] and
// {slug}/coverage.
func (api *TopicAPI) handleTopicItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/topics/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "Topic identifier required")
		return
	}

	if len(parts) > 1 {
		switch parts[1] {
		case "articles":
			api.authMiddleware.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
				api.handleTopicArticles(w, r, parts)
			})(w, r)
			return
		case "coverage":
			api.getTopicCoverage(w, r, parts[0])
			return
		default:
			writeError(w, http.StatusNotFound, "Unknown resource")
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		api.getTopicBySlug(w, r, parts[0])
	case http.MethodPatch, http.MethodPut:
		api.authMiddleware.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
			api.updateTopic(w, r, parts[0])
		})(w, r)
	case http.MethodDelete:
		api.authMiddleware.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
			api.deleteTopic(w, r, parts[0])
		})(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *TopicAPI) listTopics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	topics, err := api.store.GetAllTopics(ctx)
	if err != nil {
		api.logger.Error("Topic list failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to list topics")
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (api *TopicAPI) getTopicBySlug(w http.ResponseWriter, r *http.Request, slug string) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	details, err := api.store.GetTopicBySlug(ctx, slug)
	if err != nil {
		api.logger.Error("Topic fetch failed", logging.WithFields(map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		}))
		writeError(w, http.StatusInternalServerError, "Failed to fetch topic")
		return
	}
	if details == nil {
		writeError(w, http.StatusNotFound, "Topic not found")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// getTopicCoverage recomputes per-category coverage for the topic's current
// article set on every call.
func (api *TopicAPI) getTopicCoverage(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	details, err := api.store.GetTopicBySlug(ctx, slug)
	if err != nil {
		api.logger.Error("Topic coverage failed", logging.WithFields(map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		}))
		writeError(w, http.StatusInternalServerError, "Failed to compute coverage")
		return
	}
	if details == nil {
		writeError(w, http.StatusNotFound, "Topic not found")
		return
	}

	actors, err := api.store.GetAllActors(ctx)
	if err != nil {
		api.logger.Error("Actor roster load failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to compute coverage")
		return
	}

	articles := make([]models.Article, 0, len(details.Articles))
	for _, a := range details.Articles {
		articles = append(articles, a.Article)
	}
	writeJSON(w, http.StatusOK, coverage.Compute(actors, articles))
}

func (api *TopicAPI) createTopic(w http.ResponseWriter, r *http.Request) {
	var params models.CreateTopicParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(params.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if params.Slug == "" {
		params.Slug = models.Slugify(params.Title)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	topic, err := api.store.CreateTopic(ctx, params)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			writeError(w, http.StatusConflict, "Topic slug already exists")
			return
		}
		api.logger.Error("Create topic failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to create topic")
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (api *TopicAPI) updateTopic(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic id")
		return
	}

	var params models.UpdateTopicParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if params.Empty() {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	topic, err := api.store.UpdateTopic(ctx, id, params)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Topic not found")
			return
		}
		if errors.Is(err, storage.ErrConflict) {
			writeError(w, http.StatusConflict, "Topic slug already exists")
			return
		}
		api.logger.Error("Update topic failed", logging.WithFields(map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		}))
		writeError(w, http.StatusInternalServerError, "Failed to update topic")
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (api *TopicAPI) deleteTopic(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := api.store.DeleteTopic(ctx, id); err != nil {
		api.logger.Error("Delete topic failed", logging.WithFields(map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		}))
		writeError(w, http.StatusInternalServerError, "Failed to delete topic")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTopicArticles serves POST /api/topics/{id}/articles (link) and
// DELETE /api/topics/{id}/articles/{articleId} (unlink).
func (api *TopicAPI) handleTopicArticles(w http.ResponseWriter, r *http.Request, parts []string) {
	topicID, err := strconv.Atoi(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	switch {
	case r.Method == http.MethodPost && len(parts) == 2:
		var body struct {
			ArticleID int `json:"articleId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ArticleID == 0 {
			writeError(w, http.StatusBadRequest, "articleId is required")
			return
		}
		if err := api.store.LinkArticle(ctx, topicID, body.ArticleID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			api.logger.Error("Link article failed", logging.WithField("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "Failed to link article")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]bool{"success": true})

	case r.Method == http.MethodDelete && len(parts) == 3:
		articleID, err := strconv.Atoi(parts[2])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid article id")
			return
		}
		if err := api.store.UnlinkArticle(ctx, topicID, articleID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			api.logger.Error("Unlink article failed", logging.WithField("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "Failed to unlink article")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
