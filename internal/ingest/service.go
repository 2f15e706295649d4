// Package ingest walks the actor roster, fetches each actor's feed and
// persists the articles that are not already known.
package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/curiosinfo/curiosinfo/internal/logging"
	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/sources"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

// Service runs ingestion passes over the actor roster.
type Service struct {
	store  storage.Store
	reader sources.FeedReader
	logger *logging.Logger
	dryRun bool
}

func New(store storage.Store, reader sources.FeedReader, logger *logging.Logger, dryRun bool) *Service {
	return &Service{
		store:  store,
		reader: reader,
		logger: logger,
		dryRun: dryRun,
	}
}

// HashURL derives the deduplication key for an article URL: hex-encoded
// SHA-256 of the trimmed URL.
func HashURL(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return fmt.Sprintf("%x", sum)
}

// Run performs one sequential ingestion pass over every actor. Actors with
// an empty or placeholder feed URL are skipped. A failing feed is reported
// in the result and does not stop the pass.
func (s *Service) Run(ctx context.Context) (*models.IngestReport, error) {
	runID := uuid.NewString()
	s.logger.Info("Ingestion pass started", logging.WithFields(map[string]interface{}{
		"run_id":  runID,
		"dry_run": s.dryRun,
	}))

	actors, err := s.store.GetAllActors(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading actor roster: %w", err)
	}

	report := &models.IngestReport{Details: make([]string, 0)}
	for _, actor := range actors {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		feedURL := strings.TrimSpace(actor.FeedURL)
		if feedURL == "" || strings.EqualFold(feedURL, "TODO") {
			continue
		}
		s.ingestActor(ctx, runID, actor, feedURL, report)
	}

	s.logger.Info("Ingestion pass finished", logging.WithFields(map[string]interface{}{
		"run_id":       runID,
		"new_articles": report.NewArticles,
		"errors":       report.Errors,
	}))
	return report, nil
}

func (s *Service) ingestActor(ctx context.Context, runID string, actor models.Actor, feedURL string, report *models.IngestReport) {
	items, err := s.reader.Fetch(ctx, feedURL)
	if err != nil {
		report.Errors++
		report.Details = append(report.Details, fmt.Sprintf("Error fetching %s: %v", actor.Name, err))
		s.logger.Warn("Feed fetch failed", logging.WithFields(map[string]interface{}{
			"run_id": runID,
			"actor":  actor.Slug,
			"error":  err.Error(),
		}))
		return
	}

	for _, item := range items {
		hash := HashURL(item.Link)

		existing, err := s.store.GetArticleByHash(ctx, hash)
		if err != nil {
			report.Errors++
			report.Details = append(report.Details, fmt.Sprintf("Error checking article for %s: %v", actor.Name, err))
			continue
		}
		if existing != nil {
			continue
		}

		if s.dryRun {
			report.NewArticles++
			report.Details = append(report.Details, fmt.Sprintf("Would ingest %q for %s", item.Title, actor.Name))
			continue
		}

		var excerpt *string
		if item.Excerpt != "" {
			excerpt = &item.Excerpt
		}

		_, err = s.store.CreateArticle(ctx, models.CreateArticleParams{
			ActorID:     actor.ID,
			URL:         strings.TrimSpace(item.Link),
			URLHash:     hash,
			Title:       item.Title,
			Excerpt:     excerpt,
			PublishedAt: item.Published,
		})
		if errors.Is(err, storage.ErrConflict) {
			// Another pass persisted it between the lookup and the insert.
			continue
		}
		if err != nil {
			report.Errors++
			report.Details = append(report.Details, fmt.Sprintf("Error saving article for %s: %v", actor.Name, err))
			continue
		}
		report.NewArticles++
	}

	s.logger.Debug("Actor feed processed", logging.WithFields(map[string]interface{}{
		"run_id": runID,
		"actor":  actor.Slug,
		"items":  len(items),
	}))
}
