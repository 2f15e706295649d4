// Package storage defines the entity-store contract shared by the file and
// Postgres backends.
package storage

import (
	"context"
	"errors"

	"github.com/curiosinfo/curiosinfo/internal/models"
)

// ErrNotFound is returned by updates against a missing identifier. Plain
// lookups signal absence with (nil, nil) instead.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a create would violate a uniqueness
// constraint (slug, URL, URL hash). CreateArticle returns the existing
// record alongside it so ingestion can treat duplicates as already-ingested
// rather than failures.
var ErrConflict = errors.New("already exists")

// Store is the persistence contract. Both backends satisfy it: a file-backed
// store persisting whole-file JSON snapshots (single-operator local use only;
// not safe under concurrent writers across processes) and a Postgres store
// that enforces uniqueness at the database boundary.
type Store interface {
	// Actors. The roster is append-and-update only; actors are never deleted.
	GetAllActors(ctx context.Context) ([]models.Actor, error)
	GetActor(ctx context.Context, id int) (*models.Actor, error)
	GetActorBySlug(ctx context.Context, slug string) (*models.Actor, error)
	CreateActor(ctx context.Context, params models.CreateActorParams) (*models.Actor, error)
	UpdateActor(ctx context.Context, id int, params models.UpdateActorParams) (*models.Actor, error)

	// Articles.
	GetArticle(ctx context.Context, id int) (*models.Article, error)
	GetArticleByHash(ctx context.Context, hash string) (*models.Article, error)
	CreateArticle(ctx context.Context, params models.CreateArticleParams) (*models.Article, error)
	SearchArticles(ctx context.Context, params models.SearchParams) ([]models.ArticleWithActor, error)

	// Topics. DeleteTopic clears the topic reference on linked articles
	// rather than deleting them, and is a no-op for an unknown id.
	GetAllTopics(ctx context.Context) ([]models.Topic, error)
	GetTopic(ctx context.Context, id int) (*models.Topic, error)
	GetTopicBySlug(ctx context.Context, slug string) (*models.TopicWithDetails, error)
	CreateTopic(ctx context.Context, params models.CreateTopicParams) (*models.Topic, error)
	UpdateTopic(ctx context.Context, id int, params models.UpdateTopicParams) (*models.Topic, error)
	DeleteTopic(ctx context.Context, id int) error

	// Topic/article association lives on the article's topicId field in
	// both backends; link sets it, unlink clears it.
	LinkArticle(ctx context.Context, topicID, articleID int) error
	UnlinkArticle(ctx context.Context, topicID, articleID int) error
}
