package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

const articleColumns = `id, topic_id, actor_id, url, url_hash, title, excerpt, published_at, created_at`

func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	var article models.Article
	var topicID sql.NullInt64
	var excerpt sql.NullString
	if err := row.Scan(
		&article.ID,
		&topicID,
		&article.ActorID,
		&article.URL,
		&article.URLHash,
		&article.Title,
		&excerpt,
		&article.PublishedAt,
		&article.CreatedAt,
	); err != nil {
		return nil, err
	}
	if topicID.Valid {
		id := int(topicID.Int64)
		article.TopicID = &id
	}
	if excerpt.Valid {
		article.Excerpt = &excerpt.String
	}
	return &article, nil
}

func (s *Store) GetArticle(ctx context.Context, id int) (*models.Article, error) {
	article, err := scanArticle(s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return article, nil
}

func (s *Store) GetArticleByHash(ctx context.Context, hash string) (*models.Article, error) {
	article, err := scanArticle(s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE url_hash = $1`, hash))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get article by hash: %w", err)
	}
	return article, nil
}

// CreateArticle inserts the article, deduplicated on url_hash. On conflict
// the existing record is fetched and returned together with ErrConflict so
// ingestion can count the duplicate as already present.
func (s *Store) CreateArticle(ctx context.Context, params models.CreateArticleParams) (*models.Article, error) {
	article, err := scanArticle(s.db.QueryRowContext(ctx, `
		INSERT INTO articles (topic_id, actor_id, url, url_hash, title, excerpt, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url_hash) DO NOTHING
		RETURNING `+articleColumns,
		params.TopicID, params.ActorID, params.URL, params.URLHash,
		params.Title, params.Excerpt, params.PublishedAt,
	))
	if err == nil {
		return article, nil
	}
	if err != sql.ErrNoRows {
		if isUniqueViolation(err) {
			// Unique url (not url_hash) collided; surface the existing row.
			existing, lookupErr := s.GetArticleByHash(ctx, params.URLHash)
			if lookupErr == nil && existing != nil {
				return existing, storage.ErrConflict
			}
			return nil, fmt.Errorf("article url %q: %w", params.URL, storage.ErrConflict)
		}
		return nil, fmt.Errorf("create article: %w", err)
	}

	// DO NOTHING fired: the hash already exists.
	existing, err := s.GetArticleByHash(ctx, params.URLHash)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("create article: conflict on %q but existing row not found", params.URLHash)
	}
	return existing, storage.ErrConflict
}

// SearchArticles filters by title substring and optional actor, newest
// first, capped at models.SearchLimit.
func (s *Store) SearchArticles(ctx context.Context, params models.SearchParams) ([]models.ArticleWithActor, error) {
	builder := sq.Select(
		"a.id", "a.topic_id", "a.actor_id", "a.url", "a.url_hash",
		"a.title", "a.excerpt", "a.published_at", "a.created_at",
		"ac.id", "ac.name", "ac.slug", "ac.actor_type", "ac.feed_url", "ac.confidence",
		"ac.lib_autor", "ac.indiv_col", "ac.natio_mon", "ac.prog_cons",
		"ac.created_at", "ac.updated_at",
	).
		From("articles a").
		LeftJoin("actor ac ON ac.id = a.actor_id").
		OrderBy("a.published_at DESC").
		Limit(models.SearchLimit).
		PlaceholderFormat(sq.Dollar)

	if params.Query != "" {
		builder = builder.Where(sq.ILike{"a.title": "%" + params.Query + "%"})
	}
	if params.ActorID != nil {
		builder = builder.Where(sq.Eq{"a.actor_id": *params.ActorID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article search: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	results := make([]models.ArticleWithActor, 0)
	for rows.Next() {
		item, err := scanArticleWithActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		results = append(results, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return results, nil
}

// queryArticlesWithActor runs the article/actor join with an arbitrary WHERE
// clause suffix. Used by the topic detail view.
func (s *Store) queryArticlesWithActor(ctx context.Context, suffix string, args ...any) ([]models.ArticleWithActor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			a.id, a.topic_id, a.actor_id, a.url, a.url_hash,
			a.title, a.excerpt, a.published_at, a.created_at,
			ac.id, ac.name, ac.slug, ac.actor_type, ac.feed_url, ac.confidence,
			ac.lib_autor, ac.indiv_col, ac.natio_mon, ac.prog_cons,
			ac.created_at, ac.updated_at
		FROM articles a
		LEFT JOIN actor ac ON ac.id = a.actor_id
		`+suffix, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles with actor: %w", err)
	}
	defer rows.Close()

	results := make([]models.ArticleWithActor, 0)
	for rows.Next() {
		item, err := scanArticleWithActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		results = append(results, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return results, nil
}

func scanArticleWithActor(row interface{ Scan(...any) error }) (*models.ArticleWithActor, error) {
	var item models.ArticleWithActor
	var topicID sql.NullInt64
	var excerpt sql.NullString

	var actorID sql.NullInt64
	var actorName, actorSlug, actorType, feedURL sql.NullString
	var confidence, libAutor, indivCol, natioMon, progCons sql.NullFloat64
	var actorCreated, actorUpdated sql.NullTime

	if err := row.Scan(
		&item.ID,
		&topicID,
		&item.ActorID,
		&item.URL,
		&item.URLHash,
		&item.Title,
		&excerpt,
		&item.PublishedAt,
		&item.CreatedAt,
		&actorID,
		&actorName,
		&actorSlug,
		&actorType,
		&feedURL,
		&confidence,
		&libAutor,
		&indivCol,
		&natioMon,
		&progCons,
		&actorCreated,
		&actorUpdated,
	); err != nil {
		return nil, err
	}
	if topicID.Valid {
		id := int(topicID.Int64)
		item.TopicID = &id
	}
	if excerpt.Valid {
		item.Excerpt = &excerpt.String
	}
	if actorID.Valid {
		actor := &models.Actor{
			ID:        int(actorID.Int64),
			Name:      actorName.String,
			Slug:      actorSlug.String,
			ActorType: actorType.String,
			FeedURL:   feedURL.String,
			LibAutor:  libAutor.Float64,
			IndivCol:  indivCol.Float64,
			NatioMon:  natioMon.Float64,
			ProgCons:  progCons.Float64,
			CreatedAt: actorCreated.Time,
			UpdatedAt: actorUpdated.Time,
		}
		if confidence.Valid {
			actor.Confidence = &confidence.Float64
		}
		item.Actor = actor
	}
	return &item, nil
}
