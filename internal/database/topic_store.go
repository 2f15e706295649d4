package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

const topicColumns = `id, slug, title, summary, angle_note, start_at, end_at, created_at, updated_at`

func scanTopic(row interface{ Scan(...any) error }) (*models.Topic, error) {
	var topic models.Topic
	var summary, angleNote sql.NullString
	var startAt, endAt sql.NullTime
	if err := row.Scan(
		&topic.ID,
		&topic.Slug,
		&topic.Title,
		&summary,
		&angleNote,
		&startAt,
		&endAt,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if summary.Valid {
		topic.Summary = &summary.String
	}
	if angleNote.Valid {
		topic.AngleNote = &angleNote.String
	}
	if startAt.Valid {
		topic.StartAt = &startAt.Time
	}
	if endAt.Valid {
		topic.EndAt = &endAt.Time
	}
	return &topic, nil
}

func (s *Store) GetAllTopics(ctx context.Context) ([]models.Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+topicColumns+` FROM topics ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	topics := make([]models.Topic, 0)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, *topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	return topics, nil
}

func (s *Store) GetTopic(ctx context.Context, id int) (*models.Topic, error) {
	topic, err := scanTopic(s.db.QueryRowContext(ctx,
		`SELECT `+topicColumns+` FROM topics WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get topic %d: %w", id, err)
	}
	return topic, nil
}

// GetTopicBySlug assembles the detail view in three queries: the topic row,
// its articles joined with their actors, and nothing else. The distinct
// contributing actors are derived in first-reference order.
func (s *Store) GetTopicBySlug(ctx context.Context, slug string) (*models.TopicWithDetails, error) {
	topic, err := scanTopic(s.db.QueryRowContext(ctx,
		`SELECT `+topicColumns+` FROM topics WHERE slug = $1`, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get topic by slug %q: %w", slug, err)
	}

	articles, err := s.queryArticlesWithActor(ctx,
		`WHERE a.topic_id = $1 ORDER BY a.published_at DESC`, topic.ID)
	if err != nil {
		return nil, err
	}

	details := &models.TopicWithDetails{
		Topic:        *topic,
		Articles:     articles,
		ActorInTopic: make([]models.Actor, 0),
	}
	seen := make(map[int]bool)
	for _, a := range articles {
		if a.Actor != nil && !seen[a.Actor.ID] {
			seen[a.Actor.ID] = true
			details.ActorInTopic = append(details.ActorInTopic, *a.Actor)
		}
	}
	return details, nil
}

func (s *Store) CreateTopic(ctx context.Context, params models.CreateTopicParams) (*models.Topic, error) {
	topic, err := scanTopic(s.db.QueryRowContext(ctx, `
		INSERT INTO topics (slug, title, summary, angle_note, start_at, end_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+topicColumns,
		params.Slug, params.Title, params.Summary, params.AngleNote, params.StartAt, params.EndAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("topic slug %q: %w", params.Slug, storage.ErrConflict)
		}
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return topic, nil
}

func (s *Store) UpdateTopic(ctx context.Context, id int, params models.UpdateTopicParams) (*models.Topic, error) {
	setParts := make([]string, 0, 6)
	args := make([]any, 0, 6)
	argPos := 1

	addSet := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Slug != nil {
		addSet("slug", *params.Slug)
	}
	if params.Title != nil {
		addSet("title", *params.Title)
	}
	if params.Summary != nil {
		addSet("summary", *params.Summary)
	}
	if params.AngleNote != nil {
		addSet("angle_note", *params.AngleNote)
	}
	if params.StartAt != nil {
		addSet("start_at", *params.StartAt)
	}
	if params.EndAt != nil {
		addSet("end_at", *params.EndAt)
	}
	if len(setParts) == 0 {
		return s.GetTopic(ctx, id)
	}
	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	topic, err := scanTopic(s.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE topics SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(setParts, ", "), argPos, topicColumns),
		args...,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("topic %d: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("update topic %d: %w", id, err)
	}
	return topic, nil
}

// DeleteTopic relies on the ON DELETE SET NULL foreign key to detach linked
// articles. Deleting an unknown id is a no-op.
func (s *Store) DeleteTopic(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete topic %d: %w", id, err)
	}
	return nil
}

func (s *Store) LinkArticle(ctx context.Context, topicID, articleID int) error {
	topic, err := s.GetTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if topic == nil {
		return fmt.Errorf("topic %d: %w", topicID, storage.ErrNotFound)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE articles SET topic_id = $1 WHERE id = $2`, topicID, articleID)
	if err != nil {
		return fmt.Errorf("link article %d to topic %d: %w", articleID, topicID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("article %d: %w", articleID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) UnlinkArticle(ctx context.Context, topicID, articleID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE articles SET topic_id = NULL WHERE id = $1 AND topic_id = $2`, articleID, topicID)
	if err != nil {
		return fmt.Errorf("unlink article %d from topic %d: %w", articleID, topicID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		// Either the article does not exist or it is not linked to this
		// topic; distinguish so callers can 404 on the former.
		article, err := s.GetArticle(ctx, articleID)
		if err != nil {
			return err
		}
		if article == nil {
			return fmt.Errorf("article %d: %w", articleID, storage.ErrNotFound)
		}
	}
	return nil
}
