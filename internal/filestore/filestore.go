// Package filestore implements the storage contract over whole-file JSON
// snapshots, one file per entity. It is the default backend for local and
// single-operator deployments; a process-wide mutex serializes access, so it
// must not be shared across processes.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/curiosinfo/curiosinfo/internal/logging"
	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/normalize"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

const (
	actorsFile   = "actors.json"
	topicsFile   = "topics.json"
	articlesFile = "articles.json"
)

// Store persists actors, topics and articles as indented JSON files under a
// single data directory. Every read funnels through the normalize package so
// legacy snake_case snapshots keep loading; every write serializes the
// canonical shape, migrating drifted files on the next save.
type Store struct {
	mu     sync.Mutex
	dir    string
	logger *logging.Logger
}

// New creates the data directory if needed and returns a ready store.
func New(dir string, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

var _ storage.Store = (*Store)(nil)

// readRecords loads a snapshot file into raw records. A missing file is an
// empty collection, not an error.
func (s *Store) readRecords(name string) ([]map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return []map[string]any{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return records, nil
}

// writeRecords rewrites a snapshot file in full, indented for diffability.
func (s *Store) writeRecords(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (s *Store) loadActors() ([]models.Actor, error) {
	records, err := s.readRecords(actorsFile)
	if err != nil {
		return nil, err
	}
	actors := make([]models.Actor, 0, len(records))
	for _, raw := range records {
		if actor := normalize.Actor(raw); actor != nil {
			actors = append(actors, *actor)
		}
	}
	return actors, nil
}

func (s *Store) loadTopics() ([]models.Topic, error) {
	records, err := s.readRecords(topicsFile)
	if err != nil {
		return nil, err
	}
	topics := make([]models.Topic, 0, len(records))
	for _, raw := range records {
		if topic := normalize.Topic(raw); topic != nil {
			topics = append(topics, *topic)
		}
	}
	return topics, nil
}

func (s *Store) loadArticles() ([]models.Article, error) {
	records, err := s.readRecords(articlesFile)
	if err != nil {
		return nil, err
	}
	articles := make([]models.Article, 0, len(records))
	for _, raw := range records {
		if article := normalize.Article(raw); article != nil {
			articles = append(articles, *article)
		}
	}
	return articles, nil
}

// nextID assigns max(id)+1 so IDs stay stable across deletes.
func nextActorID(actors []models.Actor) int {
	max := 0
	for _, a := range actors {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}

func nextTopicID(topics []models.Topic) int {
	max := 0
	for _, t := range topics {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

func nextArticleID(articles []models.Article) int {
	max := 0
	for _, a := range articles {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}

// GetAllActors returns the full roster in file order.
func (s *Store) GetAllActors(ctx context.Context) ([]models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadActors()
}

// GetActor returns the actor with the given id, or (nil, nil) when absent.
func (s *Store) GetActor(ctx context.Context, id int) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	actors, err := s.loadActors()
	if err != nil {
		return nil, err
	}
	for i := range actors {
		if actors[i].ID == id {
			return &actors[i], nil
		}
	}
	return nil, nil
}

// GetActorBySlug returns the actor with the given slug, or (nil, nil).
func (s *Store) GetActorBySlug(ctx context.Context, slug string) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	actors, err := s.loadActors()
	if err != nil {
		return nil, err
	}
	for i := range actors {
		if actors[i].Slug == slug {
			return &actors[i], nil
		}
	}
	return nil, nil
}

// CreateActor appends a new actor. Slug collisions return ErrConflict.
func (s *Store) CreateActor(ctx context.Context, params models.CreateActorParams) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actors, err := s.loadActors()
	if err != nil {
		return nil, err
	}
	for _, a := range actors {
		if a.Slug == params.Slug {
			return nil, fmt.Errorf("actor slug %q: %w", params.Slug, storage.ErrConflict)
		}
	}

	now := time.Now().UTC()
	actor := models.Actor{
		ID:        nextActorID(actors),
		Name:      params.Name,
		Slug:      params.Slug,
		ActorType: params.ActorType,
		FeedURL:   params.FeedURL,
		LibAutor:  params.LibAutor,
		IndivCol:  params.IndivCol,
		NatioMon:  params.NatioMon,
		ProgCons:  params.ProgCons,
		CreatedAt: now,
		UpdatedAt: now,
	}
	actors = append(actors, actor)
	if err := s.writeRecords(actorsFile, actors); err != nil {
		return nil, err
	}
	return &actor, nil
}

// UpdateActor applies a partial update. A missing id returns ErrNotFound.
func (s *Store) UpdateActor(ctx context.Context, id int, params models.UpdateActorParams) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actors, err := s.loadActors()
	if err != nil {
		return nil, err
	}
	for i := range actors {
		if actors[i].ID != id {
			continue
		}
		applyActorUpdate(&actors[i], params)
		actors[i].UpdatedAt = time.Now().UTC()
		if err := s.writeRecords(actorsFile, actors); err != nil {
			return nil, err
		}
		return &actors[i], nil
	}
	return nil, fmt.Errorf("actor %d: %w", id, storage.ErrNotFound)
}

func applyActorUpdate(actor *models.Actor, params models.UpdateActorParams) {
	if params.Name != nil {
		actor.Name = *params.Name
	}
	if params.FeedURL != nil {
		actor.FeedURL = *params.FeedURL
	}
	if params.ActorType != nil {
		actor.ActorType = *params.ActorType
	}
	if params.LibAutor != nil {
		actor.LibAutor = *params.LibAutor
	}
	if params.IndivCol != nil {
		actor.IndivCol = *params.IndivCol
	}
	if params.NatioMon != nil {
		actor.NatioMon = *params.NatioMon
	}
	if params.ProgCons != nil {
		actor.ProgCons = *params.ProgCons
	}
}

// GetArticle returns the article with the given id, or (nil, nil).
func (s *Store) GetArticle(ctx context.Context, id int) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles, err := s.loadArticles()
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].ID == id {
			return &articles[i], nil
		}
	}
	return nil, nil
}

// GetArticleByHash looks an article up by its URL hash, or (nil, nil).
func (s *Store) GetArticleByHash(ctx context.Context, hash string) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles, err := s.loadArticles()
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].URLHash == hash {
			return &articles[i], nil
		}
	}
	return nil, nil
}

// CreateArticle appends a new article. When the URL hash already exists the
// existing record is returned together with ErrConflict so callers can treat
// the duplicate as already ingested.
func (s *Store) CreateArticle(ctx context.Context, params models.CreateArticleParams) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles, err := s.loadArticles()
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].URLHash == params.URLHash {
			return &articles[i], storage.ErrConflict
		}
	}

	article := models.Article{
		ID:          nextArticleID(articles),
		TopicID:     params.TopicID,
		ActorID:     params.ActorID,
		URL:         params.URL,
		URLHash:     params.URLHash,
		Title:       params.Title,
		Excerpt:     params.Excerpt,
		PublishedAt: params.PublishedAt,
		CreatedAt:   time.Now().UTC(),
	}
	articles = append(articles, article)
	if err := s.writeRecords(articlesFile, articles); err != nil {
		return nil, err
	}
	return &article, nil
}

// SearchArticles filters by title substring (case-insensitive) and optional
// actor id, newest first, capped at models.SearchLimit. Each hit carries its
// resolved actor, nil when the reference is dangling.
func (s *Store) SearchArticles(ctx context.Context, params models.SearchParams) ([]models.ArticleWithActor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles, err := s.loadArticles()
	if err != nil {
		return nil, err
	}
	actors, err := s.loadActors()
	if err != nil {
		return nil, err
	}
	actorsByID := make(map[int]*models.Actor, len(actors))
	for i := range actors {
		actorsByID[actors[i].ID] = &actors[i]
	}

	query := strings.ToLower(params.Query)
	matched := make([]models.Article, 0)
	for _, a := range articles {
		if query != "" && !strings.Contains(strings.ToLower(a.Title), query) {
			continue
		}
		if params.ActorID != nil && a.ActorID != *params.ActorID {
			continue
		}
		matched = append(matched, a)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})
	if len(matched) > models.SearchLimit {
		matched = matched[:models.SearchLimit]
	}

	results := make([]models.ArticleWithActor, 0, len(matched))
	for _, a := range matched {
		results = append(results, models.ArticleWithActor{
			Article: a,
			Actor:   actorsByID[a.ActorID],
		})
	}
	return results, nil
}

// GetAllTopics returns every topic in file order.
func (s *Store) GetAllTopics(ctx context.Context) ([]models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTopics()
}

// GetTopic returns the topic with the given id, or (nil, nil).
func (s *Store) GetTopic(ctx context.Context, id int) (*models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics, err := s.loadTopics()
	if err != nil {
		return nil, err
	}
	for i := range topics {
		if topics[i].ID == id {
			return &topics[i], nil
		}
	}
	return nil, nil
}

// GetTopicBySlug assembles the topic detail view: the topic, its linked
// articles with resolved actors, and the distinct contributing actors in
// first-reference order. Returns (nil, nil) for an unknown slug.
func (s *Store) GetTopicBySlug(ctx context.Context, slug string) (*models.TopicWithDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics, err := s.loadTopics()
	if err != nil {
		return nil, err
	}
	var topic *models.Topic
	for i := range topics {
		if topics[i].Slug == slug {
			topic = &topics[i]
			break
		}
	}
	if topic == nil {
		return nil, nil
	}

	articles, err := s.loadArticles()
	if err != nil {
		return nil, err
	}
	actors, err := s.loadActors()
	if err != nil {
		return nil, err
	}
	actorsByID := make(map[int]*models.Actor, len(actors))
	for i := range actors {
		actorsByID[actors[i].ID] = &actors[i]
	}

	details := &models.TopicWithDetails{
		Topic:        *topic,
		Articles:     make([]models.ArticleWithActor, 0),
		ActorInTopic: make([]models.Actor, 0),
	}
	seen := make(map[int]bool)
	for _, a := range articles {
		if a.TopicID == nil || *a.TopicID != topic.ID {
			continue
		}
		actor := actorsByID[a.ActorID]
		details.Articles = append(details.Articles, models.ArticleWithActor{Article: a, Actor: actor})
		if actor != nil && !seen[actor.ID] {
			seen[actor.ID] = true
			details.ActorInTopic = append(details.ActorInTopic, *actor)
		}
	}
	return details, nil
}

// CreateTopic appends a new topic. Slug collisions return ErrConflict.
func (s *Store) CreateTopic(ctx context.Context, params models.CreateTopicParams) (*models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics, err := s.loadTopics()
	if err != nil {
		return nil, err
	}
	for _, t := range topics {
		if t.Slug == params.Slug {
			return nil, fmt.Errorf("topic slug %q: %w", params.Slug, storage.ErrConflict)
		}
	}

	now := time.Now().UTC()
	topic := models.Topic{
		ID:        nextTopicID(topics),
		Slug:      params.Slug,
		Title:     params.Title,
		Summary:   params.Summary,
		AngleNote: params.AngleNote,
		StartAt:   params.StartAt,
		EndAt:     params.EndAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	topics = append(topics, topic)
	if err := s.writeRecords(topicsFile, topics); err != nil {
		return nil, err
	}
	return &topic, nil
}

// UpdateTopic applies a partial update. A missing id returns ErrNotFound.
func (s *Store) UpdateTopic(ctx context.Context, id int, params models.UpdateTopicParams) (*models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics, err := s.loadTopics()
	if err != nil {
		return nil, err
	}
	for i := range topics {
		if topics[i].ID != id {
			continue
		}
		if params.Slug != nil {
			topics[i].Slug = *params.Slug
		}
		if params.Title != nil {
			topics[i].Title = *params.Title
		}
		if params.Summary != nil {
			topics[i].Summary = params.Summary
		}
		if params.AngleNote != nil {
			topics[i].AngleNote = params.AngleNote
		}
		if params.StartAt != nil {
			topics[i].StartAt = params.StartAt
		}
		if params.EndAt != nil {
			topics[i].EndAt = params.EndAt
		}
		topics[i].UpdatedAt = time.Now().UTC()
		if err := s.writeRecords(topicsFile, topics); err != nil {
			return nil, err
		}
		return &topics[i], nil
	}
	return nil, fmt.Errorf("topic %d: %w", id, storage.ErrNotFound)
}

// DeleteTopic removes the topic and clears the topic reference on every
// article that pointed at it. Deleting an unknown id is a no-op.
func (s *Store) DeleteTopic(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics, err := s.loadTopics()
	if err != nil {
		return err
	}
	kept := make([]models.Topic, 0, len(topics))
	found := false
	for _, t := range topics {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return nil
	}
	if err := s.writeRecords(topicsFile, kept); err != nil {
		return err
	}

	articles, err := s.loadArticles()
	if err != nil {
		return err
	}
	changed := false
	for i := range articles {
		if articles[i].TopicID != nil && *articles[i].TopicID == id {
			articles[i].TopicID = nil
			changed = true
		}
	}
	if changed {
		if err := s.writeRecords(articlesFile, articles); err != nil {
			return err
		}
	}
	s.logger.Debug("Topic deleted", logging.WithField("topic_id", id))
	return nil
}

// LinkArticle points the article at the topic. Both must exist.
func (s *Store) LinkArticle(ctx context.Context, topicID, articleID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics, err := s.loadTopics()
	if err != nil {
		return err
	}
	topicExists := false
	for _, t := range topics {
		if t.ID == topicID {
			topicExists = true
			break
		}
	}
	if !topicExists {
		return fmt.Errorf("topic %d: %w", topicID, storage.ErrNotFound)
	}

	articles, err := s.loadArticles()
	if err != nil {
		return err
	}
	for i := range articles {
		if articles[i].ID == articleID {
			articles[i].TopicID = &topicID
			return s.writeRecords(articlesFile, articles)
		}
	}
	return fmt.Errorf("article %d: %w", articleID, storage.ErrNotFound)
}

// UnlinkArticle clears the article's topic reference when it points at the
// given topic. Unlinking an article that is not linked is a no-op.
func (s *Store) UnlinkArticle(ctx context.Context, topicID, articleID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles, err := s.loadArticles()
	if err != nil {
		return err
	}
	for i := range articles {
		if articles[i].ID != articleID {
			continue
		}
		if articles[i].TopicID != nil && *articles[i].TopicID == topicID {
			articles[i].TopicID = nil
			return s.writeRecords(articlesFile, articles)
		}
		return nil
	}
	return fmt.Errorf("article %d: %w", articleID, storage.ErrNotFound)
}
