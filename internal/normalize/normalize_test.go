package normalize

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/curiosinfo/curiosinfo/internal/models"
)

func TestActor_SnakeCaseOnly(t *testing.T) {
	raw := map[string]any{
		"id":         1.0,
		"name":       "Le Monde",
		"slug":       "le-monde",
		"actor_type": "presse",
		"feed_url":   "https://example.com/rss",
		"lib_autor":  3.5,
		"indiv_col":  -1.0,
		"natio_mon":  2.0,
		"prog_cons":  -4.5,
	}

	actor := Actor(raw)
	if actor == nil {
		t.Fatal("Actor() returned nil for valid record")
	}
	if actor.LibAutor != 3.5 {
		t.Errorf("LibAutor = %v, want 3.5", actor.LibAutor)
	}
	if actor.IndivCol != -1.0 {
		t.Errorf("IndivCol = %v, want -1.0", actor.IndivCol)
	}
	if actor.ActorType != "presse" {
		t.Errorf("ActorType = %q, want %q", actor.ActorType, "presse")
	}
	if actor.FeedURL != "https://example.com/rss" {
		t.Errorf("FeedURL = %q, want %q", actor.FeedURL, "https://example.com/rss")
	}
}

func TestActor_CamelCasePreferred(t *testing.T) {
	raw := map[string]any{
		"id":        1.0,
		"name":      "Test",
		"libAutor":  2.0,
		"lib_autor": -5.0,
		"feedUrl":   "camel",
		"feed_url":  "snake",
	}

	actor := Actor(raw)
	if actor.LibAutor != 2.0 {
		t.Errorf("LibAutor = %v, want camelCase value 2.0", actor.LibAutor)
	}
	if actor.FeedURL != "camel" {
		t.Errorf("FeedURL = %q, want camelCase value", actor.FeedURL)
	}
}

func TestActor_Defaults(t *testing.T) {
	actor := Actor(map[string]any{"id": 7.0, "name": "Bare"})
	if actor.LibAutor != 0 || actor.IndivCol != 0 || actor.NatioMon != 0 || actor.ProgCons != 0 {
		t.Error("missing axis scores should default to 0")
	}
	if actor.Confidence != nil {
		t.Errorf("missing confidence should default to nil, got %v", *actor.Confidence)
	}
}

func TestActor_Nil(t *testing.T) {
	if Actor(nil) != nil {
		t.Error("Actor(nil) should be nil")
	}
	if Topic(nil) != nil {
		t.Error("Topic(nil) should be nil")
	}
	if Article(nil) != nil {
		t.Error("Article(nil) should be nil")
	}
}

func TestArticle_SnakeAndCamelMix(t *testing.T) {
	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := map[string]any{
		"id":           10.0,
		"topic_id":     3.0,
		"actorId":      5.0,
		"url":          "https://example.com/a",
		"url_hash":     "abc",
		"title":        "Titre",
		"published_at": published.Format(time.RFC3339),
	}

	article := Article(raw)
	if article.TopicID == nil || *article.TopicID != 3 {
		t.Errorf("TopicID = %v, want 3", article.TopicID)
	}
	if article.ActorID != 5 {
		t.Errorf("ActorID = %d, want 5", article.ActorID)
	}
	if !article.PublishedAt.Equal(published) {
		t.Errorf("PublishedAt = %v, want %v", article.PublishedAt, published)
	}
	if article.Excerpt != nil {
		t.Error("missing excerpt should be nil")
	}
}

// Normalization must be idempotent: re-normalizing the canonical shape is a
// no-op.
func TestArticle_Idempotent(t *testing.T) {
	raw := map[string]any{
		"id":           1.0,
		"topic_id":     2.0,
		"actor_id":     3.0,
		"url":          "https://example.com/x",
		"url_hash":     "h",
		"title":        "T",
		"excerpt":      "E",
		"published_at": "2025-01-15T08:30:00Z",
	}

	once := Article(raw)

	again := Article(map[string]any{
		"id":          once.ID,
		"topicId":     *once.TopicID,
		"actorId":     once.ActorID,
		"url":         once.URL,
		"urlHash":     once.URLHash,
		"title":       once.Title,
		"excerpt":     *once.Excerpt,
		"publishedAt": once.PublishedAt,
		"createdAt":   once.CreatedAt,
	})

	if diff := cmp.Diff(once, again); diff != "" {
		t.Errorf("normalization not idempotent (-once +again):\n%s", diff)
	}
}

func TestTopic_LegacyFields(t *testing.T) {
	raw := map[string]any{
		"id":         2.0,
		"slug":       "retraites",
		"title":      "Réforme des retraites",
		"angle_note": "note",
		"start_at":   "2025-02-01T00:00:00Z",
	}

	topic := Topic(raw)
	if topic.AngleNote == nil || *topic.AngleNote != "note" {
		t.Errorf("AngleNote = %v, want note", topic.AngleNote)
	}
	if topic.StartAt == nil {
		t.Fatal("StartAt should be parsed")
	}
	if topic.EndAt != nil {
		t.Error("missing EndAt should be nil")
	}
	if topic.Summary != nil {
		t.Error("missing Summary should be nil")
	}
}

func TestTopicDetails(t *testing.T) {
	actor := &models.Actor{ID: 1, Name: "Le Monde", Slug: "le-monde"}
	actorsByID := map[int]*models.Actor{1: actor}

	raw := map[string]any{
		"id":    5.0,
		"slug":  "ukraine",
		"title": "Guerre en Ukraine",
		"articles": []any{
			map[string]any{"id": 10.0, "actor_id": 1.0, "url": "https://a", "title": "A"},
			map[string]any{"id": 11.0, "actorId": 1.0, "url": "https://b", "title": "B"},
			map[string]any{"id": 12.0, "actor_id": 99.0, "url": "https://c", "title": "C"},
		},
	}

	details := TopicDetails(raw, actorsByID)
	if details == nil {
		t.Fatal("TopicDetails() returned nil")
	}
	if len(details.Articles) != 3 {
		t.Fatalf("Articles count = %d, want 3", len(details.Articles))
	}
	if details.Articles[0].Actor == nil || details.Articles[0].Actor.ID != 1 {
		t.Error("first article should resolve actor 1")
	}
	if details.Articles[2].Actor != nil {
		t.Error("unresolved actor reference should yield nil actor, not an error")
	}
	if len(details.ActorInTopic) != 1 {
		t.Errorf("ActorInTopic count = %d, want 1 distinct actor", len(details.ActorInTopic))
	}
}

func TestTopicDetails_LegacyTopicArticlesKey(t *testing.T) {
	raw := map[string]any{
		"id":    1.0,
		"slug":  "s",
		"title": "T",
		"topicArticles": []any{
			map[string]any{"id": 1.0, "actor_id": 1.0, "url": "https://x", "title": "X"},
		},
	}

	details := TopicDetails(raw, nil)
	if len(details.Articles) != 1 {
		t.Fatalf("legacy topicArticles key not resolved, got %d articles", len(details.Articles))
	}
}

func TestTopicDetails_NoArticles(t *testing.T) {
	details := TopicDetails(map[string]any{"id": 1.0, "slug": "s", "title": "T"}, nil)
	if details.Articles == nil || len(details.Articles) != 0 {
		t.Error("missing article list should normalize to empty slice")
	}
	if details.ActorInTopic == nil || len(details.ActorInTopic) != 0 {
		t.Error("ActorInTopic should be an empty slice")
	}
}
