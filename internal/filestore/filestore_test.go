package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/storage"
	"github.com/curiosinfo/curiosinfo/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), testutil.NullLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return store
}

func createActor(t *testing.T, s *Store, name, slug string) *models.Actor {
	t.Helper()
	actor, err := s.CreateActor(context.Background(), models.CreateActorParams{
		Name:      name,
		Slug:      slug,
		ActorType: "presse",
	})
	if err != nil {
		t.Fatalf("CreateActor(%s) error: %v", slug, err)
	}
	return actor
}

func createTopic(t *testing.T, s *Store, title, slug string) *models.Topic {
	t.Helper()
	topic, err := s.CreateTopic(context.Background(), models.CreateTopicParams{
		Title: title,
		Slug:  slug,
	})
	if err != nil {
		t.Fatalf("CreateTopic(%s) error: %v", slug, err)
	}
	return topic
}

func createArticle(t *testing.T, s *Store, actorID int, hash string, topicID *int) *models.Article {
	t.Helper()
	article, err := s.CreateArticle(context.Background(), models.CreateArticleParams{
		TopicID:     topicID,
		ActorID:     actorID,
		URL:         "https://example.com/" + hash,
		URLHash:     hash,
		Title:       "Article " + hash,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateArticle(%s) error: %v", hash, err)
	}
	return article
}

func TestActorLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := createActor(t, s, "Le Monde", "le-monde")
	if created.ID != 1 {
		t.Errorf("first actor ID = %d, want 1", created.ID)
	}

	got, err := s.GetActorBySlug(ctx, "le-monde")
	if err != nil {
		t.Fatalf("GetActorBySlug error: %v", err)
	}
	if got == nil || got.Name != "Le Monde" {
		t.Fatalf("GetActorBySlug = %+v, want Le Monde", got)
	}

	missing, err := s.GetActor(ctx, 999)
	if err != nil {
		t.Fatalf("GetActor error: %v", err)
	}
	if missing != nil {
		t.Error("lookup of unknown id should return (nil, nil)")
	}

	newName := "Le Monde Diplomatique"
	score := 4.5
	updated, err := s.UpdateActor(ctx, created.ID, models.UpdateActorParams{Name: &newName, LibAutor: &score})
	if err != nil {
		t.Fatalf("UpdateActor error: %v", err)
	}
	if updated.Name != newName || updated.LibAutor != 4.5 {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Slug != "le-monde" {
		t.Error("untouched fields must survive a partial update")
	}
}

func TestCreateActor_SlugConflict(t *testing.T) {
	s := newTestStore(t)
	createActor(t, s, "Le Monde", "le-monde")

	_, err := s.CreateActor(context.Background(), models.CreateActorParams{Name: "Dup", Slug: "le-monde"})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate slug error = %v, want ErrConflict", err)
	}
}

func TestUpdateActor_NotFound(t *testing.T) {
	s := newTestStore(t)
	name := "x"
	_, err := s.UpdateActor(context.Background(), 42, models.UpdateActorParams{Name: &name})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update of missing actor = %v, want ErrNotFound", err)
	}
}

func TestCreateArticle_DuplicateHashReturnsExisting(t *testing.T) {
	s := newTestStore(t)
	actor := createActor(t, s, "A", "a")
	first := createArticle(t, s, actor.ID, "hash1", nil)

	dup, err := s.CreateArticle(context.Background(), models.CreateArticleParams{
		ActorID:     actor.ID,
		URL:         "https://example.com/other",
		URLHash:     "hash1",
		Title:       "Other",
		PublishedAt: time.Now(),
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate hash error = %v, want ErrConflict", err)
	}
	if dup == nil || dup.ID != first.ID {
		t.Errorf("duplicate create should return the existing record, got %+v", dup)
	}
}

func TestDeleteTopic_ClearsArticleReferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	actor := createActor(t, s, "A", "a")
	topic := createTopic(t, s, "Sujet", "sujet")
	article := createArticle(t, s, actor.ID, "h1", &topic.ID)

	if err := s.DeleteTopic(ctx, topic.ID); err != nil {
		t.Fatalf("DeleteTopic error: %v", err)
	}

	topics, err := s.GetAllTopics(ctx)
	if err != nil {
		t.Fatalf("GetAllTopics error: %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("deleted topic still listed: %+v", topics)
	}

	details, err := s.GetTopicBySlug(ctx, "sujet")
	if err != nil {
		t.Fatalf("GetTopicBySlug error: %v", err)
	}
	if details != nil {
		t.Error("deleted topic slug should resolve to (nil, nil)")
	}

	got, err := s.GetArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("GetArticle error: %v", err)
	}
	if got == nil {
		t.Fatal("article must survive its topic's deletion")
	}
	if got.TopicID != nil {
		t.Errorf("article TopicID = %v, want nil after topic deletion", *got.TopicID)
	}
}

func TestDeleteTopic_UnknownIDIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteTopic(context.Background(), 42); err != nil {
		t.Errorf("deleting unknown topic = %v, want nil", err)
	}
}

func TestLinkUnlinkArticle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	actor := createActor(t, s, "A", "a")
	topic := createTopic(t, s, "Sujet", "sujet")
	article := createArticle(t, s, actor.ID, "h1", nil)

	if err := s.LinkArticle(ctx, topic.ID, article.ID); err != nil {
		t.Fatalf("LinkArticle error: %v", err)
	}
	got, _ := s.GetArticle(ctx, article.ID)
	if got.TopicID == nil || *got.TopicID != topic.ID {
		t.Fatalf("link not applied: %+v", got)
	}

	if err := s.UnlinkArticle(ctx, topic.ID, article.ID); err != nil {
		t.Fatalf("UnlinkArticle error: %v", err)
	}
	got, _ = s.GetArticle(ctx, article.ID)
	if got.TopicID != nil {
		t.Errorf("unlink not applied: TopicID = %v", *got.TopicID)
	}

	if err := s.LinkArticle(ctx, 999, article.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("linking to unknown topic = %v, want ErrNotFound", err)
	}
	if err := s.LinkArticle(ctx, topic.ID, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("linking unknown article = %v, want ErrNotFound", err)
	}
}

func TestGetTopicBySlug_Details(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	actorA := createActor(t, s, "A", "a")
	actorB := createActor(t, s, "B", "b")
	topic := createTopic(t, s, "Sujet", "sujet")

	createArticle(t, s, actorA.ID, "h1", &topic.ID)
	createArticle(t, s, actorA.ID, "h2", &topic.ID)
	createArticle(t, s, actorB.ID, "h3", &topic.ID)
	createArticle(t, s, actorB.ID, "h4", nil) // not linked

	details, err := s.GetTopicBySlug(ctx, "sujet")
	if err != nil {
		t.Fatalf("GetTopicBySlug error: %v", err)
	}
	if len(details.Articles) != 3 {
		t.Errorf("Articles = %d, want 3 linked", len(details.Articles))
	}
	if len(details.ActorInTopic) != 2 {
		t.Errorf("ActorInTopic = %d, want 2 distinct", len(details.ActorInTopic))
	}
	for _, a := range details.Articles {
		if a.Actor == nil {
			t.Error("linked article should carry its resolved actor")
		}
	}
}

func TestSearchArticles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	actorA := createActor(t, s, "A", "a")
	actorB := createActor(t, s, "B", "b")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(actorID int, hash, title string, offset time.Duration) {
		if _, err := s.CreateArticle(ctx, models.CreateArticleParams{
			ActorID:     actorID,
			URL:         "https://example.com/" + hash,
			URLHash:     hash,
			Title:       title,
			PublishedAt: base.Add(offset),
		}); err != nil {
			t.Fatalf("CreateArticle error: %v", err)
		}
	}

	mk(actorA.ID, "h1", "Réforme des retraites", time.Hour)
	mk(actorA.ID, "h2", "Budget 2025", 2*time.Hour)
	mk(actorB.ID, "h3", "Retraites: la suite", 3*time.Hour)

	results, err := s.SearchArticles(ctx, models.SearchParams{Query: "retraites"})
	if err != nil {
		t.Fatalf("SearchArticles error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("search = %d hits, want 2", len(results))
	}
	if results[0].URLHash != "h3" {
		t.Errorf("results should be newest first, got %s", results[0].URLHash)
	}

	id := actorA.ID
	results, err = s.SearchArticles(ctx, models.SearchParams{Query: "retraites", ActorID: &id})
	if err != nil {
		t.Fatalf("SearchArticles error: %v", err)
	}
	if len(results) != 1 || results[0].URLHash != "h1" {
		t.Fatalf("actor filter mismatch: %+v", results)
	}
	if results[0].Actor == nil || results[0].Actor.ID != actorA.ID {
		t.Error("search hit should carry its resolved actor")
	}
}

func TestSearchArticles_Cap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	actor := createActor(t, s, "A", "a")

	for i := 0; i < models.SearchLimit+10; i++ {
		if _, err := s.CreateArticle(ctx, models.CreateArticleParams{
			ActorID:     actor.ID,
			URL:         "https://example.com/" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			URLHash:     string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Title:       "T",
			PublishedAt: time.Now(),
		}); err != nil {
			t.Fatalf("CreateArticle error: %v", err)
		}
	}

	results, err := s.SearchArticles(ctx, models.SearchParams{})
	if err != nil {
		t.Fatalf("SearchArticles error: %v", err)
	}
	if len(results) != models.SearchLimit {
		t.Errorf("search = %d hits, want cap %d", len(results), models.SearchLimit)
	}
}

// Legacy snapshots carry snake_case keys; reads must normalize them.
func TestLegacySnakeCaseSnapshot(t *testing.T) {
	dir := t.TempDir()
	snapshot := `[
  {"id": 1, "name": "Le Monde", "slug": "le-monde", "actor_type": "presse",
   "feed_url": "https://example.com/rss", "lib_autor": 3.5, "indiv_col": -1,
   "natio_mon": 2, "prog_cons": -4,
   "created_at": "2024-06-01T00:00:00Z", "updated_at": "2024-06-01T00:00:00Z"}
]`
	if err := os.WriteFile(filepath.Join(dir, "actors.json"), []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := New(dir, testutil.NullLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	actors, err := s.GetAllActors(context.Background())
	if err != nil {
		t.Fatalf("GetAllActors error: %v", err)
	}
	if len(actors) != 1 {
		t.Fatalf("actors = %d, want 1", len(actors))
	}
	if actors[0].LibAutor != 3.5 || actors[0].ProgCons != -4 {
		t.Errorf("snake_case axis fields not normalized: %+v", actors[0])
	}
	if actors[0].FeedURL != "https://example.com/rss" {
		t.Errorf("feed_url not normalized: %q", actors[0].FeedURL)
	}
}

func TestMissingFilesReadAsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	actors, err := s.GetAllActors(ctx)
	if err != nil {
		t.Fatalf("GetAllActors error: %v", err)
	}
	if len(actors) != 0 {
		t.Errorf("fresh store actors = %d, want 0", len(actors))
	}

	topics, err := s.GetAllTopics(ctx)
	if err != nil {
		t.Fatalf("GetAllTopics error: %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("fresh store topics = %d, want 0", len(topics))
	}
}

func TestIDsAreMaxPlusOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t1 := createTopic(t, s, "A", "a")
	t2 := createTopic(t, s, "B", "b")
	if t2.ID != t1.ID+1 {
		t.Errorf("second topic ID = %d, want %d", t2.ID, t1.ID+1)
	}

	if err := s.DeleteTopic(ctx, t2.ID); err != nil {
		t.Fatal(err)
	}
	t3 := createTopic(t, s, "C", "c")
	if t3.ID != t2.ID {
		t.Errorf("ID after delete = %d, want max+1 = %d", t3.ID, t2.ID)
	}
}
