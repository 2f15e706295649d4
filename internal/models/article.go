package models

import "time"

// Article is one ingested piece of content, attributed to exactly one actor.
// The topic reference is cleared (not the article deleted) when its topic is
// removed, so TopicID is nullable.
type Article struct {
	ID          int       `json:"id"`
	TopicID     *int      `json:"topicId"`
	ActorID     int       `json:"actorId"`
	URL         string    `json:"url"`
	URLHash     string    `json:"urlHash"`
	Title       string    `json:"title"`
	Excerpt     *string   `json:"excerpt"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArticleWithActor embeds the resolved actor record. Actor is nil when the
// reference cannot be resolved, never an error.
type ArticleWithActor struct {
	Article
	Actor *Actor `json:"actor"`
}

// CreateArticleParams holds the fields for article creation during ingestion
// or direct admin linking. URLHash is the deduplication key.
type CreateArticleParams struct {
	TopicID     *int      `json:"topicId"`
	ActorID     int       `json:"actorId"`
	URL         string    `json:"url"`
	URLHash     string    `json:"urlHash"`
	Title       string    `json:"title"`
	Excerpt     *string   `json:"excerpt"`
	PublishedAt time.Time `json:"published_at"`
}

// SearchParams filters the admin article search. Query is a case-insensitive
// substring match on title; ActorID an exact filter. Results are capped at
// SearchLimit, newest first.
type SearchParams struct {
	Query   string
	ActorID *int
}

// SearchLimit caps admin article search results.
const SearchLimit = 50

// IngestReport summarizes one ingestion pass.
type IngestReport struct {
	NewArticles int      `json:"newArticles"`
	Errors      int      `json:"errors"`
	Details     []string `json:"details"`
}
