// Package normalize reconciles field-name drift between persisted records and
// the canonical API types. Legacy snapshots mix snake_case column names and
// camelCase contract names, sometimes in the same record; every read path
// funnels through these functions so downstream consumers see exactly one
// shape.
//
// The resolution order is fixed: camelCase first, snake_case second, explicit
// default third. The order matters only when both representations are present
// and diverge, which must not happen under correct operation, but the rule
// has to be deterministic either way.
package normalize

import (
	"encoding/json"
	"time"

	"github.com/curiosinfo/curiosinfo/internal/models"
)

// Actor maps a raw persisted record onto the canonical Actor shape. Axis
// scores are guaranteed numeric (default 0); confidence defaults to nil.
// A nil input yields nil, not an error.
func Actor(raw map[string]any) *models.Actor {
	if raw == nil {
		return nil
	}
	return &models.Actor{
		ID:         intOf(pick(raw, "id")),
		Name:       stringOf(pick(raw, "name")),
		Slug:       stringOf(pick(raw, "slug")),
		ActorType:  stringOf(pick(raw, "actorType", "actor_type")),
		FeedURL:    stringOf(pick(raw, "feedUrl", "feed_url")),
		Confidence: floatPtrOf(pick(raw, "confidence")),
		LibAutor:   floatOf(pick(raw, "libAutor", "lib_autor")),
		IndivCol:   floatOf(pick(raw, "indivCol", "indiv_col")),
		NatioMon:   floatOf(pick(raw, "natioMon", "natio_mon")),
		ProgCons:   floatOf(pick(raw, "progCons", "prog_cons")),
		CreatedAt:  timeOf(pick(raw, "createdAt", "created_at")),
		UpdatedAt:  timeOf(pick(raw, "updatedAt", "updated_at")),
	}
}

// Topic maps a raw persisted record onto the canonical Topic shape.
// A nil input yields nil.
func Topic(raw map[string]any) *models.Topic {
	if raw == nil {
		return nil
	}
	return &models.Topic{
		ID:        intOf(pick(raw, "id")),
		Slug:      stringOf(pick(raw, "slug")),
		Title:     stringOf(pick(raw, "title")),
		Summary:   stringPtrOf(pick(raw, "summary")),
		AngleNote: stringPtrOf(pick(raw, "angleNote", "angle_note")),
		StartAt:   timePtrOf(pick(raw, "startAt", "start_at")),
		EndAt:     timePtrOf(pick(raw, "endAt", "end_at")),
		CreatedAt: timeOf(pick(raw, "createdAt", "created_at")),
		UpdatedAt: timeOf(pick(raw, "updatedAt", "updated_at")),
	}
}

// Article maps a raw persisted record onto the canonical Article shape.
// Excerpt defaults to nil when absent. A nil input yields nil.
func Article(raw map[string]any) *models.Article {
	if raw == nil {
		return nil
	}
	return &models.Article{
		ID:          intOf(pick(raw, "id")),
		TopicID:     intPtrOf(pick(raw, "topicId", "topic_id")),
		ActorID:     intOf(pick(raw, "actorId", "actor_id")),
		URL:         stringOf(pick(raw, "url")),
		URLHash:     stringOf(pick(raw, "urlHash", "url_hash")),
		Title:       stringOf(pick(raw, "title")),
		Excerpt:     stringPtrOf(pick(raw, "excerpt")),
		PublishedAt: timeOf(pick(raw, "publishedAt", "published_at")),
		CreatedAt:   timeOf(pick(raw, "createdAt", "created_at")),
	}
}

// TopicDetails normalizes a raw topic record together with its embedded
// article collection, resolving each article's actor against actorsByID.
// The embedded collection is read from "articles" or the legacy
// "topicArticles" key, defaulting to empty. Unresolved actor references
// normalize to a nil actor, not an error.
func TopicDetails(raw map[string]any, actorsByID map[int]*models.Actor) *models.TopicWithDetails {
	topic := Topic(raw)
	if topic == nil {
		return nil
	}

	details := &models.TopicWithDetails{
		Topic:        *topic,
		Articles:     make([]models.ArticleWithActor, 0),
		ActorInTopic: make([]models.Actor, 0),
	}

	seen := make(map[int]bool)
	for _, rawArticle := range rawList(pick(raw, "articles", "topicArticles")) {
		article := Article(rawArticle)
		if article == nil {
			continue
		}
		actor := actorsByID[article.ActorID]
		details.Articles = append(details.Articles, models.ArticleWithActor{
			Article: *article,
			Actor:   actor,
		})
		if actor != nil && !seen[actor.ID] {
			seen[actor.ID] = true
			details.ActorInTopic = append(details.ActorInTopic, *actor)
		}
	}

	return details
}

// pick returns the first non-nil value among the given keys, in order.
func pick(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func rawList(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func stringPtrOf(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// floatOf coerces the numeric representations a raw record can carry.
// JSON decoding yields float64; records assembled in code may hold ints.
func floatOf(v any) float64 {
	f, _ := numeric(v)
	return f
}

func floatPtrOf(v any) *float64 {
	if f, ok := numeric(v); ok {
		return &f
	}
	return nil
}

func intOf(v any) int {
	f, _ := numeric(v)
	return int(f)
}

func intPtrOf(v any) *int {
	if f, ok := numeric(v); ok {
		n := int(f)
		return &n
	}
	return nil
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// timeOf accepts time.Time values and RFC 3339 strings (what the file
// snapshots carry). Anything else yields the zero time.
func timeOf(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func timePtrOf(v any) *time.Time {
	t := timeOf(v)
	if t.IsZero() {
		return nil
	}
	return &t
}
