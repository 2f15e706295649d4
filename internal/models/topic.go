package models

import "time"

// Topic is a curated editorial subject.
type Topic struct {
	ID        int        `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Summary   *string    `json:"summary"`
	AngleNote *string    `json:"angleNote"`
	StartAt   *time.Time `json:"start_at"`
	EndAt     *time.Time `json:"end_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TopicWithDetails is a Topic plus its resolved articles and the distinct
// actors that contributed at least one of them. Recomputed on every fetch;
// never persisted or cached.
type TopicWithDetails struct {
	Topic
	Articles     []ArticleWithActor `json:"articles"`
	ActorInTopic []Actor            `json:"actorInTopic"`
}

// CreateTopicParams holds the fields for topic creation. Slug is derived
// from the title when left empty.
type CreateTopicParams struct {
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Summary   *string    `json:"summary"`
	AngleNote *string    `json:"angleNote"`
	StartAt   *time.Time `json:"start_at"`
	EndAt     *time.Time `json:"end_at"`
}

// UpdateTopicParams is a partial update; nil fields are left untouched.
type UpdateTopicParams struct {
	Slug      *string    `json:"slug"`
	Title     *string    `json:"title"`
	Summary   *string    `json:"summary"`
	AngleNote *string    `json:"angleNote"`
	StartAt   *time.Time `json:"start_at"`
	EndAt     *time.Time `json:"end_at"`
}

// Empty reports whether the update carries no fields at all.
func (p UpdateTopicParams) Empty() bool {
	return p.Slug == nil && p.Title == nil && p.Summary == nil &&
		p.AngleNote == nil && p.StartAt == nil && p.EndAt == nil
}
