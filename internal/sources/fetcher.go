// Package sources fetches actor publications from their RSS/Atom feeds and
// loads the actor seed roster.
package sources

import (
	"context"
	"time"
)

// FeedItem is one entry pulled from an actor's feed, reduced to what
// ingestion needs.
type FeedItem struct {
	Title     string
	Link      string
	Excerpt   string
	Published time.Time
}

// FeedReader fetches the entries of a single feed URL. Satisfied by the RSS
// client; tests substitute a fake.
type FeedReader interface {
	Fetch(ctx context.Context, feedURL string) ([]FeedItem, error)
}

type FetcherConfig struct {
	Timeout       time.Duration
	MaxItems      int
	UserAgent     string
	ExcerptLength int
}

func DefaultConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:       30 * time.Second,
		MaxItems:      50,
		UserAgent:     "CuriosInfo/1.0",
		ExcerptLength: 300,
	}
}
