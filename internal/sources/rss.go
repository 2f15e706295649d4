package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/curiosinfo/curiosinfo/internal/ratelimit"
)

// Client fetches RSS/Atom feeds with per-host rate limiting.
type Client struct {
	parser  *gofeed.Parser
	limiter *ratelimit.Limiter
	config  FetcherConfig
}

func NewClient(limiter *ratelimit.Limiter, config FetcherConfig) *Client {
	parser := gofeed.NewParser()
	parser.UserAgent = config.UserAgent
	return &Client{
		parser:  parser,
		limiter: limiter,
		config:  config,
	}
}

var _ FeedReader = (*Client)(nil)

// Fetch pulls the feed at feedURL and maps its entries onto FeedItems,
// capped at MaxItems. Entries without a link or title are skipped; entries
// without a publication date get the fetch time.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]FeedItem, error) {
	c.limiter.Wait(feedURL)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	feed, err := c.parser.ParseURLWithContext(feedURL, ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for i, item := range feed.Items {
		if i >= c.config.MaxItems {
			break
		}
		if item.Link == "" || strings.TrimSpace(item.Title) == "" {
			continue
		}

		publishedAt := time.Now()
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		raw := item.Description
		if raw == "" {
			raw = item.Content
		}

		items = append(items, FeedItem{
			Title:     item.Title,
			Link:      item.Link,
			Excerpt:   ExtractExcerpt(raw, c.config.ExcerptLength),
			Published: publishedAt,
		})
	}

	return items, nil
}
