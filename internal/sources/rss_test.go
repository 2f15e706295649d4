package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/curiosinfo/curiosinfo/internal/ratelimit"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Exemple</title>
    <item>
      <title>Réforme des retraites</title>
      <link>https://example.com/retraites</link>
      <description>&lt;p&gt;Le texte de l'article.&lt;/p&gt;</description>
      <pubDate>Mon, 06 Jan 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://example.com/sans-titre</link>
    </item>
    <item>
      <title>Sans lien</title>
    </item>
    <item>
      <title>Sans date</title>
      <link>https://example.com/sans-date</link>
    </item>
  </channel>
</rss>`

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newFeedClient(config FetcherConfig) *Client {
	return NewClient(ratelimit.New(0), config)
}

func TestFetch_MapsEntries(t *testing.T) {
	ts := newFeedServer(t, testFeed)
	client := newFeedClient(DefaultConfig())

	items, err := client.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	// The title-less and link-less entries are dropped.
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	first := items[0]
	if first.Title != "Réforme des retraites" || first.Link != "https://example.com/retraites" {
		t.Errorf("first item = %+v", first)
	}
	if first.Excerpt != "Le texte de l'article." {
		t.Errorf("excerpt = %q, want stripped description", first.Excerpt)
	}
	want := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	if !first.Published.Equal(want) {
		t.Errorf("published = %v, want %v", first.Published, want)
	}

	second := items[1]
	if second.Title != "Sans date" {
		t.Errorf("second item = %+v", second)
	}
	if time.Since(second.Published) > time.Minute {
		t.Errorf("missing date should fall back to fetch time, got %v", second.Published)
	}
}

func TestFetch_MaxItemsCap(t *testing.T) {
	ts := newFeedServer(t, testFeed)
	config := DefaultConfig()
	config.MaxItems = 1
	client := newFeedClient(config)

	items, err := client.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %d, want cap of 1", len(items))
	}
}

func TestFetch_BadFeed(t *testing.T) {
	ts := newFeedServer(t, "not xml at all")
	client := newFeedClient(DefaultConfig())

	if _, err := client.Fetch(context.Background(), ts.URL); err == nil {
		t.Error("unparseable feed should return an error")
	}
}
