package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Show</title>
<description>&lt;p&gt;A show about &lt;b&gt;testing&lt;/b&gt;.&lt;/p&gt;</description>
<image><url>http://example.com/art.png</url></image>
<item>
  <guid>ep-guid-1</guid>
  <title>Episode One</title>
  <description>&lt;p&gt;First &lt;i&gt;episode&lt;/i&gt;&lt;/p&gt;</description>
  <pubDate>Mon, 02 Jan 2023 15:04:05 +0000</pubDate>
  <enclosure url="http://example.com/ep1.mp3" type="audio/mpeg" length="1"/>
</item>
<item>
  <title>No Guid</title>
  <enclosure url="http://example.com/ep2.mp3" type="audio/mpeg" length="1"/>
</item>
<item>
  <guid>no-audio</guid>
  <title>Text Only Post</title>
</item>
</channel>
</rss>`

func newTestParser(t *testing.T, body string) (*Parser, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewParser(server.Client(), "podplay/test"), server.URL
}

func TestFetchParsesChannelAndEpisodes(t *testing.T) {
	parser, url := newTestParser(t, sampleFeed)

	channel, episodes, err := parser.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if channel.Title != "Test Show" {
		t.Errorf("channel title = %q, want Test Show", channel.Title)
	}
	if channel.ImageURL != "http://example.com/art.png" {
		t.Errorf("channel image = %q", channel.ImageURL)
	}
	if channel.Description != "A show about testing." {
		t.Errorf("channel description = %q, want HTML stripped", channel.Description)
	}

	// Third item has no enclosure and must be filtered at ingestion.
	if len(episodes) != 2 {
		t.Fatalf("len(episodes) = %d, want 2", len(episodes))
	}

	first := episodes[0]
	if first.ID != "ep-guid-1" {
		t.Errorf("episode id = %q, want feed guid", first.ID)
	}
	if first.AudioURL != "http://example.com/ep1.mp3" {
		t.Errorf("audio url = %q", first.AudioURL)
	}
	if first.Description != "First episode" {
		t.Errorf("description = %q, want HTML stripped", first.Description)
	}
	if !first.HasPublish {
		t.Error("expected publish timestamp to be parsed")
	}
}

func TestFetchEpisodeIDFallsBackToAudioURL(t *testing.T) {
	parser, url := newTestParser(t, sampleFeed)

	_, episodes, err := parser.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if episodes[1].ID != "http://example.com/ep2.mp3" {
		t.Errorf("episode id = %q, want audio URL fallback", episodes[1].ID)
	}
}

func TestFetchBadFeed(t *testing.T) {
	parser, url := newTestParser(t, "not xml at all")

	if _, _, err := parser.Fetch(context.Background(), url); err == nil {
		t.Fatal("expected error for malformed feed")
	}
}
