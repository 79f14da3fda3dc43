package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jaytaylor/html2text"
	"github.com/mmcdole/gofeed"

	"podplay/internal/domain"
)

// Parser fetches and parses podcast RSS/Atom feeds.
type Parser struct {
	inner *gofeed.Parser
}

// NewParser creates a feed parser using the provided HTTP client.
func NewParser(client *http.Client, userAgent string) *Parser {
	p := gofeed.NewParser()
	if client != nil {
		p.Client = client
	}
	if strings.TrimSpace(userAgent) != "" {
		p.UserAgent = userAgent
	}
	return &Parser{inner: p}
}

// Channel describes feed-level metadata.
type Channel struct {
	Title       string
	Description string
	ImageURL    string
}

// Fetch retrieves a feed and returns its channel metadata and episodes.
// Entries without an audio enclosure are filtered out here; everything
// downstream may assume AudioURL is non-empty.
func (p *Parser) Fetch(ctx context.Context, feedURL string) (Channel, []domain.Episode, error) {
	feed, err := p.inner.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return Channel{}, nil, fmt.Errorf("fetch feed: %w", err)
	}

	channel := Channel{
		Title:       strings.TrimSpace(feed.Title),
		Description: plainText(feed.Description),
	}
	if feed.Image != nil {
		channel.ImageURL = strings.TrimSpace(feed.Image.URL)
	}

	episodes := make([]domain.Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		audioURL := enclosureURL(item)
		if audioURL == "" {
			continue
		}

		episode := domain.Episode{
			ID:          episodeID(item, audioURL),
			Title:       strings.TrimSpace(item.Title),
			Description: plainText(item.Description),
			AudioURL:    audioURL,
		}
		if item.PublishedParsed != nil {
			episode.PublishedAt = item.PublishedParsed.UTC()
			episode.HasPublish = true
		}
		episodes = append(episodes, episode)
	}

	return channel, episodes, nil
}

// episodeID picks the feed guid, falling back to the audio URL, falling back
// to a random id so the episode remains addressable for the session.
func episodeID(item *gofeed.Item, audioURL string) string {
	if guid := strings.TrimSpace(item.GUID); guid != "" {
		return guid
	}
	if audioURL != "" {
		return audioURL
	}
	return uuid.NewString()
}

func enclosureURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		url := strings.TrimSpace(enc.URL)
		if url == "" {
			continue
		}
		if enc.Type == "" || strings.HasPrefix(enc.Type, "audio/") {
			return url
		}
	}
	return ""
}

// plainText strips HTML markup from feed descriptions.
func plainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	text, err := html2text.FromString(s, html2text.Options{TextOnly: true})
	if err != nil {
		return s
	}
	return strings.TrimSpace(text)
}
