package domain

import "time"

// Episode is a single playable entry parsed from a podcast feed. Values are
// immutable once constructed; transformations produce new records.
type Episode struct {
	ID          string
	Title       string
	Description string
	PublishedAt time.Time
	HasPublish  bool
	AudioURL    string

	// Denormalized display fields, attached when the episode enters the
	// playback queue.
	PodcastTitle    string
	PodcastImageURL string
}

// WithShow returns a copy of the episode carrying the parent show's display
// fields.
func (e Episode) WithShow(title, imageURL string) Episode {
	e.PodcastTitle = title
	e.PodcastImageURL = imageURL
	return e
}

// Podcast is a show returned by the directory. Episodes stays empty until the
// first detail view, then is cached in memory for the session.
type Podcast struct {
	ID          string
	Title       string
	Publisher   string
	ArtworkURL  string
	FeedURL     string
	Description string
	Episodes    []Episode
}

// Subscription is a persisted show the user follows.
type Subscription struct {
	ID           string
	Title        string
	Publisher    string
	ArtworkURL   string
	FeedURL      string
	SubscribedAt time.Time
}

// SubscriptionExport is the minimal record needed for OPML export.
type SubscriptionExport struct {
	Title   string
	FeedURL string
}

// ProgressEntry is a persisted per-episode playback position.
type ProgressEntry struct {
	EpisodeID string
	Seconds   float64
	UpdatedAt time.Time
}
