package subscriptions

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"podplay/internal/domain"
	"podplay/internal/feeds"
	"podplay/internal/itunes"
	"podplay/internal/opml"
	"podplay/internal/repository"
)

var (
	ErrMissingPodcastID        = errors.New("podcast ID cannot be empty")
	ErrMissingFeedURL          = errors.New("podcast feed URL missing")
	ErrAlreadySubscribed       = errors.New("already subscribed")
	ErrNoSubscriptionsToExport = errors.New("no subscriptions to export")
	ErrNoSubscriptionsInOPML   = errors.New("no subscriptions found in OPML file")
)

type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []string
}

type Service struct {
	store  *repository.Store
	parser *feeds.Parser
	itunes *itunes.Client
}

func NewService(store *repository.Store, parser *feeds.Parser, itunesClient *itunes.Client) *Service {
	return &Service{store: store, parser: parser, itunes: itunesClient}
}

func (s *Service) List(ctx context.Context) ([]domain.Subscription, error) {
	return s.store.ListSubscriptions(ctx)
}

func (s *Service) IsSubscribed(ctx context.Context, podcastID string) (bool, string, error) {
	return s.store.SubscriptionExists(ctx, podcastID)
}

// Subscribe persists the podcast as a followed show. The feed is fetched once
// to validate the URL and to prefer the feed's own title and artwork over the
// directory's.
func (s *Service) Subscribe(ctx context.Context, podcast domain.Podcast) (domain.Subscription, error) {
	podcastID := strings.TrimSpace(podcast.ID)
	if podcastID == "" {
		return domain.Subscription{}, ErrMissingPodcastID
	}

	exists, title, err := s.store.SubscriptionExists(ctx, podcastID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if exists {
		if title == "" {
			title = fallbackTitle(podcast.Title, podcastID)
		}
		return domain.Subscription{ID: podcastID, Title: title}, ErrAlreadySubscribed
	}

	meta := podcast
	if strings.TrimSpace(meta.FeedURL) == "" {
		if s.itunes == nil {
			return domain.Subscription{}, ErrMissingFeedURL
		}
		meta, err = s.itunes.LookupPodcast(ctx, podcastID)
		if err != nil {
			return domain.Subscription{}, err
		}
	}

	feedURL := strings.TrimSpace(meta.FeedURL)
	if feedURL == "" {
		return domain.Subscription{}, ErrMissingFeedURL
	}

	channel, _, err := s.parser.Fetch(ctx, feedURL)
	if err != nil {
		return domain.Subscription{}, err
	}

	sub := domain.Subscription{
		ID:           podcastID,
		Title:        fallbackTitle(channel.Title, meta.Title, podcastID),
		Publisher:    strings.TrimSpace(meta.Publisher),
		ArtworkURL:   fallbackValue(meta.ArtworkURL, channel.ImageURL),
		FeedURL:      feedURL,
		SubscribedAt: time.Now().UTC(),
	}

	if err := s.store.SaveSubscription(ctx, sub); err != nil {
		return domain.Subscription{}, err
	}
	return sub, nil
}

func (s *Service) Unsubscribe(ctx context.Context, podcastID string) (bool, error) {
	podcastID = strings.TrimSpace(podcastID)
	if podcastID == "" {
		return false, ErrMissingPodcastID
	}
	return s.store.DeleteSubscription(ctx, podcastID)
}

func (s *Service) ExportOPML(ctx context.Context, filePath string) (int, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return 0, errors.New("file path cannot be empty")
	}

	exports, err := s.store.ListSubscriptionExports(ctx)
	if err != nil {
		return 0, err
	}
	if len(exports) == 0 {
		return 0, ErrNoSubscriptionsToExport
	}

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	subs := make([]opml.Subscription, len(exports))
	for i, export := range exports {
		subs[i] = opml.Subscription{Title: export.Title, FeedURL: export.FeedURL}
	}

	if err := opml.Export(file, subs); err != nil {
		return 0, err
	}

	return len(subs), nil
}

func (s *Service) ImportOPML(ctx context.Context, filePath string) (ImportResult, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return ImportResult{}, errors.New("file path cannot be empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	entries, err := opml.Import(file)
	if err != nil {
		return ImportResult{}, err
	}
	if len(entries) == 0 {
		return ImportResult{}, ErrNoSubscriptionsInOPML
	}

	var result ImportResult
	for _, entry := range entries {
		has, err := s.store.HasSubscriptionByFeedURL(ctx, entry.FeedURL)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Title, err))
			continue
		}
		if has {
			result.Skipped++
			continue
		}

		channel, _, err := s.parser.Fetch(ctx, entry.FeedURL)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Title, err))
			continue
		}

		// Imported feeds have no directory ID; derive a stable one from the URL.
		podcastID := fmt.Sprintf("opml-%x", sha256.Sum256([]byte(entry.FeedURL)))[:16]
		sub := domain.Subscription{
			ID:           podcastID,
			Title:        fallbackTitle(channel.Title, entry.Title),
			ArtworkURL:   channel.ImageURL,
			FeedURL:      entry.FeedURL,
			SubscribedAt: time.Now().UTC(),
		}

		if err := s.store.SaveSubscription(ctx, sub); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", sub.Title, err))
			continue
		}

		result.Imported++
	}

	return result, nil
}

func fallbackTitle(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return "Untitled Podcast"
}

func fallbackValue(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
