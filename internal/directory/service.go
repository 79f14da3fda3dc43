package directory

import (
	"context"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"podplay/internal/domain"
	"podplay/internal/feeds"
	"podplay/internal/itunes"
)

// Service is the directory client: podcast search against the iTunes API and
// per-show episode lists parsed from the show's feed. Episode lists are
// fetched lazily on first detail view and cached in memory for the session.
type Service struct {
	itunes *itunes.Client
	feeds  *feeds.Parser

	mu       sync.Mutex
	episodes map[string][]domain.Episode
}

func NewService(itunesClient *itunes.Client, parser *feeds.Parser) *Service {
	return &Service{
		itunes:   itunesClient,
		feeds:    parser,
		episodes: make(map[string][]domain.Episode),
	}
}

// Search queries the directory and re-ranks results by fuzzy relevance of the
// term against title and publisher. Results the ranker cannot match keep
// their directory order, after the matched ones.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]domain.Podcast, error) {
	results, err := s.itunes.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		podcast domain.Podcast
		rank    int
		pos     int
	}

	rankedResults := make([]ranked, 0, len(results))
	for i, p := range results {
		rank := fuzzy.RankMatchNormalizedFold(term, p.Title)
		if rank < 0 {
			if publisherRank := fuzzy.RankMatchNormalizedFold(term, p.Publisher); publisherRank >= 0 {
				// Publisher matches rank behind any title match.
				rank = publisherRank + len(p.Title)
			}
		}
		rankedResults = append(rankedResults, ranked{podcast: p, rank: rank, pos: i})
	}

	sort.SliceStable(rankedResults, func(i, j int) bool {
		ri, rj := rankedResults[i], rankedResults[j]
		if (ri.rank >= 0) != (rj.rank >= 0) {
			return ri.rank >= 0
		}
		if ri.rank != rj.rank {
			return ri.rank < rj.rank
		}
		return ri.pos < rj.pos
	})

	sorted := make([]domain.Podcast, len(rankedResults))
	for i, r := range rankedResults {
		sorted[i] = r.podcast
	}
	return sorted, nil
}

// Lookup fetches metadata for a single show by directory id.
func (s *Service) Lookup(ctx context.Context, id string) (domain.Podcast, error) {
	return s.itunes.LookupPodcast(ctx, id)
}

// Episodes returns the show's episode list, fetching and caching it on first
// use. The returned podcast carries channel metadata merged over the directory
// record.
func (s *Service) Episodes(ctx context.Context, podcast domain.Podcast) (domain.Podcast, error) {
	s.mu.Lock()
	cached, ok := s.episodes[podcast.ID]
	s.mu.Unlock()
	if ok {
		podcast.Episodes = cached
		return podcast, nil
	}

	channel, episodes, err := s.feeds.Fetch(ctx, podcast.FeedURL)
	if err != nil {
		return podcast, err
	}

	if podcast.Title == "" {
		podcast.Title = channel.Title
	}
	if podcast.Description == "" {
		podcast.Description = channel.Description
	}
	if podcast.ArtworkURL == "" {
		podcast.ArtworkURL = channel.ImageURL
	}
	podcast.Episodes = episodes

	s.mu.Lock()
	s.episodes[podcast.ID] = episodes
	s.mu.Unlock()
	return podcast, nil
}

// InvalidateEpisodes drops the cached episode list for a show, forcing a
// refetch on next view.
func (s *Service) InvalidateEpisodes(podcastID string) {
	s.mu.Lock()
	delete(s.episodes, podcastID)
	s.mu.Unlock()
}

// Reset drops all cached episode lists.
func (s *Service) Reset() {
	s.mu.Lock()
	s.episodes = make(map[string][]domain.Episode)
	s.mu.Unlock()
}
