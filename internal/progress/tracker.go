package progress

import (
	"context"
	"log"
	"sync"
)

// Repository is the persistence surface the tracker writes through to.
type Repository interface {
	LoadProgress(ctx context.Context) (map[string]float64, error)
	SaveProgress(ctx context.Context, episodeID string, seconds float64) error
}

// Tracker keeps playback positions in memory and writes them through to the
// repository. Positions are loaded once at construction; reads never touch
// the database afterwards.
type Tracker struct {
	mu        sync.Mutex
	repo      Repository
	positions map[string]float64
}

func NewTracker(ctx context.Context, repo Repository) (*Tracker, error) {
	positions, err := repo.LoadProgress(ctx)
	if err != nil {
		return nil, err
	}
	if positions == nil {
		positions = make(map[string]float64)
	}
	return &Tracker{repo: repo, positions: positions}, nil
}

// Position returns the saved position for the episode, or 0 when none exists.
func (t *Tracker) Position(episodeID string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positions[episodeID]
}

// Save records the position in memory and persists it. Persistence failures
// are logged, not surfaced; the in-memory value stays authoritative for the
// session either way.
func (t *Tracker) Save(episodeID string, seconds float64) {
	if episodeID == "" || seconds < 0 {
		return
	}
	t.mu.Lock()
	t.positions[episodeID] = seconds
	t.mu.Unlock()

	if err := t.repo.SaveProgress(context.Background(), episodeID, seconds); err != nil {
		log.Printf("progress: save %s: %v", episodeID, err)
	}
}

// Forget drops all in-memory positions. Used when the store is reset.
func (t *Tracker) Forget() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions = make(map[string]float64)
}
