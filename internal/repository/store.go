package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"podplay/internal/domain"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SubscriptionExists(ctx context.Context, podcastID string) (bool, string, error) {
	var title string
	err := s.db.QueryRowContext(ctx, "SELECT title FROM podcasts WHERE id = ?", podcastID).Scan(&title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, "", nil
		}
		return false, "", err
	}
	return true, title, nil
}

func (s *Store) HasSubscriptionByFeedURL(ctx context.Context, feedURL string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM podcasts WHERE feed_url = ?", feedURL).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	title := strings.TrimSpace(sub.Title)
	if title == "" {
		title = "Untitled Podcast"
	}

	subscribedAt := sub.SubscribedAt
	if subscribedAt.IsZero() {
		subscribedAt = time.Now().UTC()
	}

	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO podcasts (id, title, publisher, artwork_url, feed_url, subscribed_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET title=excluded.title, publisher=excluded.publisher, artwork_url=excluded.artwork_url, feed_url=excluded.feed_url`,
			sub.ID, title, sub.Publisher, sub.ArtworkURL, sub.FeedURL, subscribedAt.Format(time.RFC3339Nano))
		return err
	})
}

func (s *Store) DeleteSubscription(ctx context.Context, podcastID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM podcasts WHERE id = ?", podcastID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, COALESCE(publisher, ''), COALESCE(artwork_url, ''), feed_url, subscribed_at
FROM podcasts
ORDER BY LOWER(title)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]domain.Subscription, 0, 16)
	for rows.Next() {
		var sub domain.Subscription
		var subscribedAt string
		if err := rows.Scan(&sub.ID, &sub.Title, &sub.Publisher, &sub.ArtworkURL, &sub.FeedURL, &subscribedAt); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339Nano, subscribedAt); err == nil {
			sub.SubscribedAt = parsed
		} else if parsed, err := time.Parse(time.RFC3339, subscribedAt); err == nil {
			sub.SubscribedAt = parsed
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *Store) ListSubscriptionExports(ctx context.Context) ([]domain.SubscriptionExport, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT title, feed_url FROM podcasts ORDER BY LOWER(title)")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exports := make([]domain.SubscriptionExport, 0, 16)
	for rows.Next() {
		var export domain.SubscriptionExport
		if err := rows.Scan(&export.Title, &export.FeedURL); err != nil {
			return nil, err
		}
		exports = append(exports, export)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exports, nil
}

// LoadProgress returns every saved playback position keyed by episode ID.
func (s *Store) LoadProgress(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT episode_id, seconds FROM progress")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make(map[string]float64, 64)
	for rows.Next() {
		var episodeID string
		var seconds float64
		if err := rows.Scan(&episodeID, &seconds); err != nil {
			return nil, err
		}
		positions[episodeID] = seconds
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return positions, nil
}

func (s *Store) SaveProgress(ctx context.Context, episodeID string, seconds float64) error {
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO progress (episode_id, seconds, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(episode_id) DO UPDATE SET seconds = excluded.seconds, updated_at = excluded.updated_at`,
			episodeID, seconds, time.Now().UTC().Format(time.RFC3339Nano))
		return err
	})
}

func (s *Store) DeleteProgress(ctx context.Context, episodeID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM progress WHERE episode_id = ?", episodeID)
	return err
}

// Reset drops all subscriptions and saved positions, returning the store to
// its first-run state.
func (s *Store) Reset(ctx context.Context) error {
	return s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				tx.Rollback()
			}
		}()

		if _, err := tx.ExecContext(ctx, "DELETE FROM podcasts"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM progress"); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	})
}

func (s *Store) withRetry(ctx context.Context, fn func() error) error {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fn()
		if err == nil {
			return nil
		}
		if !isSQLiteBusy(err) {
			return err
		}
		backoff := 50 * time.Millisecond * time.Duration(1<<i)
		if err := waitWithContext(ctx, backoff); err != nil {
			return err
		}
	}
	return err
}

func waitWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
