package subscriptions_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"podplay/internal/domain"
	"podplay/internal/feeds"
	"podplay/internal/repository"
	"podplay/internal/storage"
	"podplay/internal/subscriptions"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Feed Title</title>
    <description>A show about things.</description>
    <item>
      <title>Episode One</title>
      <guid>ep-1</guid>
      <enclosure url="http://example.com/ep1.mp3" type="audio/mpeg" length="1"/>
    </item>
  </channel>
</rss>`

func newTestService(t *testing.T) (*subscriptions.Service, *repository.Store, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML)
	}))
	t.Cleanup(server.Close)

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := repository.New(db)
	parser := feeds.NewParser(server.Client(), "podplay-test")
	return subscriptions.NewService(store, parser, nil), store, server
}

func TestSubscribePersistsAndPrefersFeedTitle(t *testing.T) {
	ctx := context.Background()
	service, store, server := newTestService(t)

	sub, err := service.Subscribe(ctx, domain.Podcast{
		ID:        "pod-1",
		Title:     "Directory Title",
		Publisher: "Example Studios",
		FeedURL:   server.URL + "/feed.xml",
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if sub.Title != "Feed Title" {
		t.Errorf("Title = %q, want feed's own title", sub.Title)
	}
	if sub.Publisher != "Example Studios" {
		t.Errorf("Publisher = %q, want directory publisher", sub.Publisher)
	}

	subs, err := store.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != "pod-1" {
		t.Fatalf("subscription not persisted: %+v", subs)
	}
}

func TestSubscribeRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	service, _, server := newTestService(t)

	podcast := domain.Podcast{ID: "pod-1", Title: "Show", FeedURL: server.URL + "/feed.xml"}
	if _, err := service.Subscribe(ctx, podcast); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	_, err := service.Subscribe(ctx, podcast)
	if !errors.Is(err, subscriptions.ErrAlreadySubscribed) {
		t.Fatalf("second Subscribe error = %v, want ErrAlreadySubscribed", err)
	}
}

func TestSubscribeValidatesInput(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	if _, err := service.Subscribe(ctx, domain.Podcast{Title: "No ID"}); !errors.Is(err, subscriptions.ErrMissingPodcastID) {
		t.Errorf("missing ID error = %v, want ErrMissingPodcastID", err)
	}
	// No feed URL and no lookup client configured.
	if _, err := service.Subscribe(ctx, domain.Podcast{ID: "pod-1", Title: "No Feed"}); !errors.Is(err, subscriptions.ErrMissingFeedURL) {
		t.Errorf("missing feed error = %v, want ErrMissingFeedURL", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()
	service, _, server := newTestService(t)

	if _, err := service.Subscribe(ctx, domain.Podcast{ID: "pod-1", Title: "Show", FeedURL: server.URL + "/feed.xml"}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	removed, err := service.Unsubscribe(ctx, "pod-1")
	if err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}

	removed, err = service.Unsubscribe(ctx, "pod-1")
	if err != nil {
		t.Fatalf("Unsubscribe (again): %v", err)
	}
	if removed {
		t.Fatal("second unsubscribe should be a no-op")
	}
}

func TestOPMLExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	service, store, server := newTestService(t)

	if _, err := service.Subscribe(ctx, domain.Podcast{ID: "pod-1", Title: "Show", FeedURL: server.URL + "/feed.xml"}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	opmlPath := filepath.Join(t.TempDir(), "subs.opml")
	count, err := service.ExportOPML(ctx, opmlPath)
	if err != nil {
		t.Fatalf("ExportOPML: %v", err)
	}
	if count != 1 {
		t.Fatalf("exported %d, want 1", count)
	}

	// Same feed URL already subscribed: import skips it.
	result, err := service.ImportOPML(ctx, opmlPath)
	if err != nil {
		t.Fatalf("ImportOPML: %v", err)
	}
	if result.Skipped != 1 || result.Imported != 0 {
		t.Fatalf("import result = %+v, want 1 skipped", result)
	}

	// After a reset the same file imports fresh subscriptions.
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	result, err = service.ImportOPML(ctx, opmlPath)
	if err != nil {
		t.Fatalf("ImportOPML (after reset): %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("import result = %+v, want 1 imported", result)
	}

	subs, err := store.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription after import, got %d", len(subs))
	}
	if subs[0].Title != "Feed Title" {
		t.Errorf("imported title = %q, want feed title", subs[0].Title)
	}
}

func TestExportOPMLWithNoSubscriptions(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	path := filepath.Join(t.TempDir(), "empty.opml")
	if _, err := service.ExportOPML(ctx, path); !errors.Is(err, subscriptions.ErrNoSubscriptionsToExport) {
		t.Fatalf("error = %v, want ErrNoSubscriptionsToExport", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written when there is nothing to export")
	}
}
