package repl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"podplay/internal/app"
	"podplay/internal/config"
	"podplay/internal/domain"
	"podplay/internal/itunes"
	"podplay/internal/playback"
	"podplay/internal/player"
	"podplay/internal/storage"
)

const stubFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Stub Podcast</title>
    <description>Example description</description>
    <item>
      <guid>stub-episode</guid>
      <title>Stub Episode</title>
      <description>Example episode</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
      <enclosure url="http://example.com/audio.mp3" type="audio/mpeg" />
    </item>
  </channel>
</rss>`

func newTestModel(t *testing.T) (model, *player.Mock) {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"resultCount":1,"results":[{
			"collectionId": 12345,
			"collectionName": "Stub Podcast",
			"artistName": "Stub Artist",
			"feedUrl": %q
		}]}`, server.URL+"/feed.xml")
	})
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, stubFeedXML)
	})

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}

	element := player.NewMock()
	application, err := app.NewWithDependencies(context.Background(), config.Defaults(), filepath.Join(t.TempDir(), "config.yaml"), db, app.Dependencies{
		HTTPClient: server.Client(),
		ITunes:     itunes.NewClient(server.Client(), server.URL),
		Element:    element,
	})
	if err != nil {
		t.Fatalf("NewWithDependencies: %v", err)
	}
	t.Cleanup(func() { application.Close() })

	return newModel(context.Background(), application), element
}

func submit(t *testing.T, m model, command string) model {
	t.Helper()
	m.input.SetValue(command)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(model)
}

func transcript(m model) string {
	return strings.Join(m.messages, "\n")
}

func TestSubmitRendersSearchResults(t *testing.T) {
	m, _ := newTestModel(t)

	m = submit(t, m, "search stub")

	out := transcript(m)
	if !strings.Contains(out, "Stub Podcast") {
		t.Errorf("transcript missing show title:\n%s", out)
	}
	if !strings.Contains(out, "Stub Artist") {
		t.Errorf("transcript missing publisher:\n%s", out)
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared after submit")
	}
}

func TestSubmitRendersEpisodeListing(t *testing.T) {
	m, _ := newTestModel(t)

	m = submit(t, m, "search stub")
	m = submit(t, m, "episodes 1")

	out := transcript(m)
	if !strings.Contains(out, "Stub Episode") {
		t.Errorf("transcript missing episode title:\n%s", out)
	}
}

func TestPlayerBarHiddenWithoutEpisode(t *testing.T) {
	m, _ := newTestModel(t)

	if bar := m.renderPlayerBar(); bar != "" {
		t.Errorf("player bar should be empty with no selection, got %q", bar)
	}
	if strings.Contains(m.View(), "⏸") {
		t.Error("view should not contain a player bar yet")
	}
}

func TestPlayerBarShowsCurrentEpisode(t *testing.T) {
	m, element := newTestModel(t)

	m = submit(t, m, "search stub")
	m = submit(t, m, "episodes 1")
	m = submit(t, m, "play 1")
	element.EmitLoadedMetadata("http://example.com/audio.mp3", 300)

	bar := m.renderPlayerBar()
	if !strings.Contains(bar, "Stub Episode") {
		t.Errorf("player bar missing episode title: %q", bar)
	}
	if !strings.Contains(bar, "▶") {
		t.Errorf("player bar should show the playing marker: %q", bar)
	}

	m.app.Engine().TogglePlayPause()
	bar = m.renderPlayerBar()
	if !strings.Contains(bar, "⏸") {
		t.Errorf("player bar should show the paused marker: %q", bar)
	}
}

func TestPlaybackErrorEventAppendsMessage(t *testing.T) {
	m, _ := newTestModel(t)

	episode := domain.Episode{ID: "ep-1", Title: "Broken Episode"}
	updated, cmd := m.Update(playbackEventMsg{event: playback.ErrorEvent{
		Episode: &episode,
		Err:     errors.New("audio unavailable"),
	}})
	m = updated.(model)

	out := transcript(m)
	if !strings.Contains(out, "Broken Episode") {
		t.Errorf("transcript missing failing episode:\n%s", out)
	}
	if cmd == nil {
		t.Error("update must re-issue the subscription wait")
	}
}

func TestEpisodeChangeEventAnnouncesTrack(t *testing.T) {
	m, _ := newTestModel(t)

	episode := domain.Episode{ID: "ep-1", Title: "Next Up"}
	updated, _ := m.Update(playbackEventMsg{event: playback.EpisodeChange{Episode: &episode, Index: 0}})
	m = updated.(model)

	if !strings.Contains(transcript(m), "Now playing: Next Up") {
		t.Errorf("transcript missing track announcement:\n%s", transcript(m))
	}
}

func TestQuitCommandEndsSession(t *testing.T) {
	m, _ := newTestModel(t)

	m.input.SetValue("exit")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)

	if !m.quitting {
		t.Error("exit should mark the model quitting")
	}
	if cmd == nil {
		t.Error("exit should produce a quit command")
	}
}

func TestErrorFromCommandIsRendered(t *testing.T) {
	m, _ := newTestModel(t)

	// Unbalanced quote makes shellquote fail.
	m = submit(t, m, `search "broken`)

	if len(m.messages) < 2 {
		t.Fatalf("expected an error line, messages = %v", m.messages)
	}
}
