package itunes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("media") != "podcast" {
			t.Errorf("media = %q, want podcast", q.Get("media"))
		}
		if q.Get("term") != "go time" {
			t.Errorf("term = %q, want go time", q.Get("term"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"collectionId":123,"collectionName":"Go Time",
"artistName":"Changelog","feedUrl":"http://example.com/feed.xml",
"artworkUrl600":"http://example.com/big.png","artworkUrl100":"http://example.com/small.png"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL)
	results, err := client.Search(context.Background(), "go time", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	p := results[0]
	if p.ID != "123" {
		t.Errorf("id = %q, want 123", p.ID)
	}
	if p.Title != "Go Time" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Publisher != "Changelog" {
		t.Errorf("publisher = %q", p.Publisher)
	}
	if p.ArtworkURL != "http://example.com/big.png" {
		t.Errorf("artwork = %q, want the 600px variant", p.ArtworkURL)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	client := NewClient(nil, "http://localhost:0")
	if _, err := client.Search(context.Background(), "  ", 10); err == nil {
		t.Fatal("expected error for empty term")
	}
}

func TestLookupPodcast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup" {
			t.Errorf("path = %q, want /lookup", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "456" {
			t.Errorf("id = %q, want 456", got)
		}
		w.Write([]byte(`{"results":[{"collectionId":456,"collectionName":"Another Show",
"artistName":"Someone","feedUrl":"http://example.com/another.xml",
"artworkUrl100":"http://example.com/small.png"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL)
	p, err := client.LookupPodcast(context.Background(), "456")
	if err != nil {
		t.Fatalf("LookupPodcast: %v", err)
	}
	if p.Title != "Another Show" {
		t.Errorf("title = %q", p.Title)
	}
	if p.ArtworkURL != "http://example.com/small.png" {
		t.Errorf("artwork = %q, want 100px fallback", p.ArtworkURL)
	}
}

func TestLookupPodcastNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL)
	if _, err := client.LookupPodcast(context.Background(), "999"); err == nil {
		t.Fatal("expected error for unknown podcast")
	}
}
