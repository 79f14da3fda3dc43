package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// OPML represents the root OPML document structure.
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

// Head contains metadata about the OPML document.
type Head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

// Body contains the list of outlines (subscriptions).
type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline is either a feed entry (xmlUrl set) or a folder grouping further
// outlines, as produced by directory-style exporters.
type Outline struct {
	Type     string    `xml:"type,attr,omitempty"`
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	HTMLURL  string    `xml:"htmlUrl,attr,omitempty"`
	Outlines []Outline `xml:"outline"`
}

// Subscription represents a parsed podcast subscription from OPML.
type Subscription struct {
	Title   string
	FeedURL string
}

// Export writes subscriptions to an OPML file.
func Export(w io.Writer, subscriptions []Subscription) error {
	doc := OPML{
		Version: "2.0",
		Head: Head{
			Title:       "Podplay Subscriptions",
			DateCreated: time.Now().UTC().Format(time.RFC1123Z),
		},
		Body: Body{
			Outlines: make([]Outline, 0, len(subscriptions)),
		},
	}

	for _, sub := range subscriptions {
		doc.Body.Outlines = append(doc.Body.Outlines, Outline{
			Type:   "rss",
			Text:   sub.Title,
			Title:  sub.Title,
			XMLURL: sub.FeedURL,
		})
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode OPML: %w", err)
	}

	return nil
}

// Import parses OPML data and returns the feed subscriptions it contains.
// Folder outlines are flattened; outlines without a feed URL are skipped.
func Import(r io.Reader) ([]Subscription, error) {
	var doc OPML
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode OPML: %w", err)
	}

	var subscriptions []Subscription
	collect(doc.Body.Outlines, &subscriptions)
	return subscriptions, nil
}

func collect(outlines []Outline, out *[]Subscription) {
	for _, outline := range outlines {
		if feedURL := strings.TrimSpace(outline.XMLURL); feedURL != "" {
			title := outline.Title
			if title == "" {
				title = outline.Text
			}
			*out = append(*out, Subscription{
				Title:   strings.TrimSpace(title),
				FeedURL: feedURL,
			})
		}
		collect(outline.Outlines, out)
	}
}
