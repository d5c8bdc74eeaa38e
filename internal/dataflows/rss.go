package dataflows

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/CortexBrief/consts"
)

// RSS 2.0 document
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title string `xml:"title"`
	Items []Item `xml:"item"`
}

type Item struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	GUID    string `xml:"guid"`
}

// Atom feeds are accepted too; some publishers moved off RSS.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title string `xml:"title"`
	Link  struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// FeedClient fetches RSS/Atom feeds by absolute URL.
type FeedClient struct {
	client *resty.Client
}

func NewFeedClient(opts ClientOptions) *FeedClient {
	client := newRestyClient("", opts)
	client.SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")
	return &FeedClient{client: client}
}

// Headlines returns the first limit items of the feed at feedURL.
func (c *FeedClient) Headlines(ctx context.Context, source, feedURL string, limit int) ([]Headline, error) {
	resp, err := c.client.R().SetContext(ctx).Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w: %w", source, consts.ErrNetworkFailure, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed %s: %w: API error %d", source, consts.ErrNetworkFailure, resp.StatusCode())
	}

	headlines, err := ParseFeed(resp.Body(), source)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", source, err)
	}
	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	return headlines, nil
}

// ParseFeed decodes an RSS 2.0 or Atom document into headlines, in document
// order. Items without a title are dropped.
func ParseFeed(body []byte, source string) ([]Headline, error) {
	var headlines []Headline

	var rss RSS
	if err := xml.Unmarshal(body, &rss); err == nil {
		for _, item := range rss.Channel.Items {
			if title := CleanText(item.Title); title != "" {
				headlines = append(headlines, Headline{Title: title, Link: strings.TrimSpace(item.Link), Source: source})
			}
		}
		return headlines, nil
	}

	var atom atomFeed
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&atom); err != nil {
		return nil, fmt.Errorf("%w: not an RSS or Atom document: %w", consts.ErrMalformedResponse, err)
	}
	for _, entry := range atom.Entries {
		if title := CleanText(entry.Title); title != "" {
			headlines = append(headlines, Headline{Title: title, Link: entry.Link.Href, Source: source})
		}
	}
	return headlines, nil
}

// CleanText strips markup and entities and collapses whitespace.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
