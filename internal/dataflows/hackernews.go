package dataflows

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const hackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"

// HackerNewsClient reads the public Firebase API.
type HackerNewsClient struct {
	client *resty.Client
}

func NewHackerNewsClient(opts ClientOptions) *HackerNewsClient {
	return &HackerNewsClient{client: newRestyClient(opts.baseURL(hackerNewsBaseURL), opts)}
}

// TopStoryIDs returns at most limit ids from the front page, in rank order.
func (c *HackerNewsClient) TopStoryIDs(ctx context.Context, limit int) ([]int64, error) {
	var ids []int64
	if err := getJSON(c.client.R().SetContext(ctx), "/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("hn top stories: %w", err)
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Item fetches one story. The title is cleaned of any markup.
func (c *HackerNewsClient) Item(ctx context.Context, id int64) (Story, error) {
	var story Story
	req := c.client.R().SetContext(ctx).SetPathParam("id", fmt.Sprint(id))
	if err := getJSON(req, "/item/{id}.json", &story); err != nil {
		return Story{}, fmt.Errorf("hn item %d: %w", id, err)
	}
	story.Title = CleanText(story.Title)
	return story, nil
}
