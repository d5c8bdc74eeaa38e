package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/dataflows"
)

// StoryAPI is the Hacker News surface.
type StoryAPI interface {
	TopStoryIDs(ctx context.Context, limit int) ([]int64, error)
	Item(ctx context.Context, id int64) (dataflows.Story, error)
}

// TechPulse lists the current Hacker News front page.
type TechPulse struct {
	api   StoryAPI
	limit int
}

func NewTechPulse(api StoryAPI, limit int) *TechPulse {
	return &TechPulse{api: api, limit: limit}
}

func (t *TechPulse) Name() string { return consts.TechPulse }

func (t *TechPulse) Fetch(ctx context.Context) Fragment {
	ids, err := t.api.TopStoryIDs(ctx, t.limit)
	if err != nil {
		return unavailable(t.Name(), "", err)
	}
	if len(ids) > t.limit {
		ids = ids[:t.limit]
	}

	titles := make([]string, len(ids))
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			defer recoverItem(&errs[i], fmt.Sprintf("hn item %d", id))
			story, err := t.api.Item(ctx, id)
			if err == nil && story.Title == "" {
				err = fmt.Errorf("hn item %d: %w: no title", id, consts.ErrNoMatchingRecords)
			}
			titles[i], errs[i] = story.Title, err
		}(i, id)
	}
	wg.Wait()

	var lines []string
	failed := 0
	var firstErr error
	for i := range ids {
		if errs[i] != nil {
			failed++
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		lines = append(lines, "- "+titles[i])
	}
	return fromLines(t.Name(), lines, failed, firstErr)
}

// FeedAPI reads the first items of an RSS or Atom feed.
type FeedAPI interface {
	Headlines(ctx context.Context, source, feedURL string, limit int) ([]dataflows.Headline, error)
}

// Headlines merges the top items of every configured feed. Identical titles
// across feeds appear once.
type Headlines struct {
	api     FeedAPI
	feeds   []config.Feed
	perFeed int
}

func NewHeadlines(api FeedAPI, feeds []config.Feed, perFeed int) *Headlines {
	return &Headlines{api: api, feeds: feeds, perFeed: perFeed}
}

func (h *Headlines) Name() string { return consts.Headlines }

func (h *Headlines) Fetch(ctx context.Context) Fragment {
	results := make([][]dataflows.Headline, len(h.feeds))
	errs := make([]error, len(h.feeds))
	var wg sync.WaitGroup
	for i, feed := range h.feeds {
		wg.Add(1)
		go func(i int, feed config.Feed) {
			defer wg.Done()
			defer recoverItem(&errs[i], feed.Name)
			results[i], errs[i] = h.api.Headlines(ctx, feed.Name, feed.URL, h.perFeed)
		}(i, feed)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var lines []string
	failed := 0
	var firstErr error
	for i := range h.feeds {
		if errs[i] != nil {
			failed++
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		items := results[i]
		if len(items) > h.perFeed {
			items = items[:h.perFeed]
		}
		for _, item := range items {
			line := "- " + strings.TrimSpace(item.Title)
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			lines = append(lines, line)
		}
	}
	return fromLines(h.Name(), lines, failed, firstErr)
}
