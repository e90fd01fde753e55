package content

import (
	"context"
	"fmt"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"newsclip-pipeline/types"
)

// RedditProvider searches configured subreddits for a recent post about the
// subject. It sits between the structured news provider and the generic web
// search in the auto chain.
type RedditProvider struct {
	client     *reddit.Client
	subreddits []string
}

// NewRedditProvider wraps an authenticated (or read-only) reddit client.
// A nil client disables the provider.
func NewRedditProvider(client *reddit.Client, subreddits []string) *RedditProvider {
	return &RedditProvider{client: client, subreddits: subreddits}
}

func (p *RedditProvider) Name() string { return "reddit" }

// Fetch returns the newest matching post across the configured subreddits.
func (p *RedditProvider) Fetch(ctx context.Context, subject, language string) (*types.SourceItem, error) {
	if p.client == nil {
		return nil, fmt.Errorf("reddit client not configured")
	}

	opts := &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: 5},
			Time:        "week",
		},
		Sort: "new",
	}

	for _, sub := range p.subreddits {
		posts, _, err := p.client.Subreddit.SearchPosts(ctx, subject, sub, opts)
		if err != nil {
			return nil, fmt.Errorf("reddit search r/%s: %w", sub, err)
		}
		for _, post := range posts {
			if post.Title == "" {
				continue
			}
			return &types.SourceItem{
				Title: post.Title,
				Body:  post.Body,
				URL:   "https://www.reddit.com" + post.Permalink,
			}, nil
		}
	}
	return nil, nil
}
