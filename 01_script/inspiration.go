package script

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// postLister is the slice of the reddit client the source needs
type postLister interface {
	TopPosts(ctx context.Context, subreddit string, opts *reddit.ListPostOptions) ([]*reddit.Post, *reddit.Response, error)
}

// RedditSource pulls popular post titles from category subreddits and
// keeps the ones closest to the category theme
type RedditSource struct {
	cfg   config.InspirationConfig
	posts postLister
}

// NewRedditSource creates a read-only reddit client. No credentials needed.
func NewRedditSource(cfg config.InspirationConfig, opts ...reddit.Opt) (*RedditSource, error) {
	client, err := reddit.NewReadonlyClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &RedditSource{cfg: cfg, posts: client.Subreddit}, nil
}

type scoredPost struct {
	title string
	score int
}

// Themes returns up to cfg.Limit post titles, best first
func (r *RedditSource) Themes(ctx context.Context, category types.Category) ([]string, error) {
	subs := r.cfg.Subreddits[string(category)]
	if len(subs) == 0 {
		return nil, nil
	}

	limit := r.cfg.Limit
	if limit <= 0 {
		limit = 5
	}
	topTime := r.cfg.TopTime
	if topTime == "" {
		topTime = "week"
	}

	words := ThemeWords(category)
	seen := make(map[string]bool)
	var candidates []scoredPost
	var lastErr error

	for _, sub := range subs {
		posts, _, err := r.posts.TopPosts(ctx, sub, &reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: 25},
			Time:        topTime,
		})
		if err != nil {
			log.Printf("[script] Reddit r/%s error: %v", sub, err)
			lastErr = err
			continue
		}
		for _, p := range posts {
			title := strings.TrimSpace(p.Title)
			if title == "" || p.NSFW || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			candidates = append(candidates, scoredPost{
				title: title,
				score: scorePost(p, words),
			})
		}
	}

	if len(candidates) == 0 {
		return nil, lastErr
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	themes := make([]string, len(candidates))
	for i, c := range candidates {
		themes[i] = c.title
	}
	return themes, nil
}

// scorePost weights upvotes lightly and theme words heavily
func scorePost(p *reddit.Post, words []string) int {
	score := p.Score / 100
	text := strings.ToLower(p.Title + " " + p.Body)
	for _, w := range words {
		if strings.Contains(text, strings.ToLower(w)) {
			score += 50
		}
	}
	if p.NumberOfComments > 100 {
		score += 25
	}
	return score
}
