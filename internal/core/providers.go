package core

import (
	"context"
	"iter"
)

// ChatProvider sends assembled turns to an LLM deployment.
type ChatProvider interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
	Stream(ctx context.Context, turns []Turn) (iter.Seq2[string, error], error)
}

type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

type IssueTracker interface {
	StoryDescription(ctx context.Context, story, token string) (string, error)
}
